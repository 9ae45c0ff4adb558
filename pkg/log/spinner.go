package log

import (
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"code-intelligence.com/runtimedeps/pkg/cicheck"
)

const (
	ResolveInProgressMsg        string = "Resolving runtime dependencies..."
	ResolveInProgressSuccessMsg string = "Resolving runtime dependencies... Done."
	ResolveInProgressErrorMsg   string = "Resolving runtime dependencies... Error."
)

func GetPtermErrorStyle() *pterm.Style {
	return &pterm.Style{pterm.FgRed, pterm.Bold}
}

func GetPtermSuccessStyle() *pterm.Style {
	return &pterm.Style{pterm.FgGreen}
}

// Set this, so it can be checked and used in the logging process
// to ensure correct output
var currentProgressSpinner *pterm.SpinnerPrinter

// ShouldShowSpinner returns true if the log output is an interactive
// terminal outside of CI.
func ShouldShowSpinner() bool {
	if cicheck.IsCIEnvironment() {
		return false
	}
	f, ok := Output.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func CreateCurrentProgressSpinner(style *pterm.Style, msg string) {
	spinner := pterm.DefaultSpinner.WithWriter(Output)
	if style != nil {
		spinner = spinner.WithStyle(style).WithMessageStyle(style)
	}
	// error can be ignored here since pterm doesn't return one
	currentProgressSpinner, _ = spinner.Start(msg)
}

func StopCurrentProgressSpinner(style *pterm.Style, msg string) {
	if currentProgressSpinner == nil {
		return
	}
	if style != nil {
		currentProgressSpinner.Style = style
		currentProgressSpinner.MessageStyle = style
	}

	if msg != "" {
		currentProgressSpinner.UpdateText(msg)
	}

	// error can be ignored here since pterm doesn't return one
	currentProgressSpinner.RemoveWhenDone = false
	_ = currentProgressSpinner.Stop()
	currentProgressSpinner = nil
}

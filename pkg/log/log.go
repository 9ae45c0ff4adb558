package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/viper"
)

// Output is where all log messages are written to. It defaults to
// stderr, so that stdout can be used for machine readable output.
var Output io.Writer = os.Stderr

func log(style *pterm.Style, a ...any) {
	s := strings.TrimSuffix(fmt.Sprint(a...), "\n")
	if style != nil {
		s = style.Sprint(s)
	}
	if currentProgressSpinner != nil {
		// Clear the line the spinner is printed on, the spinner
		// redraws itself on the next tick
		s = "\r\033[K" + s
	}
	_, _ = fmt.Fprintln(Output, s)
}

// Successf highlights a message as successful
func Successf(format string, a ...any) {
	Success(fmt.Sprintf(format, a...))
}

func Success(a ...any) {
	log(&pterm.Style{pterm.FgGreen}, a...)
}

// Warnf highlights a message as a warning
func Warnf(format string, a ...any) {
	Warn(fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	log(&pterm.Style{pterm.FgYellow}, a...)
}

// Errorf highlights a message as an error and shows the stack strace if
// the --verbose flag is active
func Errorf(err error, format string, a ...any) {
	Error(err, fmt.Sprintf(format, a...))
}

// Error highlights a message as an error and shows the stack strace if
// the --verbose flag is active. If no message is given, the error
// itself is printed.
func Error(err error, a ...any) {
	msg := fmt.Sprint(a...)
	if msg == "" && err != nil {
		msg = err.Error()
	}
	if viper.GetBool("verbose") && err != nil {
		var stackErr interface{ StackTrace() errors.StackTrace }
		if errors.As(err, &stackErr) {
			msg = fmt.Sprintf("%s\n%+v", msg, stackErr.StackTrace())
		}
	}
	log(GetPtermErrorStyle(), msg)
}

// Infof outputs a regular user message without any highlighting
func Infof(format string, a ...any) {
	Info(fmt.Sprintf(format, a...))
}

func Info(a ...any) {
	log(nil, a...)
}

// Debugf outputs additional information when the --verbose flag is
// active
func Debugf(format string, a ...any) {
	Debug(fmt.Sprintf(format, a...))
}

func Debug(a ...any) {
	if !viper.GetBool("verbose") {
		return
	}
	log(&pterm.Style{pterm.FgCyan}, a...)
}

// Printf writes without any colors
func Printf(format string, a ...any) {
	Print(fmt.Sprintf(format, a...))
}

func Print(a ...any) {
	log(nil, a...)
}

package cicheck

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearCIEnv(t *testing.T) {
	for _, v := range append(ciVariables, struct {
		name    string
		service string
	}{"CI", "custom"}) {
		if value, ok := os.LookupEnv(v.name); ok {
			os.Unsetenv(v.name)
			name := v.name
			t.Cleanup(func() { os.Setenv(name, value) })
		}
	}
}

func TestIsCIEnvironment(t *testing.T) {
	clearCIEnv(t)
	assert.False(t, IsCIEnvironment())

	for _, tc := range []struct {
		variable string
		expected string
	}{
		{"CI", "custom"},
		{"GERRIT_PROJECT", "gerrit"},
		{"GITHUB_ACTIONS", "github-actions"},
		{"TRAVIS", "travis-ci"},
	} {
		t.Run(tc.variable, func(t *testing.T) {
			t.Setenv(tc.variable, "true")
			assert.True(t, IsCIEnvironment())
			assert.Equal(t, tc.expected, CIName())
		})
	}
}

// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"go.trai.ch/letterpress/internal/core/domain"
	"go.trai.ch/letterpress/internal/ui/output"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// DetectEnvironment returns the output mode suggested by the environment:
// full color on an interactive terminal, basic ANSI colors in CI and plain
// text when output is redirected.
func DetectEnvironment() output.Mode {
	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return output.ModeColor
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return output.ModeAuto
	}
	return output.ModePlain
}

// ResolveMode applies the user's --output-mode flag to the detected mode.
// userFlag should be one of "auto", "color", "plain" or empty.
func ResolveMode(autoDetected output.Mode, userFlag string) (output.Mode, error) {
	switch output.Mode(userFlag) {
	case output.ModeColor:
		return output.ModeColor, nil
	case output.ModePlain:
		return output.ModePlain, nil
	case output.ModeAuto, "":
		return autoDetected, nil
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidOutputMode, ""), "mode", userFlag)
	}
}

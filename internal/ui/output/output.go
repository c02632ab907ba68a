// Package output provides utilities for creating termenv.Output with a
// consistent color profile across the CLI.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Mode selects how terminal output is colored.
type Mode string

const (
	// ModeAuto picks colors when writing to a terminal outside CI.
	ModeAuto Mode = "auto"
	// ModeColor always emits ANSI colors.
	ModeColor Mode = "color"
	// ModePlain never emits escape sequences.
	ModePlain Mode = "plain"
)

// ColorProfile returns the color profile detected from the environment.
// NO_COLOR always wins.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// ColorProfileANSI returns the color profile for CI/non-interactive environments.
func ColorProfileANSI() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.ANSI
}

// ProfileFor maps an explicit mode to a profile.
func ProfileFor(mode Mode) termenv.Profile {
	switch mode {
	case ModePlain:
		return termenv.Ascii
	case ModeColor:
		return ColorProfileANSI()
	default:
		return ColorProfile()
	}
}

// New creates a new termenv.Output with the detected profile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	return NewWithProfile(w, ColorProfile, opts...)
}

// NewWithProfile creates a new termenv.Output with a custom profile selector.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(profileFn()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

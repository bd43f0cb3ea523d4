package ui

import (
	"time"
)

// SpinnerType represents different spinner animation styles
type SpinnerType int

const (
	SpinnerDots SpinnerType = iota
	SpinnerLine
)

// Spinner holds spinner animation frames
type Spinner struct {
	Frames   []string
	Interval time.Duration
}

// Spinners provides the available spinner animation styles
var Spinners = map[SpinnerType]Spinner{
	SpinnerDots: {
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	},
	SpinnerLine: {
		Frames:   []string{"-", "\\", "|", "/"},
		Interval: 100 * time.Millisecond,
	},
}

// GetSpinner returns a spinner by type. On terminals that cannot render
// Unicode (legacy Windows consoles, pipes), the braille spinner is
// replaced with the ASCII line spinner.
func GetSpinner(t SpinnerType) Spinner {
	if !UnicodeTerminal() {
		return Spinners[SpinnerLine]
	}
	if s, ok := Spinners[t]; ok {
		return s
	}
	return Spinners[SpinnerDots]
}

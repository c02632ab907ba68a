// Package style provides shared UI styling primitives including colors and icons.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Ink    = lipgloss.Color("#1F2937")
	Slate  = lipgloss.Color("#667085")
	Teal   = lipgloss.Color("#0E9384")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)

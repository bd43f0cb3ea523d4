package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI escape codes for simple terminal output (CLI commands)
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Cyan    = "\033[36m"
	BoldRed = "\033[1;31m"
)

// Color palette
var (
	// Brand colors
	Primary   = lipgloss.Color("#00D4AA") // Teal
	Secondary = lipgloss.Color("#7D56F4") // Purple

	// Status colors
	Success  = lipgloss.Color("#00D26A") // Bright green
	Warning  = lipgloss.Color("#FFB800") // Amber
	Error    = lipgloss.Color("#FF3838") // Red
	Info     = lipgloss.Color("#4D96FF") // Blue
	Muted    = lipgloss.Color("#6B7280") // Gray
	Critical = lipgloss.Color("#FF0000") // Bright red
)

// Pre-configured styles
var (
	// Title and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	// Banner style
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	// Version badge
	VersionStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Section headers
	SectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			MarginTop(1)

	// Configuration display
	ConfigLabelStyle = lipgloss.NewStyle().
				Foreground(Muted).
				Width(15)

	ConfigValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	// Statistics
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	// Bracketed metadata
	BracketStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Lifecycle styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	RunningStyle = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	// Critical finding badge
	CriticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Critical).
			Padding(0, 1)

	// Divider
	DividerStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Help/footer
	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// URL style
	URLStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	// Spinner frames
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)
)

// StatusStyle returns the appropriate style for a scan status, covering
// both remote statuses (FINISHED, RUNNING, ERROR-FAILED, ABORTED) and
// local lifecycle states (running, completed, failed).
func StatusStyle(status string) lipgloss.Style {
	upper := strings.ToUpper(status)
	switch {
	case strings.Contains(upper, "FINISHED"), strings.Contains(upper, "COMPLETED"):
		return SuccessStyle
	case strings.Contains(upper, "ERROR"), strings.Contains(upper, "FAILED"):
		return FailStyle
	case strings.Contains(upper, "ABORT"):
		return WarnStyle
	case strings.Contains(upper, "RUNNING"), strings.Contains(upper, "START"):
		return RunningStyle
	default:
		return lipgloss.NewStyle().Foreground(Muted)
	}
}

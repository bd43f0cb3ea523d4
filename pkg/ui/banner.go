package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Version information - these can be overridden at build time via ldflags:
// go build -ldflags "-X github.com/osintment/osintment/pkg/ui.Version=1.0.0"
var (
	Version   = "1.0.0"
	BuildDate = "2026-08-25"
	Commit    = "dev"
)

const (
	Author  = "Osintment Team"
	Website = "https://github.com/osintment/osintment"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetSilent enables or disables silent mode (suppresses most output)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		// Use ASCII profile to disable colors
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ASCII art banner
const bannerArt = `
   ____    _____    ____    _   __  ______    __  ___    ______    _   __  ______
  / __ \  / ___/   /  _/   / | / / /_  __/   /  |/  /   / ____/   / | / / /_  __/
 / / / /  \__ \    / /    /  |/ /   / /     / /|_/ /   / __/     /  |/ /   / /
/ /_/ /  ___/ /  _/ /    / /|  /   / /     / /  / /   / /___    / /|  /   / /
\____/  /____/  /___/   /_/ |_/   /_/     /_/  /_/   /_____/   /_/ |_/   /_/
`

// Minimalist banner (ffuf-style box)
const miniBanner = `
________________________________________________

 osintment v%s
________________________________________________`

// Separator line
const bannerSeparator = "________________________________________________"

// PrintBanner prints the application banner with version info (to stderr)
func PrintBanner() {
	if IsSilent() {
		return
	}
	lines := strings.Split(bannerArt, "\n")
	for _, line := range lines {
		if line != "" {
			fmt.Fprintln(os.Stderr, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(os.Stderr, "                                   v%s\n", VersionStyle.Render(Version))
	fmt.Fprintf(os.Stderr, "\n\t\t%s\n\n", Website)
}

// PrintMiniBanner prints the minimal banner (ffuf-style box)
func PrintMiniBanner() {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "%s\n", BannerStyle.Render(fmt.Sprintf(miniBanner, Version)))
	fmt.Fprintln(os.Stderr)
}

// printOption prints a configuration option in ffuf/nuclei style
// Format:  :: Option              : Value
func printOption(name, value string) {
	fmt.Fprintf(os.Stderr, " :: %-20s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// PrintConfigLine prints a single configuration option line
func PrintConfigLine(name, value string) {
	if IsSilent() {
		return
	}
	printOption(name, value)
}

// PrintConfigBanner prints the current settings before execution starts.
// Uses ordered keys for consistent display.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}

	order := []string{
		"Target", "Scan Name", "Scan Type", "Modules",
		"SpiderFoot URL", "Format", "Output", "Template",
		"PDF Engine", "Proxy", "Listen", "Metrics",
	}

	printed := make(map[string]bool)
	for _, name := range order {
		if value, ok := options[name]; ok && value != "" {
			printOption(name, value)
			printed[name] = true
		}
	}
	for name, value := range options {
		if !printed[name] && value != "" {
			printOption(name, value)
		}
	}

	fmt.Fprintf(os.Stderr, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider (to stderr)
func PrintDivider() {
	divider := strings.Repeat("-", 75)
	fmt.Fprintln(os.Stderr, DividerStyle.Render(divider))
}

// PrintSection prints a section header (to stderr)
func PrintSection(title string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, SectionStyle.Render("> "+title))
	PrintDivider()
}

// BracketPart represents a piece of bracketed output
type BracketPart struct {
	Text  string
	Style Style
}

// Style is a simplified style type for bracket parts
type Style = lipgloss.Style

// StatusBracket creates a bracket part styled by scan status
func StatusBracket(status string) BracketPart {
	return BracketPart{
		Text:  strings.ToLower(status),
		Style: StatusStyle(status),
	}
}

// TextBracket creates a plain bracket part
func TextBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	}
}

// MutedBracket creates a muted bracket part
func MutedBracket(text string) BracketPart {
	return BracketPart{
		Text:  text,
		Style: lipgloss.NewStyle().Foreground(Muted),
	}
}

// PrintBracketedInfo prints nuclei-style bracketed information
// Example: [finished] example.com [214 findings]
func PrintBracketedInfo(parts ...BracketPart) {
	if IsSilent() {
		return
	}

	var output strings.Builder
	for _, part := range parts {
		output.WriteString(BracketStyle.Render("["))
		output.WriteString(part.Style.Render(part.Text))
		output.WriteString(BracketStyle.Render("] "))
	}
	fmt.Fprintln(os.Stderr, output.String())
}

// PrintHelp prints contextual help (to stderr)
func PrintHelp(text string) {
	fmt.Fprintln(os.Stderr, HelpStyle.Render("  [i] "+text))
}

// PrintSuccess prints a success message (to stderr)
func PrintSuccess(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, SuccessStyle.Render(SanitizeString("  [+] "+message)))
}

// PrintError prints an error message (to stderr)
func PrintError(message string) {
	fmt.Fprintln(os.Stderr, FailStyle.Render(SanitizeString("  [X] "+message)))
}

// PrintWarning prints a warning message (to stderr)
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(os.Stderr, WarnStyle.Render(SanitizeString("  [!] "+message)))
}

// PrintInfo prints an info message (to stderr)
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", SpinnerStyle.Render("*"), SanitizeString(message))
}

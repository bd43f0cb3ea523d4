package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/osintment/osintment/pkg/testutil"
)

func TestGetSpinner(t *testing.T) {
	s := GetSpinner(SpinnerDots)
	if len(s.Frames) == 0 {
		t.Fatal("GetSpinner returned empty frames")
	}
	if s.Interval <= 0 {
		t.Fatal("GetSpinner returned non-positive interval")
	}

	// In test environments, stderr is typically a pipe (not a terminal),
	// so UnicodeTerminal() returns false and we get the ASCII spinner.
	if !UnicodeTerminal() {
		line := Spinners[SpinnerLine]
		if len(s.Frames) != len(line.Frames) {
			t.Errorf("expected ASCII spinner (%d frames), got %d frames", len(line.Frames), len(s.Frames))
		}
	}
}

func TestIcon(t *testing.T) {
	result := Icon("⏳", "...")
	if !UnicodeTerminal() {
		if result != "..." {
			t.Errorf("Icon() = %q; want ASCII fallback in non-terminal env", result)
		}
	} else if result != "⏳" {
		t.Errorf("Icon() = %q; want Unicode in terminal env", result)
	}
}

func TestSanitizeString(t *testing.T) {
	plain := "scan finished: 42 findings"
	if got := SanitizeString(plain); got != plain {
		t.Errorf("SanitizeString(%q) = %q; ASCII must pass through", plain, got)
	}

	if !UnicodeTerminal() {
		got := SanitizeString("done ✅ café")
		if strings.Contains(got, "✅") {
			t.Errorf("emoji survived sanitization: %q", got)
		}
		if !strings.Contains(got, "café") {
			t.Errorf("Latin-1 text dropped: %q", got)
		}
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status string
		want   lipgloss.Style
	}{
		{"FINISHED", SuccessStyle},
		{"completed", SuccessStyle},
		{"ERROR-FAILED", FailStyle},
		{"failed", FailStyle},
		{"ABORTED", WarnStyle},
		{"RUNNING", RunningStyle},
		{"STARTING", RunningStyle},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := StatusStyle(tt.status).Render("x")
			want := tt.want.Render("x")
			if got != want {
				t.Errorf("StatusStyle(%q) renders %q, want %q", tt.status, got, want)
			}
		})
	}
}

func TestVersionDefaults(t *testing.T) {
	if Version == "" || BuildDate == "" || Commit == "" {
		t.Fatal("version metadata must have defaults for non-ldflags builds")
	}
}

// Printers must never panic regardless of terminal state; they render to
// stderr/stdout in every command path.
func TestPrintersDoNotPanic(t *testing.T) {
	SetSilent(false)
	SetNoColor(true)
	defer SetNoColor(false)

	testutil.AssertNoPanic(t, "banners", func() {
		PrintBanner()
		PrintMiniBanner()
		PrintConfigBanner(map[string]string{"Target": "example.com"})
		PrintConfigLine("Output", "./reports")
	})
	testutil.AssertNoPanic(t, "messages", func() {
		PrintSection("Section")
		PrintDivider()
		PrintSuccess("ok")
		PrintError("bad")
		PrintWarning("careful")
		PrintInfo("fyi")
		PrintHelp("try -h")
		PrintBracketedInfo(StatusBracket("RUNNING"), TextBracket("example.com"), MutedBracket("AA11"))
	})

	SetSilent(true)
	defer SetSilent(false)
	testutil.AssertNoPanic(t, "silent mode", func() {
		PrintBanner()
		PrintSuccess("ok")
		PrintError("bad")
	})
}

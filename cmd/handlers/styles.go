package handlers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"healthpage/internal/pipeline"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4a90e2"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// formatResult renders a run summary for the terminal.
func formatResult(res *pipeline.Result, preview bool) string {
	var b strings.Builder

	if res.Status == pipeline.StatusSuccess {
		b.WriteString(successStyle.Render("✓ " + res.Message))
	} else {
		b.WriteString(warningStyle.Render("! " + res.Message))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("run %s · age %d · %s · %s",
		res.RunID, res.Profile.Age, res.Profile.Gender, res.Duration.Round(1e6))))
	b.WriteString("\n")

	if len(res.Pairings) > 0 {
		b.WriteString("\n" + headerStyle.Render("Pairings") + "\n")
		for _, p := range res.Pairings {
			fmt.Fprintf(&b, "  • %s → %s\n", p.Title, p.ImagePath)
		}
	}
	for _, tip := range res.Unmatched {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("◦ "+tip.Title+" (no image)"))
	}

	if res.OutputPath != "" {
		fmt.Fprintf(&b, "\n📄 Page: %s\n", res.OutputPath)
	}
	if res.MarkdownPath != "" {
		fmt.Fprintf(&b, "📝 Markdown: %s\n", res.MarkdownPath)
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n" + warningStyle.Render("Warnings") + "\n")
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	if preview && res.Preview != "" {
		b.WriteString("\n" + headerStyle.Render("Preview") + "\n")
		b.WriteString(res.Preview + "\n")
	}

	return b.String()
}

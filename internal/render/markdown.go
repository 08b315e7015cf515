package render

import (
	"fmt"
	"strings"

	"github.com/strrl/agent-share/pkg/models"
)

// Markdown renders a compiled document as a standalone markdown page.
func Markdown(doc *models.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "_%s · %d turns · $%.6g_\n", doc.Date, len(doc.Turns), doc.TotalCost)

	for _, turn := range doc.Turns {
		b.WriteString("\n---\n\n")
		fmt.Fprintf(&b, "### ❯ %s\n", firstLine(turn.Prompt))
		if rest := afterFirstLine(turn.Prompt); rest != "" {
			fmt.Fprintf(&b, "\n%s\n", rest)
		}

		for _, step := range turn.Steps {
			switch s := step.(type) {
			case models.Narration:
				b.WriteString("\n" + quote(s.Text) + "\n")
			case models.Action:
				marker := "🔧"
				if !s.Ok {
					marker = "❌"
				}
				fmt.Fprintf(&b, "\n%s **%s** `%s`\n", marker, s.Tool, s.Summary)
				if s.Diff != nil {
					b.WriteString("\n```diff\n" + diffBody(s.Diff) + "```\n")
				}
				if s.Output != "" {
					b.WriteString("\n```\n" + ensureNewline(s.Output) + "```\n")
				}
			}
		}

		if turn.Response != "" {
			b.WriteString("\n" + turn.Response + "\n")
		}

		b.WriteString("\n" + metaLine(turn) + "\n")
	}

	return b.String()
}

func metaLine(turn models.Turn) string {
	parts := []string{}
	if turn.Model != "" {
		parts = append(parts, turn.Model)
	}
	parts = append(parts, fmt.Sprintf("%d in / %d out tokens", turn.InputTokens, turn.OutputTokens))
	parts = append(parts, fmt.Sprintf("$%.6g", turn.Cost))
	parts = append(parts, fmt.Sprintf("%ds", turn.Elapsed))
	if turn.ThinkingLevel != "" {
		parts = append(parts, "thinking: "+string(turn.ThinkingLevel))
	}
	return "_" + strings.Join(parts, " · ") + "_"
}

func diffBody(d *models.Diff) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(d.OldText, "\n"), "\n") {
		b.WriteString("-" + line + "\n")
	}
	for _, line := range strings.Split(strings.TrimRight(d.NewText, "\n"), "\n") {
		b.WriteString("+" + line + "\n")
	}
	return b.String()
}

func quote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func afterFirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return ""
}

func ensureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

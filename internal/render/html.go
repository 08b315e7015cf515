package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/strrl/agent-share/pkg/models"
)

//go:embed viewer.html.tmpl
var viewerTemplate string

// Flattened view of the step union for the template.
type stepView struct {
	Kind    string
	Text    string
	Tool    string
	Summary string
	Ok      bool
	Output  string
	Diff    *models.Diff
}

type turnView struct {
	Prompt   string
	Steps    []stepView
	Response string
	Meta     string
}

type docView struct {
	Title     string
	Date      string
	TotalCost string
	TurnCount int
	Turns     []turnView
}

// HTML renders a compiled document as a self-contained HTML page.
func HTML(doc *models.Document) (string, error) {
	tmpl, err := template.New("viewer").Parse(viewerTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse viewer template: %w", err)
	}

	view := docView{
		Title:     doc.Title,
		Date:      doc.Date,
		TotalCost: fmt.Sprintf("%.6g", doc.TotalCost),
		TurnCount: len(doc.Turns),
	}
	for _, turn := range doc.Turns {
		tv := turnView{
			Prompt:   turn.Prompt,
			Response: turn.Response,
			Meta:     strings.Trim(metaLine(turn), "_"),
		}
		for _, step := range turn.Steps {
			switch s := step.(type) {
			case models.Narration:
				tv.Steps = append(tv.Steps, stepView{Kind: "narration", Text: s.Text})
			case models.Action:
				tv.Steps = append(tv.Steps, stepView{
					Kind:    "action",
					Tool:    s.Tool,
					Summary: s.Summary,
					Ok:      s.Ok,
					Output:  s.Output,
					Diff:    s.Diff,
				})
			}
		}
		view.Turns = append(view.Turns, tv)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return b.String(), nil
}

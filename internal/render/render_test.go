package render

import (
	"strings"
	"testing"

	"github.com/strrl/agent-share/pkg/models"
)

func sampleDocument() *models.Document {
	return &models.Document{
		ID:        "sess-1",
		Title:     "Fix login bug",
		Date:      "2026-08-29",
		TotalCost: 0.012,
		Turns: []models.Turn{
			{
				Prompt: "fix the login bug",
				Steps: []models.Step{
					models.Narration{Text: "Looking at the auth handler first."},
					models.Action{
						Tool:    "bash",
						Summary: "go test ./...",
						Ok:      false,
						Output:  "FAIL auth_test.go:12\n",
					},
					models.Action{
						Tool:    "edit",
						Summary: "auth/handler.go",
						Ok:      true,
						Diff: &models.Diff{
							Path:    "auth/handler.go",
							OldText: "return nil",
							NewText: "return err",
						},
					},
				},
				Response:     "Fixed the missing error return.",
				Model:        "test-model",
				InputTokens:  100,
				OutputTokens: 50,
				Cost:         0.012,
				Elapsed:      8,
			},
		},
	}
}

func TestMarkdownContainsTurnContent(t *testing.T) {
	md := Markdown(sampleDocument())

	for _, want := range []string{
		"# Fix login bug",
		"### ❯ fix the login bug",
		"> Looking at the auth handler first.",
		"**bash** `go test ./...`",
		"FAIL auth_test.go:12",
		"```diff",
		"-return nil",
		"+return err",
		"Fixed the missing error return.",
		"test-model",
		"100 in / 50 out tokens",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdownFailedActionMarker(t *testing.T) {
	md := Markdown(sampleDocument())
	if !strings.Contains(md, "❌ **bash**") {
		t.Errorf("expected failure marker for bash action:\n%s", md)
	}
	if !strings.Contains(md, "🔧 **edit**") {
		t.Errorf("expected success marker for edit action:\n%s", md)
	}
}

func TestHTMLEscapesContent(t *testing.T) {
	doc := sampleDocument()
	doc.Turns[0].Prompt = "render <script>alert(1)</script>"

	html, err := HTML(doc)
	if err != nil {
		t.Fatalf("HTML render failed: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("prompt content was not escaped")
	}
	if !strings.Contains(html, "Fix login bug") {
		t.Error("title missing from HTML output")
	}
	if !strings.Contains(html, "class=\"turn\"") {
		t.Error("turn section missing from HTML output")
	}
}

func TestHTMLIsSelfContained(t *testing.T) {
	html, err := HTML(sampleDocument())
	if err != nil {
		t.Fatalf("HTML render failed: %v", err)
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Error("expected a full HTML document")
	}
	if !strings.Contains(html, "<style>") {
		t.Error("expected inline styles")
	}
}

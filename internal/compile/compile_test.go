package compile

import (
	"strings"
	"testing"

	"github.com/strrl/agent-share/internal/entry"
	"github.com/strrl/agent-share/pkg/models"
)

func testHeader() *entry.Header {
	return &entry.Header{
		Type:      "session",
		ID:        "0c1b9e4a-5a50-4f3e-9a8e-1d2f3c4b5a69",
		Cwd:       "/projects/myapp",
		Timestamp: "2025-06-01T10:00:00Z",
	}
}

func userEntry(ts int64, text string) entry.Entry {
	return entry.Entry{Kind: entry.KindMessage, Message: &entry.Message{
		Role:      entry.RoleUser,
		Timestamp: ts,
		Text:      text,
	}}
}

func assistantEntry(ts int64, model string, usage *entry.Usage, blocks ...entry.Block) entry.Entry {
	return entry.Entry{Kind: entry.KindMessage, Message: &entry.Message{
		Role:      entry.RoleAssistant,
		Timestamp: ts,
		Model:     model,
		Usage:     usage,
		Blocks:    blocks,
	}}
}

func toolResultEntry(ts int64, callID string, isError bool, text string) entry.Entry {
	msg := &entry.Message{
		Role:       entry.RoleToolResult,
		Timestamp:  ts,
		ToolCallID: callID,
		IsError:    isError,
	}
	if text != "" {
		msg.Blocks = []entry.Block{entry.TextBlock{Text: text}}
	}
	return entry.Entry{Kind: entry.KindMessage, Message: msg}
}

func levelEntry(level string) entry.Entry {
	return entry.Entry{Kind: entry.KindThinkingLevelChange, ThinkingLevel: level}
}

func TestTurnCountMatchesUserMessages(t *testing.T) {
	entries := []entry.Entry{
		// Leading assistant chatter before the first prompt is dropped.
		assistantEntry(500, "", nil, entry.TextBlock{Text: "hello?"}),
		userEntry(1000, "first"),
		assistantEntry(2000, "", nil, entry.TextBlock{Text: "reply one"}),
		userEntry(3000, "second"),
		assistantEntry(4000, "", nil, entry.TextBlock{Text: "reply two"}),
		userEntry(5000, "third"),
	}

	doc := Compile(testHeader(), entries, "t")
	if len(doc.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(doc.Turns))
	}
	if doc.Turns[0].Response != "reply one" || doc.Turns[1].Response != "reply two" {
		t.Errorf("responses misattributed: %q / %q", doc.Turns[0].Response, doc.Turns[1].Response)
	}
	// A prompt with no reply yet still yields a turn.
	if len(doc.Turns[2].Steps) != 0 || doc.Turns[2].Response != "" {
		t.Errorf("trailing empty turn should have no steps or response")
	}
}

func TestPartitionAssignsMessagesToPrecedingPrompt(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "one"),
		assistantEntry(2000, "", nil, entry.ToolCallBlock{ID: "c1", Name: "bash", Arguments: map[string]any{"command": "ls"}}),
		toolResultEntry(3000, "c1", false, "a.txt"),
		userEntry(4000, "two"),
		assistantEntry(5000, "", nil, entry.TextBlock{Text: "done"}),
	}

	doc := Compile(testHeader(), entries, "t")
	if len(doc.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(doc.Turns))
	}
	if len(doc.Turns[0].Steps) != 1 {
		t.Fatalf("turn 1 should have exactly the bash action, got %d steps", len(doc.Turns[0].Steps))
	}
	action, ok := doc.Turns[0].Steps[0].(models.Action)
	if !ok {
		t.Fatalf("expected action step, got %T", doc.Turns[0].Steps[0])
	}
	if action.Tool != "bash" || !action.Ok {
		t.Errorf("unexpected action: %+v", action)
	}
	if doc.Turns[1].Response != "done" {
		t.Errorf("turn 2 response = %q", doc.Turns[1].Response)
	}
}

func TestThinkingLevelLastWriteWins(t *testing.T) {
	entries := []entry.Entry{
		levelEntry("high"),
		levelEntry("off"),
		levelEntry("xhigh"),
		userEntry(1000, "go"),
	}

	doc := Compile(testHeader(), entries, "t")
	if got := doc.Turns[0].ThinkingLevel; got != models.ThinkingXHigh {
		t.Errorf("expected xhigh, got %q", got)
	}
}

func TestThinkingLevelCarriesForward(t *testing.T) {
	entries := []entry.Entry{
		levelEntry("medium"),
		userEntry(1000, "one"),
		assistantEntry(2000, "", nil, entry.TextBlock{Text: "ok"}),
		userEntry(3000, "two"),
	}

	doc := Compile(testHeader(), entries, "t")
	if doc.Turns[0].ThinkingLevel != models.ThinkingMedium {
		t.Errorf("turn 1 level = %q", doc.Turns[0].ThinkingLevel)
	}
	if doc.Turns[1].ThinkingLevel != models.ThinkingMedium {
		t.Errorf("turn 2 level = %q", doc.Turns[1].ThinkingLevel)
	}
}

func TestThinkingLevelOmittedWithoutChanges(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "one"),
		assistantEntry(2000, "", nil, entry.TextBlock{Text: "ok"}),
		userEntry(3000, "two"),
	}

	doc := Compile(testHeader(), entries, "t")
	for i, turn := range doc.Turns {
		if turn.ThinkingLevel != "" {
			t.Errorf("turn %d should omit thinking level, got %q", i+1, turn.ThinkingLevel)
		}
	}
}

func TestUsageAggregation(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "model-a", &entry.Usage{Input: 100, Output: 50, Cost: 0.001}, entry.TextBlock{Text: "part"}),
		assistantEntry(3000, "model-b", &entry.Usage{Input: 200, Output: 80, Cost: 0.002}, entry.TextBlock{Text: "rest"}),
	}

	doc := Compile(testHeader(), entries, "t")
	turn := doc.Turns[0]
	if turn.InputTokens != 300 || turn.OutputTokens != 130 {
		t.Errorf("tokens = %d/%d, want 300/130", turn.InputTokens, turn.OutputTokens)
	}
	if turn.Cost != 0.003 {
		t.Errorf("cost = %v, want 0.003", turn.Cost)
	}
	// Last reported model wins across a mid-turn model change.
	if turn.Model != "model-b" {
		t.Errorf("model = %q, want model-b", turn.Model)
	}
}

func TestMissingUsageContributesNothing(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil, entry.TextBlock{Text: "ok"}),
	}

	doc := Compile(testHeader(), entries, "t")
	turn := doc.Turns[0]
	if turn.InputTokens != 0 || turn.OutputTokens != 0 || turn.Cost != 0 {
		t.Errorf("unexpected aggregates: %+v", turn)
	}
}

func TestElapsedSeconds(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(5000, "", nil, entry.TextBlock{Text: "a"}),
		assistantEntry(10000, "", nil, entry.TextBlock{Text: "b"}),
	}

	doc := Compile(testHeader(), entries, "t")
	if got := doc.Turns[0].Elapsed; got != 9 {
		t.Errorf("elapsed = %d, want 9", got)
	}
}

func TestWhitespaceThinkingDropped(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil, entry.ThinkingBlock{Thinking: "   "}, entry.TextBlock{Text: "answer"}),
	}

	doc := Compile(testHeader(), entries, "t")
	if len(doc.Turns[0].Steps) != 0 {
		t.Errorf("whitespace thinking should produce no step, got %d", len(doc.Turns[0].Steps))
	}
	if doc.Turns[0].Response != "answer" {
		t.Errorf("response = %q", doc.Turns[0].Response)
	}
}

func TestTextBesideToolCallBecomesNarration(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil,
			entry.TextBlock{Text: "Let me read that file"},
			entry.ToolCallBlock{ID: "c1", Name: "read", Arguments: map[string]any{"path": "/projects/myapp/src/main.ts"}},
		),
		toolResultEntry(3000, "c1", false, "contents"),
	}

	doc := Compile(testHeader(), entries, "t")
	turn := doc.Turns[0]
	if turn.Response != "" {
		t.Errorf("interleaved text must not become the response, got %q", turn.Response)
	}
	if len(turn.Steps) != 2 {
		t.Fatalf("expected narration + action, got %d steps", len(turn.Steps))
	}
	narration, ok := turn.Steps[0].(models.Narration)
	if !ok || narration.Text != "Let me read that file" {
		t.Errorf("step 1 = %+v", turn.Steps[0])
	}
	action, ok := turn.Steps[1].(models.Action)
	if !ok || action.Summary != "src/main.ts" {
		t.Errorf("step 2 = %+v", turn.Steps[1])
	}
}

func TestResponseJoinedAcrossMessages(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil, entry.TextBlock{Text: "First paragraph."}),
		assistantEntry(3000, "", nil, entry.TextBlock{Text: "Second paragraph."}),
	}

	doc := Compile(testHeader(), entries, "t")
	want := "First paragraph.\n\nSecond paragraph."
	if doc.Turns[0].Response != want {
		t.Errorf("response = %q, want %q", doc.Turns[0].Response, want)
	}
}

func TestOutputInclusionPolicy(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil,
			entry.ToolCallBlock{ID: "c1", Name: "bash", Arguments: map[string]any{"command": "frobnicate"}},
			entry.ToolCallBlock{ID: "c2", Name: "read", Arguments: map[string]any{"path": "/projects/myapp/a.go"}},
			entry.ToolCallBlock{ID: "c3", Name: "bash", Arguments: map[string]any{"command": "ls"}},
		),
		toolResultEntry(3000, "c1", true, "command not found"),
		toolResultEntry(4000, "c2", false, "package main"),
		toolResultEntry(5000, "c3", false, "a.go"),
	}

	doc := Compile(testHeader(), entries, "t")
	steps := doc.Turns[0].Steps
	if len(steps) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(steps))
	}

	failed := steps[0].(models.Action)
	if failed.Ok || failed.Output != "command not found" {
		t.Errorf("failed bash: %+v", failed)
	}
	read := steps[1].(models.Action)
	if !read.Ok || read.Output != "" {
		t.Errorf("successful read must not carry output: %+v", read)
	}
	okBash := steps[2].(models.Action)
	if !okBash.Ok || okBash.Output != "a.go" {
		t.Errorf("successful bash keeps output: %+v", okBash)
	}
}

func TestMissingToolResultIsOptimistic(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil,
			entry.ToolCallBlock{ID: "never-resolved", Name: "bash", Arguments: map[string]any{"command": "sleep 9999"}},
		),
	}

	doc := Compile(testHeader(), entries, "t")
	action := doc.Turns[0].Steps[0].(models.Action)
	if !action.Ok || action.Output != "" {
		t.Errorf("unresolved call should default to ok with no output: %+v", action)
	}
}

func TestDuplicateToolResultLastWins(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil,
			entry.ToolCallBlock{ID: "c1", Name: "bash", Arguments: map[string]any{"command": "x"}},
		),
		toolResultEntry(3000, "c1", false, "fine"),
		toolResultEntry(4000, "c1", true, "actually broke"),
	}

	doc := Compile(testHeader(), entries, "t")
	action := doc.Turns[0].Steps[0].(models.Action)
	if action.Ok || action.Output != "actually broke" {
		t.Errorf("last duplicate result should win: %+v", action)
	}
}

func TestDiffPayloadForCompleteEdit(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "go"),
		assistantEntry(2000, "", nil,
			entry.ToolCallBlock{ID: "c1", Name: "edit", Arguments: map[string]any{
				"path":    "/projects/myapp/src/main.ts",
				"oldText": "var x = 1",
				"newText": "const x = 1",
			}},
			entry.ToolCallBlock{ID: "c2", Name: "edit", Arguments: map[string]any{
				"path": "/projects/myapp/src/main.ts",
			}},
		),
	}

	doc := Compile(testHeader(), entries, "t")
	full := doc.Turns[0].Steps[0].(models.Action)
	if full.Diff == nil {
		t.Fatal("complete edit should carry a diff payload")
	}
	if full.Diff.Path != "src/main.ts" || full.Diff.OldText != "var x = 1" || full.Diff.NewText != "const x = 1" {
		t.Errorf("diff = %+v", full.Diff)
	}
	partial := doc.Turns[0].Steps[1].(models.Action)
	if partial.Diff != nil {
		t.Errorf("incomplete edit must not carry a diff: %+v", partial.Diff)
	}
}

func TestGenericArgsSummaryTruncated(t *testing.T) {
	args := map[string]any{"query": strings.Repeat("x", 500)}
	summary := summarizeArgs("search", args, "/projects/myapp")
	if !strings.HasSuffix(summary, "...") {
		t.Errorf("long summary should end with ellipsis marker: %q", summary[len(summary)-10:])
	}
	if len(summary) != maxArgsSummary+3 {
		t.Errorf("summary length = %d, want %d", len(summary), maxArgsSummary+3)
	}

	short := summarizeArgs("search", map[string]any{"query": "y"}, "/projects/myapp")
	if short != `{"query":"y"}` {
		t.Errorf("short summary = %q", short)
	}
}

func TestTruncateOutputCutsAtNewline(t *testing.T) {
	line := strings.Repeat("a", 100)
	var b strings.Builder
	for b.Len() < maxOutputBytes+500 {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	out := truncateOutput(b.String())
	if !strings.HasSuffix(out, "\n[output truncated]") {
		t.Error("truncated output should carry the marker")
	}
	body := strings.TrimSuffix(out, "\n[output truncated]")
	if len(body) > maxOutputBytes {
		t.Errorf("body is %d bytes, budget is %d", len(body), maxOutputBytes)
	}
	if strings.HasSuffix(body, "\n") {
		t.Error("cut should land exactly on the preceding newline boundary")
	}

	// One giant line: no newline to cut at, fall back to the raw byte cut.
	single := truncateOutput(strings.Repeat("b", maxOutputBytes+10))
	if len(single) != maxOutputBytes+len("\n[output truncated]") {
		t.Errorf("hard cut length = %d", len(single))
	}
}

func TestTotalCostSumsTurns(t *testing.T) {
	entries := []entry.Entry{
		userEntry(1000, "one"),
		assistantEntry(2000, "", &entry.Usage{Cost: 0.01}, entry.TextBlock{Text: "a"}),
		userEntry(3000, "two"),
		assistantEntry(4000, "", &entry.Usage{Cost: 0.02}, entry.TextBlock{Text: "b"}),
	}

	doc := Compile(testHeader(), entries, "t")
	if doc.TotalCost != 0.03 {
		t.Errorf("totalCost = %v, want 0.03", doc.TotalCost)
	}
}

func TestHeaderFieldsCopiedVerbatim(t *testing.T) {
	doc := Compile(testHeader(), []entry.Entry{userEntry(1000, "hi")}, "My Title")
	if doc.ID != testHeader().ID {
		t.Errorf("id = %q", doc.ID)
	}
	if doc.Date != "2025-06-01T10:00:00Z" {
		t.Errorf("date = %q", doc.Date)
	}
	if doc.Title != "My Title" {
		t.Errorf("title = %q", doc.Title)
	}
}

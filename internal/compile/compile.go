// Package compile turns a chronological session log into a compact,
// render-ready document: user prompts delimit turns, assistant activity
// becomes ordered narration/action steps, and token/cost/timing metadata is
// aggregated per turn. The transformation is a pure function of the inputs;
// it performs no I/O and keeps no state between calls.
package compile

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/strrl/agent-share/internal/entry"
	"github.com/strrl/agent-share/pkg/models"
)

const (
	// Tool output attached to an action is capped at this many bytes.
	maxOutputBytes = 4096
	// Generic argument summaries are capped at this many characters.
	maxArgsSummary = 200
)

// Compile builds the share document for a session. Entries must be in
// chronological order; they are never re-sorted. The title is caller
// supplied (see FallbackTitle for the non-LLM derivation).
func Compile(header *entry.Header, entries []entry.Entry, title string) models.Document {
	state := scan(entries)
	rawTurns := segment(state.messages)

	turns := make([]models.Turn, 0, len(rawTurns))
	total := 0.0
	for _, rt := range rawTurns {
		turn := buildTurn(rt, state, header.Cwd)
		total += turn.Cost
		turns = append(turns, turn)
	}

	return models.Document{
		ID:        header.ID,
		Title:     title,
		Date:      header.Timestamp,
		TotalCost: round6(total),
		Turns:     turns,
	}
}

// scanState is the single-pass scan output: the ordered message list, the
// tool-result index, and the thinking level snapshotted at each user
// message's position in that list.
type scanState struct {
	messages []*entry.Message
	results  map[string]*entry.Message
	levels   map[int]models.ThinkingLevel
}

func scan(entries []entry.Entry) scanState {
	state := scanState{
		results: make(map[string]*entry.Message),
		levels:  make(map[int]models.ThinkingLevel),
	}

	var level models.ThinkingLevel
	for _, e := range entries {
		switch e.Kind {
		case entry.KindThinkingLevelChange:
			// Last write wins; several changes between prompts collapse
			// to the final one.
			level = models.ThinkingLevel(e.ThinkingLevel)
		case entry.KindMessage:
			msg := e.Message
			if msg.Role == entry.RoleToolResult && msg.ToolCallID != "" {
				state.results[msg.ToolCallID] = msg
			}
			if msg.Role == entry.RoleUser && level != "" {
				state.levels[len(state.messages)] = level
			}
			state.messages = append(state.messages, msg)
		case entry.KindModelChange, entry.KindOther:
			// Recognized but not part of the compiled output.
		}
	}
	return state
}

// rawTurn is a user prompt plus every message up to the next prompt.
type rawTurn struct {
	user      *entry.Message
	userIndex int
	rest      []*entry.Message
}

func segment(messages []*entry.Message) []rawTurn {
	var turns []rawTurn
	for i, msg := range messages {
		if msg.Role == entry.RoleUser {
			turns = append(turns, rawTurn{user: msg, userIndex: i})
			continue
		}
		if len(turns) == 0 {
			// Nothing before the first prompt can start a turn.
			continue
		}
		current := &turns[len(turns)-1]
		current.rest = append(current.rest, msg)
	}
	return turns
}

func buildTurn(rt rawTurn, state scanState, cwd string) models.Turn {
	steps, response := buildSteps(rt, state.results, cwd)

	turn := models.Turn{
		Prompt:   strings.TrimSpace(rt.user.PlainText()),
		Steps:    steps,
		Response: response,
	}
	aggregate(&turn, rt)

	if level, ok := state.levels[rt.userIndex]; ok {
		turn.ThinkingLevel = level
	}
	return turn
}

// buildSteps walks the turn's assistant content blocks in document order.
// Thinking text always narrates. Plain text narrates only when the same
// assistant message also calls a tool (the agent talking while acting);
// otherwise it accumulates into the turn's final response. Tool calls emit
// an action at the call's position, merged with the correlated result.
func buildSteps(rt rawTurn, results map[string]*entry.Message, cwd string) ([]models.Step, string) {
	var steps []models.Step
	var response []string

	for _, msg := range rt.rest {
		if msg.Role != entry.RoleAssistant {
			continue
		}

		if len(msg.Blocks) == 0 {
			if text := strings.TrimSpace(msg.Text); text != "" {
				response = append(response, text)
			}
			continue
		}

		hasToolCall := msg.HasToolCall()
		for _, block := range msg.Blocks {
			switch b := block.(type) {
			case entry.ThinkingBlock:
				if text := strings.TrimSpace(b.Thinking); text != "" {
					steps = append(steps, models.Narration{Text: text})
				}
			case entry.TextBlock:
				text := strings.TrimSpace(b.Text)
				if text == "" {
					continue
				}
				if hasToolCall {
					steps = append(steps, models.Narration{Text: text})
				} else {
					response = append(response, text)
				}
			case entry.ToolCallBlock:
				steps = append(steps, buildAction(b, results[b.ID], cwd))
			case entry.OtherBlock:
				// Not renderable.
			}
		}
	}

	return steps, strings.Join(response, "\n\n")
}

// buildAction merges a tool call with its correlated result. A call with no
// result is reported as successful with no output: the session may have been
// truncated before the result was written.
func buildAction(call entry.ToolCallBlock, result *entry.Message, cwd string) models.Action {
	action := models.Action{
		Tool:    call.Name,
		Args:    call.Arguments,
		Summary: summarizeArgs(call.Name, call.Arguments, cwd),
		Ok:      true,
	}
	if result != nil && result.IsError {
		action.Ok = false
	}

	if result != nil {
		if output := result.PlainText(); output != "" && includeOutput(call.Name, action.Ok) {
			action.Output = truncateOutput(output)
		}
	}

	if diff := diffPayload(call, cwd); diff != nil {
		action.Diff = diff
	}
	return action
}

// includeOutput implements the output inclusion policy: failures always
// carry their output, successful bash commands do too, everything else
// stays output-free.
func includeOutput(tool string, ok bool) bool {
	return !ok || tool == "bash"
}

func summarizeArgs(tool string, args map[string]any, cwd string) string {
	switch tool {
	case "read", "write", "edit":
		if path, ok := args["path"].(string); ok && path != "" {
			return ShortenPath(path, cwd)
		}
	case "bash":
		if command, ok := args["command"].(string); ok {
			return command
		}
	}

	if len(args) == 0 {
		return ""
	}
	data, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	summary := string(data)
	if len(summary) > maxArgsSummary {
		summary = summary[:maxArgsSummary] + "..."
	}
	return summary
}

// truncateOutput cuts oversized output at the last newline inside the byte
// budget, falling back to a hard cut when the output is one long line.
func truncateOutput(s string) string {
	if len(s) <= maxOutputBytes {
		return s
	}
	cut := s[:maxOutputBytes]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + "\n[output truncated]"
}

// diffPayload extracts the before/after texts from a complete edit call so
// viewers can render a diff. Any other tool, or an edit with missing
// arguments, has no diff.
func diffPayload(call entry.ToolCallBlock, cwd string) *models.Diff {
	if call.Name != "edit" {
		return nil
	}
	path, _ := call.Arguments["path"].(string)
	oldText, _ := call.Arguments["oldText"].(string)
	newText, _ := call.Arguments["newText"].(string)
	if path == "" || oldText == "" || newText == "" {
		return nil
	}
	return &models.Diff{
		Path:    ShortenPath(path, cwd),
		OldText: oldText,
		NewText: newText,
	}
}

// aggregate sums usage across the turn's assistant messages, records the
// last reported model, and measures wall time from the prompt to the last
// recorded event.
func aggregate(turn *models.Turn, rt rawTurn) {
	maxTS := rt.user.Timestamp
	cost := 0.0

	for _, msg := range rt.rest {
		if msg.Timestamp > maxTS {
			maxTS = msg.Timestamp
		}
		if msg.Role != entry.RoleAssistant {
			continue
		}
		if msg.Model != "" {
			turn.Model = msg.Model
		}
		if msg.Usage != nil {
			turn.InputTokens += msg.Usage.Input
			turn.OutputTokens += msg.Usage.Output
			cost += msg.Usage.Cost
		}
	}

	// Rounding here guards the grand total against float summation drift.
	turn.Cost = round6(cost)
	if rt.user.Timestamp > 0 && maxTS > rt.user.Timestamp {
		turn.Elapsed = int(math.Round(float64(maxTS-rt.user.Timestamp) / 1000))
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

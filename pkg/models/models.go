package models

import (
	"encoding/json"
	"time"
)

// ThinkingLevel is the reasoning depth an agent was configured with when a
// turn started. Sessions recorded before the setting existed have no level.
type ThinkingLevel string

const (
	ThinkingOff     ThinkingLevel = "off"
	ThinkingMinimal ThinkingLevel = "minimal"
	ThinkingLow     ThinkingLevel = "low"
	ThinkingMedium  ThinkingLevel = "medium"
	ThinkingHigh    ThinkingLevel = "high"
	ThinkingXHigh   ThinkingLevel = "xhigh"
)

// Document is the compiled, render-ready form of a session, suitable for
// JSON serialization to a publish endpoint or a viewer page.
type Document struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	TotalCost float64 `json:"totalCost"`
	Turns     []Turn  `json:"turns"`
}

// Turn is one user prompt plus everything the agent did in response to it.
type Turn struct {
	Prompt        string        `json:"prompt"`
	Steps         []Step        `json:"steps"`
	Response      string        `json:"response,omitempty"`
	Model         string        `json:"model,omitempty"`
	InputTokens   int           `json:"inputTokens"`
	OutputTokens  int           `json:"outputTokens"`
	Cost          float64       `json:"cost"`
	Elapsed       int           `json:"elapsed"`
	ThinkingLevel ThinkingLevel `json:"thinkingLevel,omitempty"`
}

// Step is one rendering primitive within a turn: the agent narrating what it
// is about to do, or a tool action merged with its result. The set of
// variants is closed; renderers switch exhaustively over the concrete types.
type Step interface {
	isStep()
}

// Narration is free text the agent emitted while working, either reasoning
// output or commentary interleaved with tool calls.
type Narration struct {
	Text string `json:"text"`
}

func (Narration) isStep() {}

// MarshalJSON tags the variant so the serialized step list stays
// self-describing.
func (n Narration) MarshalJSON() ([]byte, error) {
	type alias Narration
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"narration", alias(n)})
}

// Action is a tool invocation merged with its correlated result.
type Action struct {
	Tool    string         `json:"tool"`
	Args    map[string]any `json:"args,omitempty"`
	Summary string         `json:"summary"`
	Ok      bool           `json:"ok"`
	Output  string         `json:"output,omitempty"`
	Diff    *Diff          `json:"diff,omitempty"`
}

func (Action) isStep() {}

func (a Action) MarshalJSON() ([]byte, error) {
	type alias Action
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{"action", alias(a)})
}

// Diff carries the before/after texts of an edit action so a viewer can
// render a proper diff instead of the raw arguments.
type Diff struct {
	Path    string `json:"path"`
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}

// Project represents a working directory with aggregated session information.
type Project struct {
	Name         string
	Path         string
	SessionCount int
	LastActivity time.Time
	Sessions     []Session // Lazily loaded when needed
}

// Session represents a recorded agent session on disk.
type Session struct {
	SessionID    string
	ProjectPath  string
	FilePath     string
	LastActivity time.Time
	Preview      string // First user prompt, trimmed for list views
	TurnCount    int
}

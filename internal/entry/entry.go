package entry

// Header is the first line of a session file.
type Header struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Cwd       string `json:"cwd"`
	Timestamp string `json:"timestamp"`
}

// Kind discriminates the entry records in a session log.
type Kind string

const (
	KindMessage             Kind = "message"
	KindThinkingLevelChange Kind = "thinking-level-change"
	KindModelChange         Kind = "model-change"
	// KindOther covers record types the compiler recognizes but ignores
	// (labels, compaction markers, custom extension data).
	KindOther Kind = "other"
)

// Entry is one chronological record in the session log. Exactly one of the
// payload fields is populated, selected by Kind.
type Entry struct {
	Kind          Kind
	Message       *Message
	ThinkingLevel string
}

// Role identifies who produced a message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "toolResult"
)

// Message is the payload of a message entry. User content may arrive either
// as a plain string (Text) or as content blocks; assistant and tool-result
// content is always blocks.
type Message struct {
	Role      Role
	Timestamp int64 // epoch milliseconds
	Text      string
	Blocks    []Block
	Model     string
	Usage     *Usage

	// Tool-result correlation, set only for RoleToolResult.
	ToolCallID string
	IsError    bool
}

// Usage is the token/cost accounting attached to an assistant message.
type Usage struct {
	Input  int     `json:"input"`
	Output int     `json:"output"`
	Cost   float64 `json:"-"`
}

// Block is one element of a message's content sequence. The variant set is
// closed; consumers switch exhaustively over the concrete types.
type Block interface {
	isBlock()
}

// TextBlock is free-form reply text.
type TextBlock struct {
	Text string
}

func (TextBlock) isBlock() {}

// ThinkingBlock is raw reasoning text.
type ThinkingBlock struct {
	Thinking string
}

func (ThinkingBlock) isBlock() {}

// ToolCallBlock is a tool invocation issued by the assistant.
type ToolCallBlock struct {
	ID        string
	Name      string
	Arguments map[string]any
}

func (ToolCallBlock) isBlock() {}

// OtherBlock preserves block types the compiler does not interpret
// (images, provider-specific payloads).
type OtherBlock struct {
	Type string
}

func (OtherBlock) isBlock() {}

// PlainText returns the message's textual content: the string form if
// present, otherwise all text blocks joined with newlines.
func (m *Message) PlainText() string {
	if m.Text != "" {
		return m.Text
	}
	out := ""
	for _, b := range m.Blocks {
		tb, ok := b.(TextBlock)
		if !ok || tb.Text == "" {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += tb.Text
	}
	return out
}

// HasToolCall reports whether any content block is a tool invocation.
func (m *Message) HasToolCall() bool {
	for _, b := range m.Blocks {
		if _, ok := b.(ToolCallBlock); ok {
			return true
		}
	}
	return false
}

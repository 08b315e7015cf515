package entry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ErrHeaderNotFound is returned when a session file lacks a session header.
var ErrHeaderNotFound = errors.New("session header record not found")

// ReadHeader loads the session header from the first line of path.
func ReadHeader(path string) (*Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		var header Header
		if err := json.Unmarshal(scanner.Bytes(), &header); err == nil && header.Type == "session" && header.ID != "" {
			return &header, nil
		}
		// Header is always the first record; anything else means it is missing.
		break
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return nil, ErrHeaderNotFound
}

// ReadSession loads the header and the full ordered entry log from path.
// Records that cannot be decoded are skipped rather than failing the load;
// a partially written trailing line should not make a session unshareable.
func ReadSession(path string) (*Header, []Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	var header *Header
	var entries []Entry

	for scanner.Scan() {
		raw := scanner.Bytes()
		if header == nil {
			var h Header
			if err := json.Unmarshal(raw, &h); err == nil && h.Type == "session" && h.ID != "" {
				hh := h
				header = &hh
				continue
			}
		}
		if e, ok := parseEntry(raw); ok {
			entries = append(entries, e)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan session: %w", err)
	}

	if header == nil {
		return nil, nil, ErrHeaderNotFound
	}

	return header, entries, nil
}

// Summarize streams through a session file and returns the first user
// prompt plus the number of turns (user messages), without materializing
// the entry log. Used for list views.
func Summarize(path string) (prompt string, turns int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open session file: %w", err)
	}
	defer file.Close()

	scanner := newScanner(file)
	for scanner.Scan() {
		e, ok := parseEntry(scanner.Bytes())
		if !ok || e.Kind != KindMessage || e.Message.Role != RoleUser {
			continue
		}
		turns++
		if prompt == "" {
			prompt = firstLine(e.Message.PlainText())
		}
	}

	if err := scanner.Err(); err != nil {
		return prompt, turns, fmt.Errorf("scan session: %w", err)
	}
	return prompt, turns, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func newScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	// Allow large payloads such as full-file tool outputs.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}

type rawEntry struct {
	Type          string          `json:"type"`
	Timestamp     json.RawMessage `json:"timestamp"`
	ThinkingLevel string          `json:"thinkingLevel"`
	Message       json.RawMessage `json:"message"`
}

type rawMessage struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Model      string          `json:"model"`
	Usage      *rawUsage       `json:"usage"`
	Timestamp  json.RawMessage `json:"timestamp"`
	ToolCallID string          `json:"toolCallId"`
	IsError    bool            `json:"isError"`
}

type rawUsage struct {
	Input  int             `json:"input"`
	Output int             `json:"output"`
	Cost   json.RawMessage `json:"cost"`
}

type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// parseEntry decodes one JSONL record. The second return is false for
// records the compiler has no use for, including undecodable ones.
func parseEntry(raw []byte) (Entry, bool) {
	var rec rawEntry
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Entry{}, false
	}

	switch rec.Type {
	case "thinking-level-change":
		if rec.ThinkingLevel == "" {
			return Entry{}, false
		}
		return Entry{Kind: KindThinkingLevelChange, ThinkingLevel: rec.ThinkingLevel}, true
	case "message":
		msg, ok := parseMessage(rec)
		if !ok {
			return Entry{}, false
		}
		return Entry{Kind: KindMessage, Message: msg}, true
	case "model-change":
		return Entry{Kind: KindModelChange}, true
	default:
		return Entry{Kind: KindOther}, true
	}
}

func parseMessage(rec rawEntry) (*Message, bool) {
	var payload rawMessage
	if err := json.Unmarshal(rec.Message, &payload); err != nil {
		return nil, false
	}

	msg := &Message{
		Role:       Role(payload.Role),
		Model:      payload.Model,
		ToolCallID: payload.ToolCallID,
		IsError:    payload.IsError,
	}

	switch msg.Role {
	case RoleUser, RoleAssistant, RoleToolResult:
	default:
		return nil, false
	}

	// The timestamp lives on the entry; some writers duplicate it on the
	// message payload, which takes precedence when present.
	msg.Timestamp = parseMillis(rec.Timestamp)
	if ts := parseMillis(payload.Timestamp); ts != 0 {
		msg.Timestamp = ts
	}

	if payload.Usage != nil {
		msg.Usage = &Usage{
			Input:  payload.Usage.Input,
			Output: payload.Usage.Output,
			Cost:   parseCost(payload.Usage.Cost),
		}
	}

	msg.Text, msg.Blocks = parseContent(payload.Content)
	return msg, true
}

// parseContent accepts both content encodings: a bare string and an ordered
// block sequence.
func parseContent(raw json.RawMessage) (string, []Block) {
	if len(raw) == 0 {
		return "", nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var array []rawBlock
	if err := json.Unmarshal(raw, &array); err != nil {
		return "", nil
	}

	blocks := make([]Block, 0, len(array))
	for _, item := range array {
		switch item.Type {
		case "text":
			blocks = append(blocks, TextBlock{Text: item.Text})
		case "thinking":
			text := item.Thinking
			if text == "" {
				text = item.Text
			}
			blocks = append(blocks, ThinkingBlock{Thinking: text})
		case "toolCall", "tool_use":
			var args map[string]any
			if len(item.Arguments) > 0 {
				if err := json.Unmarshal(item.Arguments, &args); err != nil {
					args = nil
				}
			}
			blocks = append(blocks, ToolCallBlock{ID: item.ID, Name: item.Name, Arguments: args})
		default:
			blocks = append(blocks, OtherBlock{Type: item.Type})
		}
	}
	return "", blocks
}

// parseMillis reads a timestamp that is either epoch milliseconds or an
// RFC3339 string. Returns 0 when absent or unreadable.
func parseMillis(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return ms
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UnixMilli()
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// parseCost reads a usage cost that is either a bare number or an object
// with a total field.
func parseCost(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var obj struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Total
	}
	return 0
}

package title

import (
	"context"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/strrl/agent-share/internal/compile"
	"github.com/strrl/agent-share/internal/config"
	"github.com/strrl/agent-share/internal/entry"
)

const (
	titleModel   = "claude-3-5-haiku-latest"
	titleTimeout = 5 * time.Second
	maxTokens    = 20
	// How much of the opening prompt the model sees.
	maxPromptBytes = 2000
)

const systemPrompt = "Generate a short, concise title (3-7 words) for a coding session based on the user's opening request. Do not use quotes or trailing punctuation."

// Generate produces a document title for a session. It asks the Anthropic
// API when a key is configured and falls back to the first prompt line
// otherwise, so it never fails.
func Generate(ctx context.Context, entries []entry.Entry) string {
	fallback := compile.FallbackTitle(entries)

	apiKey := config.AnthropicAPIKey()
	if apiKey == "" {
		return fallback
	}

	prompt := firstPrompt(entries)
	if prompt == "" {
		return fallback
	}
	if len(prompt) > maxPromptBytes {
		prompt = prompt[:maxPromptBytes]
	}

	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	client := anthropic.NewClient(apiKey)
	temperature := float32(0.3)
	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(titleModel),
		MultiSystem: []anthropic.MessageSystemPart{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return fallback
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}

	text = strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `"`))
	if text == "" {
		return fallback
	}
	return text
}

func firstPrompt(entries []entry.Entry) string {
	for _, e := range entries {
		if e.Kind == entry.KindMessage && e.Message != nil && e.Message.Role == entry.RoleUser {
			return strings.TrimSpace(e.Message.PlainText())
		}
	}
	return ""
}

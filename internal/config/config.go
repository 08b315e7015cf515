package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// DefaultEndpoint is the publish service used when no override is set.
const DefaultEndpoint = "https://agent-share.strrl.dev/api/share"

var loadOnce sync.Once

// Load merges a .env file (if present) into the process environment once.
// Missing files are fine; real env vars always win.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// SessionDir returns the directory holding recorded session JSONL files.
func SessionDir() (string, error) {
	Load()
	if dir := os.Getenv("AGENT_SHARE_SESSION_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".pi", "sessions"), nil
}

// Endpoint returns the publish service URL.
func Endpoint() string {
	Load()
	if url := os.Getenv("AGENT_SHARE_ENDPOINT"); url != "" {
		return url
	}
	return DefaultEndpoint
}

// AnthropicAPIKey returns the key used for LLM title generation, empty when
// not configured (callers fall back to the first-line title).
func AnthropicAPIKey() string {
	Load()
	return os.Getenv("ANTHROPIC_API_KEY")
}

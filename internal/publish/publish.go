package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/strrl/agent-share/pkg/models"
)

const requestTimeout = 15 * time.Second

type shareResponse struct {
	URL string `json:"url"`
}

// ToEndpoint uploads a compiled document to a share endpoint and returns
// the public URL.
func ToEndpoint(ctx context.Context, endpoint string, doc *models.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach share endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("share endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed shareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode share response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("share endpoint returned no URL")
	}
	return parsed.URL, nil
}

// ToGist publishes the rendered HTML plus the document JSON as a secret
// GitHub gist via the gh CLI and returns the gist URL.
func ToGist(ctx context.Context, doc *models.Document, html string) (string, error) {
	ghPath, err := exec.LookPath("gh")
	if err != nil {
		return "", fmt.Errorf("gh CLI not found in PATH: %w", err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	dir, err := os.MkdirTemp("", "agent-share-gist-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "session.html")
	jsonPath := filepath.Join(dir, "session.json")
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.WriteFile(jsonPath, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, ghPath, "gist", "create", "--desc", doc.Title, htmlPath, jsonPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("gh gist create failed: %s: %w", strings.TrimSpace(string(out)), err)
	}

	// gh prints progress lines before the URL; the URL is the last line.
	lines := strings.Fields(strings.TrimSpace(string(out)))
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], "https://") {
			return lines[i], nil
		}
	}
	return "", fmt.Errorf("gh gist create printed no URL: %s", strings.TrimSpace(string(out)))
}

// ToFile writes rendered output to a local file.
func ToFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

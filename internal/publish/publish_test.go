package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strrl/agent-share/pkg/models"
)

func TestToEndpointPostsDocument(t *testing.T) {
	var gotContentType, gotRequestID string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"url": "https://share.example/abc123"})
	}))
	defer server.Close()

	doc := &models.Document{ID: "sess-1", Title: "Fix login bug", Date: "2026-08-29"}
	url, err := ToEndpoint(context.Background(), server.URL, doc)
	if err != nil {
		t.Fatalf("ToEndpoint failed: %v", err)
	}

	if url != "https://share.example/abc123" {
		t.Errorf("url = %q, want https://share.example/abc123", url)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
	if gotBody["title"] != "Fix login bug" {
		t.Errorf("posted title = %v", gotBody["title"])
	}
}

func TestToEndpointServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := ToEndpoint(context.Background(), server.URL, &models.Document{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should mention status: %v", err)
	}
}

func TestToEndpointMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	_, err := ToEndpoint(context.Background(), server.URL, &models.Document{})
	if err == nil {
		t.Fatal("expected error when response has no URL")
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	if err := ToFile(path, "<html></html>"); err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("file content = %q", string(data))
	}
}

package sessions

import (
	"context"
	"time"

	"github.com/strrl/agent-share/pkg/models"
)

// Async wrappers used by the TUI: each runs the underlying fetch in a
// goroutine with a bounded timeout and honors cancellation while waiting.

const fetchTimeout = 30 * time.Second

type projectsResult struct {
	projects []models.Project
	err      error
}

// FetchProjectsAsync fetches projects, honoring ctx cancellation.
func FetchProjectsAsync(ctx context.Context) ([]models.Project, error) {
	queryCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	resultChan := make(chan projectsResult, 1)
	go func() {
		projects, err := fetchProjects(queryCtx)
		resultChan <- projectsResult{projects: projects, err: err}
	}()

	select {
	case result := <-resultChan:
		return result.projects, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type sessionsResult struct {
	sessions []models.Session
	err      error
}

// FetchSessionsForProjectAsync fetches a project's sessions, honoring ctx
// cancellation.
func FetchSessionsForProjectAsync(ctx context.Context, projectPath string) ([]models.Session, error) {
	queryCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	resultChan := make(chan sessionsResult, 1)
	go func() {
		sessions, err := fetchSessionsForProject(queryCtx, projectPath)
		resultChan <- sessionsResult{sessions: sessions, err: err}
	}()

	select {
	case result := <-resultChan:
		return result.sessions, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type previewResult struct {
	lines []string
	err   error
}

// BuildPreviewAsync compiles a session preview, honoring ctx cancellation.
func BuildPreviewAsync(ctx context.Context, path string, maxTurns int) ([]string, error) {
	resultChan := make(chan previewResult, 1)
	go func() {
		lines, err := BuildPreview(path, maxTurns)
		resultChan <- previewResult{lines: lines, err: err}
	}()

	select {
	case result := <-resultChan:
		return result.lines, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

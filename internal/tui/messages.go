package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/strrl/agent-share/internal/sessions"
	"github.com/strrl/agent-share/pkg/models"
)

// Message types for async operations
type (
	// ProjectsLoadedMsg contains loaded projects
	ProjectsLoadedMsg struct {
		Projects []models.Project
		Error    error
	}

	// SessionsLoadedMsg contains loaded sessions for a project
	SessionsLoadedMsg struct {
		ProjectPath string
		Sessions    []models.Session
		Error       error
	}

	// PreviewLoadedMsg contains the compiled preview lines for a session
	PreviewLoadedMsg struct {
		FilePath string
		Lines    []string
		Error    error
	}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// loadProjectsCmd loads projects asynchronously
func loadProjectsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		projects, err := sessions.FetchProjectsAsync(ctx)
		return ProjectsLoadedMsg{
			Projects: projects,
			Error:    err,
		}
	}
}

// loadSessionsCmd loads sessions for a project asynchronously
func loadSessionsCmd(ctx context.Context, projectPath string) tea.Cmd {
	return func() tea.Msg {
		loaded, err := sessions.FetchSessionsForProjectAsync(ctx, projectPath)
		return SessionsLoadedMsg{
			ProjectPath: projectPath,
			Sessions:    loaded,
			Error:       err,
		}
	}
}

// loadPreviewCmd compiles a session preview asynchronously
func loadPreviewCmd(ctx context.Context, filePath string) tea.Cmd {
	return func() tea.Msg {
		lines, err := sessions.BuildPreviewAsync(ctx, filePath, previewTurns)
		return PreviewLoadedMsg{
			FilePath: filePath,
			Lines:    lines,
			Error:    err,
		}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

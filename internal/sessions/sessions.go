package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/strrl/agent-share/internal/compile"
	"github.com/strrl/agent-share/internal/config"
	"github.com/strrl/agent-share/internal/db"
	"github.com/strrl/agent-share/internal/entry"
	"github.com/strrl/agent-share/pkg/models"
)

// Glob returns the JSONL pattern covering every recorded session.
func Glob() (string, error) {
	dir, err := config.SessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "**", "*.jsonl"), nil
}

// FetchProjects fetches all working directories with aggregated session
// statistics, most recently active first.
func FetchProjects() ([]models.Project, error) {
	return fetchProjects(context.Background())
}

func fetchProjects(ctx context.Context) ([]models.Project, error) {
	globPattern, err := Glob()
	if err != nil {
		return nil, err
	}

	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}
	// Don't close the singleton connection

	// Session headers carry the cwd; one header line per file.
	projectsQuery := fmt.Sprintf(`
		SELECT
			COALESCE(cwd, 'Unknown') as project_path,
			COUNT(*) as session_count,
			MAX(timestamp) as last_activity
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE type = 'session' AND id IS NOT NULL
		GROUP BY cwd
		ORDER BY MAX(timestamp) DESC
		LIMIT 100
	`, globPattern)

	rows, err := database.QueryContext(ctx, projectsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to execute projects query: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		var lastActivity sql.NullString

		if err := rows.Scan(&project.Path, &project.SessionCount, &lastActivity); err != nil {
			continue
		}

		if project.Path == "Unknown" || project.Path == "" {
			project.Name = "Unknown"
		} else {
			project.Name = filepath.Base(project.Path)
		}
		project.LastActivity = parseActivity(lastActivity)

		projects = append(projects, project)
	}

	return projects, nil
}

// FetchSessionsForProject fetches all sessions recorded in projectPath,
// newest first, with a first-prompt preview and turn count per session.
func FetchSessionsForProject(projectPath string) ([]models.Session, error) {
	return fetchSessionsForProject(context.Background(), projectPath)
}

func fetchSessionsForProject(ctx context.Context, projectPath string) ([]models.Session, error) {
	globPattern, err := Glob()
	if err != nil {
		return nil, err
	}

	database, err := db.GetDB()
	if err != nil {
		return nil, err
	}

	var sessionsQuery string
	var args []interface{}
	if projectPath == "Unknown" {
		sessionsQuery = fmt.Sprintf(`
			SELECT CAST(id AS VARCHAR), timestamp, filename
			FROM read_json('%s',
				format = 'newline_delimited',
				union_by_name = true,
				filename = true
			)
			WHERE type = 'session' AND id IS NOT NULL
			AND (cwd IS NULL OR cwd = '')
			ORDER BY timestamp DESC
			LIMIT 100
		`, globPattern)
	} else {
		sessionsQuery = fmt.Sprintf(`
			SELECT CAST(id AS VARCHAR), timestamp, filename
			FROM read_json('%s',
				format = 'newline_delimited',
				union_by_name = true,
				filename = true
			)
			WHERE type = 'session' AND id IS NOT NULL
			AND cwd = ?
			ORDER BY timestamp DESC
			LIMIT 100
		`, globPattern)
		args = []interface{}{projectPath}
	}

	rows, err := database.QueryContext(ctx, sessionsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sessions query: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		var lastActivity sql.NullString

		if err := rows.Scan(&session.SessionID, &lastActivity, &session.FilePath); err != nil {
			continue
		}

		session.ProjectPath = projectPath
		session.LastActivity = parseActivity(lastActivity)

		// Cheap single-pass scan for the list view; full compilation
		// happens only when a session is previewed or shared.
		if prompt, turns, err := entry.Summarize(session.FilePath); err == nil {
			session.Preview = truncateString(prompt, 60)
			session.TurnCount = turns
		}

		sessions = append(sessions, session)
	}

	return sessions, nil
}

// Resolve maps a session reference, either a JSONL file path or a session
// id, to the session file.
func Resolve(ref string) (string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, nil
	}

	globPattern, err := Glob()
	if err != nil {
		return "", err
	}

	database, err := db.GetDB()
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		SELECT filename
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true,
			filename = true
		)
		WHERE type = 'session' AND CAST(id AS VARCHAR) = ?
		LIMIT 1
	`, globPattern)

	var filename string
	if err := database.QueryRow(query, ref).Scan(&filename); err != nil {
		return "", fmt.Errorf("session %q not found: %w", ref, err)
	}
	return filename, nil
}

// BuildPreview compiles a session and formats its first maxTurns turns as
// short display lines for the picker's preview pane.
func BuildPreview(path string, maxTurns int) ([]string, error) {
	header, entries, err := entry.ReadSession(path)
	if err != nil {
		return nil, err
	}

	doc := compile.Compile(header, entries, compile.FallbackTitle(entries))

	var lines []string
	for i, turn := range doc.Turns {
		if i >= maxTurns {
			lines = append(lines, fmt.Sprintf("... (%d more turns) ...", len(doc.Turns)-maxTurns))
			break
		}
		lines = append(lines, "❯ "+truncateString(turn.Prompt, 60))
		for _, step := range turn.Steps {
			switch s := step.(type) {
			case models.Narration:
				lines = append(lines, "  💭 "+truncateString(s.Text, 60))
			case models.Action:
				marker := "🔧"
				if !s.Ok {
					marker = "✗"
				}
				lines = append(lines, fmt.Sprintf("  %s %s: %s", marker, s.Tool, truncateString(s.Summary, 50)))
			}
		}
		if turn.Response != "" {
			lines = append(lines, "  ↩ "+truncateString(turn.Response, 60))
		}
	}
	return lines, nil
}

func parseActivity(v sql.NullString) time.Time {
	if v.Valid {
		if t, err := time.Parse(time.RFC3339, v.String); err == nil {
			return t.Local()
		}
	}
	return time.Now()
}

// truncateString flattens whitespace and truncates a string to maxLen
// characters.
func truncateString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/strrl/agent-share/pkg/models"
)

type viewMode int

const (
	projectView viewMode = iota
	sessionView
)

// previewTurns caps how many turns the preview pane renders.
const previewTurns = 8

type model struct {
	projects      []models.Project
	sessions      []models.Session
	previewLines  []string
	cursor        int
	currentView   viewMode
	selectedProj  *models.Project
	chosen        *models.Session
	width         int
	height        int
	leftViewport  viewport.Model
	rightViewport viewport.Model
	ready         bool

	loadingProjects bool
	loadingSessions bool
	loadingPreview  bool
	previewPath     string
	loading         *LoadingIndicator
	err             error

	ctx    context.Context
	cancel context.CancelFunc
}

func initialModel() model {
	ctx, cancel := context.WithCancel(context.Background())
	return model{
		currentView:     projectView,
		loadingProjects: true,
		loading:         NewLoadingIndicator("Loading projects..."),
		ctx:             ctx,
		cancel:          cancel,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(loadProjectsCmd(m.ctx), tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.leftViewport = viewport.New(msg.Width/2-2, msg.Height-6)
			m.rightViewport = viewport.New(msg.Width/2-2, msg.Height-6)
			m.ready = true
		} else {
			m.leftViewport.Width = msg.Width/2 - 2
			m.leftViewport.Height = msg.Height - 6
			m.rightViewport.Width = msg.Width/2 - 2
			m.rightViewport.Height = msg.Height - 6
		}
		m.updateViewports()

	case TickMsg:
		if m.loadingProjects || m.loadingSessions || m.loadingPreview {
			m.loading.Tick()
			return m, tickCmd()
		}
		return m, nil

	case ProjectsLoadedMsg:
		m.loadingProjects = false
		if msg.Error != nil {
			m.err = msg.Error
			return m, nil
		}
		m.projects = msg.Projects
		m.cursor = 0
		return m, nil

	case SessionsLoadedMsg:
		m.loadingSessions = false
		if msg.Error != nil {
			m.err = msg.Error
			return m, nil
		}
		if m.selectedProj == nil || msg.ProjectPath != m.selectedProj.Path {
			return m, nil
		}
		m.sessions = msg.Sessions
		m.cursor = 0
		m.updateViewports()
		return m, tea.Batch(m.previewCursorCmd(), tickCmd())

	case PreviewLoadedMsg:
		m.loadingPreview = false
		if msg.FilePath != m.previewPath {
			return m, nil
		}
		if msg.Error != nil {
			m.previewLines = []string{"preview unavailable: " + msg.Error.Error()}
		} else {
			m.previewLines = msg.Lines
		}
		m.updateViewports()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancel()
		return m, tea.Quit

	case "esc":
		if m.currentView == sessionView {
			m.currentView = projectView
			m.sessions = nil
			m.previewLines = nil
			m.selectedProj = nil
			m.cursor = 0
			m.err = nil
			return m, nil
		}
		m.cancel()
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.updateViewports()
			if m.currentView == sessionView {
				return m, tea.Batch(m.previewCursorCmd(), tickCmd())
			}
		}

	case "down", "j":
		if m.cursor < m.itemCount()-1 {
			m.cursor++
			m.updateViewports()
			if m.currentView == sessionView {
				return m, tea.Batch(m.previewCursorCmd(), tickCmd())
			}
		}

	case "enter":
		switch m.currentView {
		case projectView:
			if len(m.projects) == 0 {
				return m, nil
			}
			proj := m.projects[m.cursor]
			m.selectedProj = &proj
			m.currentView = sessionView
			m.cursor = 0
			m.loadingSessions = true
			m.loading.SetMessage("Loading sessions...")
			return m, tea.Batch(loadSessionsCmd(m.ctx, proj.Path), tickCmd())

		case sessionView:
			if len(m.sessions) == 0 {
				return m, nil
			}
			chosen := m.sessions[m.cursor]
			m.chosen = &chosen
			m.cancel()
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m model) itemCount() int {
	if m.currentView == projectView {
		return len(m.projects)
	}
	return len(m.sessions)
}

// previewCursorCmd kicks off preview compilation for the session under the
// cursor.
func (m *model) previewCursorCmd() tea.Cmd {
	if len(m.sessions) == 0 || m.cursor >= len(m.sessions) {
		return nil
	}
	path := m.sessions[m.cursor].FilePath
	m.previewPath = path
	m.previewLines = nil
	m.loadingPreview = true
	m.loading.SetMessage("Compiling preview...")
	return loadPreviewCmd(m.ctx, path)
}

func (m *model) updateViewports() {
	if !m.ready {
		return
	}
	if m.currentView == sessionView {
		m.leftViewport.SetContent(m.renderSessionList())
		m.rightViewport.SetContent(m.renderPreview())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	var body string
	switch {
	case m.err != nil:
		body = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Render("Error: " + m.err.Error())
	case m.loadingProjects || m.loadingSessions:
		body = LoadingOverlay(m.width, m.height-4, m.loading)
	case m.currentView == projectView:
		body = m.renderProjects()
	default:
		body = m.renderSplitView()
	}

	return fmt.Sprintf("%s\n%s\n%s", header, body, footer)
}

func (m model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")).
		Padding(0, 1)

	title := "Agent Share"
	if m.currentView == sessionView && m.selectedProj != nil {
		title = fmt.Sprintf("Agent Share - %s", m.selectedProj.Name)
	}

	return titleStyle.Render(title)
}

func (m model) renderFooter() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)

	help := "↑/↓: navigate • enter: select • q: quit"
	if m.currentView == sessionView {
		help = "↑/↓: navigate • enter: share session • esc: back • q: quit"
	}

	return helpStyle.Render(help)
}

func (m model) renderProjects() string {
	if len(m.projects) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(1, 2).
			Render("No sessions found.")
	}

	var b strings.Builder
	for i, project := range m.projects {
		line := fmt.Sprintf("%s  %d sessions  %s",
			project.Name,
			project.SessionCount,
			project.LastActivity.Format("2006-01-02 15:04"))

		if i == m.cursor {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Render("▸ " + line)
		} else {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Render("  " + line)
		}
		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m model) renderSessionList() string {
	if m.loadingSessions {
		return ""
	}
	if len(m.sessions) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No sessions in this project.")
	}

	var b strings.Builder
	for i, session := range m.sessions {
		preview := session.Preview
		if preview == "" {
			preview = session.SessionID
		}
		line := fmt.Sprintf("%s  (%d turns)", preview, session.TurnCount)

		if i == m.cursor {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Render("▸ " + line)
		} else {
			line = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Render("  " + line)
		}
		b.WriteString(line + "\n")
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("    " + session.LastActivity.Format("2006-01-02 15:04")))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) renderPreview() string {
	if m.loadingPreview {
		return m.loading.View()
	}
	if len(m.previewLines) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("Select a session to preview.")
	}

	var b strings.Builder
	for _, line := range m.previewLines {
		b.WriteString(wrapText(line, m.rightViewport.Width) + "\n")
	}
	return b.String()
}

func (m model) renderSplitView() string {
	divider := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", m.leftViewport.Height))

	left := lipgloss.NewStyle().
		Width(m.leftViewport.Width).
		Render(m.leftViewport.View())
	right := lipgloss.NewStyle().
		Width(m.rightViewport.Width).
		Render(m.rightViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, divider, right)
}

func wrapText(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var b strings.Builder
	for len(text) > width {
		b.WriteString(text[:width] + "\n")
		text = text[width:]
	}
	b.WriteString(text)
	return b.String()
}

// ShowTUI runs the interactive session picker and returns the session the
// user chose, or nil when the picker was dismissed.
func ShowTUI() (*models.Session, error) {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to run TUI: %w", err)
	}

	if m, ok := finalModel.(model); ok {
		return m.chosen, nil
	}
	return nil, nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/strrl/agent-share/internal/render"
	"github.com/strrl/agent-share/internal/sessions"
	"golang.org/x/term"
)

var showJSON bool

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [session]",
		Short: "Show projects, sessions, or a compiled document without TUI",
		Long: `Show recorded sessions in a non-interactive format.
Without arguments: lists all projects and their sessions
With a session reference (file path or id): renders the compiled document`,
		RunE: runShow,
	}

	cmd.Flags().BoolVar(&showJSON, "json", false, "Print the compiled document as JSON")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return showProjects()
	case 1:
		return showDocument(cmd, args[0])
	default:
		return fmt.Errorf("too many arguments. Usage: agent-share show [session]")
	}
}

func showProjects() error {
	projects, err := sessions.FetchProjects()
	if err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Println("Projects:")
	fmt.Println("=========")
	for i, project := range projects {
		fmt.Printf("%d. %s\n", i+1, project.Name)
		fmt.Printf("   Path: %s\n", project.Path)
		fmt.Printf("   Sessions: %d\n", project.SessionCount)
		fmt.Printf("   Last Activity: %s\n", project.LastActivity.Format("2006-01-02 15:04"))
		fmt.Println()
	}

	return nil
}

func showDocument(cmd *cobra.Command, ref string) error {
	path, err := sessions.Resolve(ref)
	if err != nil {
		return err
	}

	doc, err := compileSession(cmd.Context(), path, false)
	if err != nil {
		return err
	}

	if showJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	}

	markdown := render.Markdown(doc)

	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	out, err := render.Terminal(markdown, width)
	if err != nil {
		// Plain markdown still reads fine when styling fails.
		fmt.Println(markdown)
		return nil
	}
	fmt.Print(out)
	return nil
}

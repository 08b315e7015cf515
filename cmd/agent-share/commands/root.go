package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/strrl/agent-share/internal/config"
	"github.com/strrl/agent-share/internal/sessions"
	"github.com/strrl/agent-share/internal/tui"
)

var debugMode bool

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agent-share",
		Short: "Turn agent session logs into shareable documents",
		Long:  `agent-share compiles recorded coding agent sessions into render-ready documents and publishes them.`,
		RunE:  runPicker,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Run in debug mode (list sessions without TUI)")
	rootCmd.AddCommand(NewShareCommand())
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewDebugCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	config.Load()
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPicker(cmd *cobra.Command, args []string) error {
	if debugMode {
		return runDebugMode()
	}

	selected, err := tui.ShowTUI()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if selected == nil {
		return nil
	}

	return shareSession(cmd.Context(), selected.FilePath)
}

func runDebugMode() error {
	projects, err := sessions.FetchProjects()
	if err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Println("=== Debug Mode: Projects and Sessions ===")
	for i, project := range projects {
		fmt.Printf("\n%d. Project: %s\n", i+1, project.Name)
		fmt.Printf("   Path: %s\n", project.Path)
		fmt.Printf("   Sessions: %d\n", project.SessionCount)
		fmt.Printf("   Last Activity: %s\n", project.LastActivity.Format("2006-01-02 15:04"))

		if i == 0 {
			projectSessions, err := sessions.FetchSessionsForProject(project.Path)
			if err != nil {
				fmt.Printf("   Error loading sessions: %v\n", err)
				continue
			}

			fmt.Println("   Sample sessions:")
			for j, session := range projectSessions {
				if j >= 3 {
					break
				}
				fmt.Printf("   - %s (%d turns) %s\n",
					session.LastActivity.Format("2006-01-02 15:04"),
					session.TurnCount,
					session.Preview)
			}
		}
	}
	return nil
}

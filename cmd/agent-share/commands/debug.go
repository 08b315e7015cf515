package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strrl/agent-share/internal/entry"
	"github.com/strrl/agent-share/internal/sessions"
)

// NewDebugCommand creates the debug-session command
func NewDebugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-session <session>",
		Short: "Debug a specific session to see raw parsed entries",
		Args:  cobra.ExactArgs(1),
		RunE:  runDebugSession,
	}
}

func runDebugSession(cmd *cobra.Command, args []string) error {
	path, err := sessions.Resolve(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Debugging session: %s\n", path)
	fmt.Println("==========================================")

	header, entries, err := entry.ReadSession(path)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	fmt.Printf("Session ID: %s\n", header.ID)
	fmt.Printf("Cwd:        %s\n", header.Cwd)
	fmt.Printf("Timestamp:  %s\n", header.Timestamp)
	fmt.Printf("Entries:    %d\n", len(entries))

	for i, e := range entries {
		fmt.Printf("\n--- Entry %d (%s) ---\n", i+1, e.Kind)
		switch e.Kind {
		case entry.KindMessage:
			m := e.Message
			fmt.Printf("role=%s model=%s toolCallId=%s isError=%v\n", m.Role, m.Model, m.ToolCallID, m.IsError)
			fmt.Printf("text: %s\n", m.PlainText())
			for _, block := range m.Blocks {
				if tc, ok := block.(entry.ToolCallBlock); ok {
					fmt.Printf("toolCall: %s id=%s args=%v\n", tc.Name, tc.ID, tc.Arguments)
				}
			}
		case entry.KindThinkingLevelChange:
			fmt.Printf("thinkingLevel=%s\n", e.ThinkingLevel)
		}
	}

	return nil
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strrl/agent-share/internal/compile"
	"github.com/strrl/agent-share/internal/config"
	"github.com/strrl/agent-share/internal/entry"
	"github.com/strrl/agent-share/internal/publish"
	"github.com/strrl/agent-share/internal/render"
	"github.com/strrl/agent-share/internal/sessions"
	"github.com/strrl/agent-share/internal/title"
	"github.com/strrl/agent-share/pkg/models"
)

var (
	shareGist     bool
	shareOut      string
	shareEndpoint string
	shareNoTitle  bool
)

// NewShareCommand creates the share command
func NewShareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share <session>",
		Short: "Compile a session and publish it",
		Long: `Compile a recorded session into a document and publish it.
The session argument is either a JSONL file path or a session id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sessions.Resolve(args[0])
			if err != nil {
				return err
			}
			return shareSession(cmd.Context(), path)
		},
	}

	cmd.Flags().BoolVar(&shareGist, "gist", false, "Publish as a secret GitHub gist via the gh CLI")
	cmd.Flags().StringVar(&shareOut, "out", "", "Write the rendered document to a local file instead of publishing")
	cmd.Flags().StringVar(&shareEndpoint, "endpoint", "", "Share endpoint URL (defaults to AGENT_SHARE_ENDPOINT)")
	cmd.Flags().BoolVar(&shareNoTitle, "no-title", false, "Skip LLM title generation and use the first prompt line")

	return cmd
}

// shareSession compiles the session at path and publishes it according to
// the share flags. It is also the landing point after a TUI selection.
func shareSession(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := compileSession(ctx, path, !shareNoTitle)
	if err != nil {
		return err
	}

	switch {
	case shareOut != "":
		return writeLocal(doc, shareOut)
	case shareGist:
		html, err := render.HTML(doc)
		if err != nil {
			return err
		}
		url, err := publish.ToGist(ctx, doc, html)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	default:
		endpoint := shareEndpoint
		if endpoint == "" {
			endpoint = config.Endpoint()
		}
		url, err := publish.ToEndpoint(ctx, endpoint, doc)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	}
}

// compileSession reads, compiles, and titles a session file.
func compileSession(ctx context.Context, path string, withTitle bool) (*models.Document, error) {
	header, entries, err := entry.ReadSession(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	docTitle := compile.FallbackTitle(entries)
	if withTitle {
		docTitle = title.Generate(ctx, entries)
	}

	doc := compile.Compile(header, entries, docTitle)
	return &doc, nil
}

func writeLocal(doc *models.Document, out string) error {
	var content string
	if strings.HasSuffix(out, ".md") {
		content = render.Markdown(doc)
	} else {
		html, err := render.HTML(doc)
		if err != nil {
			return err
		}
		content = html
	}

	if err := publish.ToFile(out, content); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

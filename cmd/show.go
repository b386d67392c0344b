package cmd

import (
	"fmt"
	"os"

	"github.com/loanbuddy/helpctl/internal/helpclient"
	"github.com/loanbuddy/helpctl/internal/output"
	"github.com/loanbuddy/helpctl/pkg/panel"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultShowWidth = 80

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch help content and print it",
	Long: `Fetch help content once and print it without opening the panel.

Formats:
  text      the panel's content view (default)
  markdown  markdown, styled with glamour when stdout is a terminal
  json      the document exactly as served
  tree      an outline of sections and items`,
	GroupID: "help",
	Args:    cobra.NoArgs,
	RunE:    runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().String("url", "", "Help service base URL")
	showCmd.Flags().StringP("format", "f", "text", "Output format: text, markdown, json, tree")
	showCmd.Flags().Int("width", 0, "Wrap width (0 = terminal width)")
	showCmd.Flags().Bool("ids", false, "Show section ids in tree output")
}

func runShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "markdown", "md", "json", "tree":
	default:
		return fmt.Errorf("unknown format %q (valid: text, markdown, json, tree)", format)
	}

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	doc, err := client.Fetch(cmd.Context())
	if err != nil {
		msg := helpclient.UserMessage(err)
		if format == "json" {
			output.JSONError("fetch_failed", msg)
		}
		return fmt.Errorf("%s (%s)", msg, client.URL())
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = stdoutWidth()
	}

	switch format {
	case "json":
		return output.JSON(doc)
	case "tree":
		ids, _ := cmd.Flags().GetBool("ids")
		fmt.Fprintln(output.Stdout, output.RenderTree(output.DocumentTree(doc), output.TreeRenderOptions{
			ShowIDs: ids,
			Counts:  true,
		}))
	case "markdown", "md":
		md := output.Markdown(doc)
		if !isTerminal(os.Stdout) {
			fmt.Fprint(output.Stdout, md)
			return nil
		}
		rendered, err := output.RenderMarkdown(md, width)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprint(output.Stdout, rendered)
	default:
		body, _ := panel.RenderDocument(doc, width)
		fmt.Fprintln(output.Stdout, body)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// stdoutWidth returns the terminal width, or defaultShowWidth when stdout
// is not a terminal.
func stdoutWidth() int {
	if !isTerminal(os.Stdout) {
		return defaultShowWidth
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultShowWidth
	}
	return w
}

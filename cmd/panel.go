package cmd

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/loanbuddy/helpctl/pkg/panel"
	"github.com/spf13/cobra"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the help panel",
	Long: `Open the help panel in the terminal.

The panel fetches help content once from GET {url}/api/help and shows a
loading message, the error, or the help document. Scroll with the arrow
keys, press / to jump to a section, and esc or q to close.`,
	GroupID: "help",
	Args:    cobra.NoArgs,
	RunE:    runPanel,
}

func init() {
	rootCmd.AddCommand(panelCmd)

	panelCmd.Flags().String("url", "", "Help service base URL (default: config, running server, or http://localhost:8000)")
	panelCmd.Flags().Int("width", 0, "Panel width in columns (default 72, capped to the terminal)")
}

func runPanel(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(true)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	slog.Info("panel start", "url", client.URL())

	var opts []panel.Option
	if w, _ := cmd.Flags().GetInt("width"); w > 0 {
		opts = append(opts, panel.WithWidth(w))
	}

	p := panel.New(client, opts...)
	prog := tea.NewProgram(panel.NewApp(p),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := prog.Run(); err != nil {
		return err
	}

	slog.Info("panel closed", "state", p.State().String())
	return nil
}

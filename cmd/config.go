package cmd

import (
	"fmt"

	"github.com/loanbuddy/helpctl/internal/config"
	"github.com/loanbuddy/helpctl/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Get or set project configuration",
	GroupID: "system",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one config value, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getBaseDir())
		if err != nil {
			return err
		}

		keys := config.Keys
		if len(args) == 1 {
			keys = args
		}
		for _, k := range keys {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintln(output.Stdout, v)
			} else {
				fmt.Fprintf(output.Stdout, "%s=%s\n", k, v)
			}
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a config value in .helpctl/config.json.

Keys:
  base_url        help service URL used by panel and show
  timeout         request timeout as a Go duration (empty = none)
  retry_attempts  extra attempts after a transport or 5xx failure
  cors_origin     default --cors for helpctl serve`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetValue(getBaseDir(), args[0], args[1]); err != nil {
			return err
		}
		output.Success("Set %s", args[0])
		return nil
	},
}

var configURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Show which help service URL commands will use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, source := resolveBaseURL(cmd)
		fmt.Fprintf(output.Stdout, "%s (%s)\n", u, source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd, configURLCmd)

	configURLCmd.Flags().String("url", "", "Help service base URL")
}

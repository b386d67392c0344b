package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/loanbuddy/helpctl/internal/config"
	"github.com/loanbuddy/helpctl/internal/helpclient"
	"github.com/loanbuddy/helpctl/internal/output"
	"github.com/loanbuddy/helpctl/internal/serve"
	"github.com/loanbuddy/helpctl/internal/workdir"
	"github.com/spf13/cobra"
)

// envDebugLog names a file that receives debug logs. The panel owns the
// terminal, so it never logs anywhere else.
const envDebugLog = "HELPCTL_DEBUG_LOG"

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "helpctl",
	Short: "Browse and publish LoanBuddy help content",
	Long: `helpctl - fetch help content from a help content service and show it in a
terminal help panel, or run the service that publishes it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	rootCmd.AddGroup(
		&cobra.Group{ID: "help", Title: "Help Content:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
}

func initBaseDir() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine working directory: %v\n", err)
		os.Exit(1)
	}
	baseDir = workdir.ResolveBaseDir(wd)
}

// getBaseDir returns the base directory for the project
func getBaseDir() string {
	return baseDir
}

// resolveBaseURL picks the help service URL. Precedence: --url flag,
// HELPCTL_URL, project config, a running helpctl serve found through its
// port file, then config.DefaultBaseURL. The second value names the source.
func resolveBaseURL(cmd *cobra.Command) (string, string) {
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		return u, "flag"
	}
	if u, src := config.ConfiguredBaseURL(getBaseDir()); u != "" {
		return u, src
	}
	if u, ok := serve.DiscoverURL(getBaseDir()); ok {
		return u, "port file"
	}
	return config.DefaultBaseURL, "default"
}

// newClient builds a help client from flags and project config.
func newClient(cmd *cobra.Command) (*helpclient.Client, error) {
	cfg, err := config.Load(getBaseDir())
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	baseURL, source := resolveBaseURL(cmd)
	slog.Debug("help service", "url", baseURL, "source", source)

	var opts []helpclient.Option
	if timeout > 0 {
		opts = append(opts, helpclient.WithTimeout(timeout))
	}
	if cfg.RetryAttempts > 0 {
		opts = append(opts, helpclient.WithRetry(helpclient.RetryPolicy{
			Attempts: cfg.RetryAttempts,
			Backoff:  250 * time.Millisecond,
		}))
	}
	return helpclient.New(baseURL, opts...), nil
}

// setupLogging routes slog for commands. With quiet set, logs are dropped
// unless HELPCTL_DEBUG_LOG names a file. The returned func closes that file.
func setupLogging(quiet bool) (func(), error) {
	path := os.Getenv(envDebugLog)
	if path == "" {
		if quiet {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

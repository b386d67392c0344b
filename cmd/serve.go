package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/loanbuddy/helpctl/internal/config"
	"github.com/loanbuddy/helpctl/internal/help"
	"github.com/loanbuddy/helpctl/internal/serve"
	"github.com/loanbuddy/helpctl/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const portFileInterval = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the help content service",
	Long: `Start an HTTP server that publishes help content.

Endpoints:
  GET /api/help   the help document as JSON
  PUT /api/help   replace the document (requires --token)
  GET /health     liveness check

Content comes from .helpctl/help.db, which is created and seeded with the
built-in LoanBuddy help on first run. With --static the built-in content is
served and nothing is written.

The bound port is written to .helpctl/serve-port so helpctl panel and
helpctl show can find the server without --url.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8000, "Port to listen on (0 = auto-assign)")
	serveCmd.Flags().StringP("addr", "a", "localhost", "Address to bind to")
	serveCmd.Flags().String("token", "", "Bearer token that enables PUT /api/help")
	serveCmd.Flags().String("cors", "", "Allowed CORS origin (default: cors_origin from config)")
	serveCmd.Flags().Bool("static", false, "Serve the built-in help content without a database")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := getBaseDir()

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	addr, _ := cmd.Flags().GetString("addr")
	token, _ := cmd.Flags().GetString("token")
	cors, _ := cmd.Flags().GetString("cors")
	if cors == "" {
		cors = cfg.CORSOrigin
	}
	static, _ := cmd.Flags().GetBool("static")

	var (
		source serve.ContentSource
		dbDesc = "none (static content)"
	)
	if static {
		source = serve.StaticSource{Doc: help.Default()}
	} else {
		st, err := store.Initialize(dir)
		if err != nil {
			return err
		}
		defer st.Close()

		seeded, err := st.Seed(cmd.Context())
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("seeded help content", "db", store.Path(dir))
		}
		source = st
		dbDesc = store.Path(dir)
	}

	srv := serve.NewServer(source, serve.ServeConfig{
		Port:       port,
		Addr:       addr,
		Token:      token,
		CORSOrigin: cors,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	instanceID, err := serve.GenerateInstanceID()
	if err != nil {
		return err
	}
	portInfo := &serve.PortInfo{
		PID:        os.Getpid(),
		InstanceID: instanceID,
	}

	g, gctx := errgroup.WithContext(ctx)
	registered := make(chan struct{})

	g.Go(func() error {
		return srv.ListenAndServe(gctx, func(actual int) {
			portInfo.Port = actual
			portInfo.StartedAt = time.Now()
			if err := serve.WritePortFile(dir, portInfo); err != nil {
				slog.Warn("write port file", "err", err)
			} else {
				close(registered)
			}

			fmt.Fprintf(os.Stderr, "helpctl serve listening on http://%s:%d\n", addr, actual)
			fmt.Fprintf(os.Stderr, "  base dir:   %s\n", dir)
			fmt.Fprintf(os.Stderr, "  database:   %s\n", dbDesc)
			fmt.Fprintf(os.Stderr, "  writes:     %s\n", writesDesc(token))
			fmt.Fprintf(os.Stderr, "  instance:   %s\n", instanceID)
		})
	})

	g.Go(func() error {
		select {
		case <-registered:
		case <-gctx.Done():
			return nil
		}
		return serve.KeepPortFile(gctx, dir, portInfo, portFileInterval)
	})

	err = g.Wait()

	if current, rerr := serve.ReadPortFile(dir); rerr == nil && current.InstanceID == instanceID {
		_ = serve.DeletePortFile(dir)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	fmt.Fprintf(os.Stderr, "helpctl serve stopped\n")
	return nil
}

func writesDesc(token string) string {
	if token == "" {
		return "disabled"
	}
	return "enabled (bearer token)"
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opennotesproject/notevault/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vault web viewer",
	Long: `Starts the local web viewer. The vault is fetched and indexed in the
background; the page shows progress until it is ready.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, sess, database, err := openSession(ctx, nil)
		if err != nil {
			return err
		}
		defer database.Close()

		port := cfg.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		srv, err := server.New(server.Config{
			Port:      port,
			AllowAll:  cfg.AllowAllOrigins,
			RepoLabel: cfg.RepoLabel(),
		}, sess, slog.Default())
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		go func() {
			if err := sess.Init(ctx); err != nil {
				slog.Error("loading vault failed", "error", err)
			}
		}()

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "notevault %s serving %s on http://localhost:%d\n", Version, cfg.RepoLabel(), port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"eventdesk/auth"
	"eventdesk/config"
	"eventdesk/storage"
	"eventdesk/web"
)

var (
	servePort      int
	serveDBPath    string
	serveTokenFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the back-office JSON API",
	Long: `Start a local HTTP server exposing the events back office.

All endpoints require a bearer token from the token file. Admins see and
manage everything, collaborators are scoped to their own company, viewers are
read-only. Prometheus metrics are exposed on /metrics.`,
	Example: `
  # Start on the configured port
  eventdesk serve

  # Start with explicit port, database, and token file
  eventdesk serve --port 9090 --db ./eventdesk.db --token-file ~/.eventdesk/tokens.json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		port := servePort
		if port <= 0 {
			port = cfg.Server.Port
		}

		tokenPath, err := resolveTokenFilePath(serveTokenFile, cfg.Auth.TokenFile)
		if err != nil {
			return err
		}
		tokens, err := auth.LoadTokenFile(tokenPath)
		if err != nil {
			return fmt.Errorf("load token file %s: %w", tokenPath, err)
		}

		store, err := storage.OpenSQLite(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: web.NewServer(store, tokens, *cfg, logger),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		fmt.Printf("Listening on http://localhost:%d\n", port)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

// resolveTokenFilePath picks the token file: flag, then config, then the
// default under $HOME/.eventdesk.
func resolveTokenFilePath(flagValue, configValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if strings.TrimSpace(configValue) != "" {
		return configValue, nil
	}
	return auth.DefaultTokenFilePath()
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (0 = use server.port from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./eventdesk.db", "Path to local SQLite database")
	serveCmd.Flags().StringVar(&serveTokenFile, "token-file", "", "Path to token JSON (default: $HOME/.eventdesk/tokens.json)")
}

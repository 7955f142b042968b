package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	httpapi "github.com/custodia-labs/versesearch/internal/adapters/driving/http"
	"github.com/custodia-labs/versesearch/internal/logger"
)

var (
	serveListen     string
	serveSkipEnsure bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the verse search HTTP API.

Public routes (rate limited):
  GET  /api/v1/verses/search?q=...&from=0&size=10
  GET  /api/v1/verses/suggest?q=...&field=text_english
  GET  /api/v1/verses/read?id=1&count=5

Admin routes (HTTP basic auth):
  POST /api/v1/verses/admin/upload[?rebuild=true]
  GET  /api/v1/verses/admin/health
  GET  /api/v1/verses/admin/history?limit=20

The index is created at startup if it does not exist. The admin password
is read from server.admin_password or VERSESEARCH_ADMIN_PASSWORD, and
prompted for on a terminal when unset.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides server.listen)")
	serveCmd.Flags().BoolVar(&serveSkipEnsure, "skip-ensure", false, "do not create the index at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}
	if err := resolveBackendPassword(cmd, cfg); err != nil {
		return err
	}
	if err := resolveAdminPassword(cmd, cfg); err != nil {
		return err
	}

	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Search == nil || s.Ingest == nil || s.Health == nil {
		return errors.New("search, ingest and health services must be configured")
	}

	logger.SetTimestamps(true)

	if !serveSkipEnsure && s.Index != nil {
		if err := s.Index.Ensure(cmd.Context()); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}

	server, err := httpapi.NewServer(httpapi.Services{
		Search: s.Search,
		Ingest: s.Ingest,
		Health: s.Health,
		Locks:  s.Locks,
		Index:  s.IndexName,
	}, httpapi.Options{
		Listen:         cfg.Server.Listen,
		AdminUsername:  cfg.Server.AdminUsername,
		AdminPassword:  cfg.Server.AdminPassword,
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		DefaultSize:    cfg.Search.DefaultSize,
	})
	if err != nil {
		return err
	}

	cmd.Printf("Serving verse search on %s\n", cfg.Server.Listen)
	return server.ListenAndServe(cmd.Context())
}

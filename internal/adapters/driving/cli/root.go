// Package cli implements the versesearch command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/versesearch/internal/core/ports/driving"
	"github.com/custodia-labs/versesearch/internal/core/services"
	"github.com/custodia-labs/versesearch/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Services are the core ports the commands drive.
type Services struct {
	Search driving.SearchService
	Ingest driving.IngestService
	Index  driving.IndexService
	Health driving.HealthService

	// Locks serialises ingestion per index.
	Locks *services.IndexLocks

	// IndexName is the configured verse index.
	IndexName string

	// Close releases backend and store resources.
	Close func() error
}

// Builder constructs the services from a validated configuration.
type Builder func(ctx context.Context, cfg file.Config) (*Services, error)

var (
	configPath string
	verbose    bool

	builder   Builder
	svc       *Services
	appConfig *file.Config
)

var rootCmd = &cobra.Command{
	Use:   "versesearch",
	Short: "Multilingual verse search",
	Long: `versesearch indexes verses with Arabic, English and Bangla translations
and answers typo-tolerant, highlighted searches across all three languages.

The search backend is Elasticsearch by default; an embedded index can be
selected with backend.kind = "embedded" for offline use.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (.toml, .yaml or .yml; default ~/.versesearch/config.toml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetBuilder sets the function that wires services from configuration.
func SetBuilder(b Builder) {
	builder = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Shutdown releases the services built during execution.
func Shutdown() error {
	if svc == nil || svc.Close == nil {
		return nil
	}
	err := svc.Close()
	svc = nil
	return err
}

// loadConfig loads and caches the configuration for this run.
func loadConfig() (*file.Config, error) {
	if appConfig != nil {
		return appConfig, nil
	}

	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded (file: %q, backend: %s)", path, cfg.Backend.Kind)

	appConfig = &cfg
	return appConfig, nil
}

// defaultConfigPath returns ~/.versesearch/config.toml if it exists.
func defaultConfigPath() string {
	dir, err := file.DefaultDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadServices builds the services on first use.
func loadServices(cmd *cobra.Command) (*Services, error) {
	if svc != nil {
		return svc, nil
	}
	if builder == nil {
		return nil, errors.New("services not configured")
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := resolveBackendPassword(cmd, cfg); err != nil {
		return nil, err
	}

	built, err := builder(cmd.Context(), *cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}
	svc = built
	return svc, nil
}

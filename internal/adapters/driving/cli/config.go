package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/adapters/driven/config/file"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration as TOML to path, or to
~/.versesearch/config.toml when no path is given. Existing files are
kept unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Prints the configuration after defaults, file and environment are applied. Passwords are masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		dir, err := file.DefaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.toml")
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists; pass --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if err := file.Save(path, file.DefaultConfig()); err != nil {
		return err
	}
	cmd.Printf("Configuration written to %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	masked := *cfg
	if masked.Backend.Password != "" {
		masked.Backend.Password = "********"
	}
	if masked.Server.AdminPassword != "" {
		masked.Server.AdminPassword = "********"
	}
	data, err := toml.Marshal(masked)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

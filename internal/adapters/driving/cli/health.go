package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show backend and index health",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Health == nil {
		return errors.New("health service not configured")
	}

	report, err := s.Health.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if healthJSON {
		return printJSON(cmd, report)
	}

	cmd.Println(styles.Title.Render("Backend"))
	cmd.Printf("  Cluster:   %s\n", report.Backend.ClusterName)
	cmd.Printf("  Version:   %s\n", report.Backend.Version)
	cmd.Printf("  Status:    %s\n", statusStyle(report.Cluster.Status).Render(string(report.Cluster.Status)))
	cmd.Printf("  Nodes:     %d\n", report.Cluster.NumberOfNodes)
	cmd.Printf("  Shards:    %d active, %d primary\n", report.Cluster.ActiveShards, report.Cluster.ActivePrimaryShards)
	cmd.Println()
	cmd.Println(styles.Title.Render("Index"))
	cmd.Printf("  Name:      %s\n", report.Index)
	if !report.IndexExists {
		cmd.Printf("  Exists:    %s\n", styles.Warning.Render("no"))
		return nil
	}
	cmd.Printf("  Exists:    yes\n")
	cmd.Printf("  Documents: %d\n", report.DocumentCount)
	return nil
}

func statusStyle(status domain.HealthStatus) lipgloss.Style {
	switch status {
	case domain.HealthGreen:
		return styles.Success
	case domain.HealthYellow:
		return styles.Warning
	default:
		return styles.Error
	}
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit < 1 {
		return errors.New("limit must be at least 1")
	}

	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	runs, err := s.Ingest.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if historyJSON {
		return printJSON(cmd, runs)
	}
	if len(runs) == 0 {
		cmd.Println("No ingestion runs recorded.")
		return nil
	}

	for _, run := range runs {
		status := styles.Success.Render("ok")
		switch {
		case run.Error != "" && len(run.FailedIDs) > 0:
			status = styles.Warning.Render("partial")
		case run.Error != "":
			status = styles.Error.Render("failed")
		}
		cmd.Printf("%s  %s  %-7s  %d/%d  [%s]\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			styles.Muted.Render(run.BatchID), run.Mode, run.Succeeded, run.Total, status)
		if run.Error != "" {
			cmd.Printf("    %s\n", run.Error)
		}
	}
	return nil
}

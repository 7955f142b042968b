package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/domain"
	"github.com/custodia-labs/versesearch/internal/logger"
	"github.com/custodia-labs/versesearch/internal/normalisers/versecsv"
)

var (
	ingestRebuild bool
	ingestWatch   bool
	ingestJSON    bool
)

// ingestDebounce coalesces bursts of writes to the watched file.
var ingestDebounce = 500 * time.Millisecond

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.csv]",
	Short: "Index verses from a CSV file",
	Long: `Reads verses from a CSV file with the columns id, sura_no, verse_no,
text_arabic, text_english and text_bangla (the ayat_text_* aliases are
accepted) and indexes them in one bulk write.

By default existing verses are kept and verses with the same id are
replaced. With --rebuild the index is deleted and recreated first.

With --watch the file is re-ingested every time it changes until
interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "delete and recreate the index before ingesting")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest whenever the file changes")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the outcome as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Ingest == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestFile(cmd, s, path, ingestRebuild); err != nil {
		if !ingestWatch {
			return err
		}
		cmd.PrintErrln(styles.Error.Render(err.Error()))
	}
	if !ingestWatch {
		return nil
	}

	logger.SetTimestamps(true)
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", path)
	return watchFile(cmd.Context(), path, ingestDebounce, func(context.Context) {
		// Later runs always upsert; only the first honours --rebuild.
		if err := ingestFile(cmd, s, path, false); err != nil {
			cmd.PrintErrln(styles.Error.Render(err.Error()))
		}
	})
}

// ingestFile parses path and writes it to the index under the index lock.
func ingestFile(cmd *cobra.Command, s *Services, path string, rebuild bool) error {
	records, err := versecsv.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if s.Locks != nil {
		unlock := s.Locks.Lock(s.IndexName)
		defer unlock()
	}

	var outcome *domain.BulkOutcome
	if rebuild {
		outcome, err = s.Ingest.Reload(cmd.Context(), records)
	} else {
		outcome, err = s.Ingest.Ingest(cmd.Context(), records)
	}

	var partial *domain.PartialIndexError
	if err != nil && !errors.As(err, &partial) {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		if jerr := printJSON(cmd, outcome); jerr != nil {
			return jerr
		}
	} else {
		printOutcome(cmd, outcome)
	}

	if partial != nil {
		return fmt.Errorf("%d of %d verses failed to index: %w",
			len(partial.Outcome.Failures), partial.Outcome.Total, domain.ErrPartialIndexFailure)
	}
	return nil
}

func printOutcome(cmd *cobra.Command, outcome *domain.BulkOutcome) {
	if outcome == nil {
		return
	}
	status := styles.Success.Render("ok")
	if outcome.Failed() {
		status = styles.Warning.Render("partial")
	}
	cmd.Printf("Batch %s [%s]\n", outcome.BatchID, status)
	cmd.Printf("  Index:     %s\n", outcome.Index)
	cmd.Printf("  Indexed:   %d/%d\n", outcome.Succeeded, outcome.Total)
	cmd.Printf("  Took:      %s\n", outcome.Took)
	if !outcome.Failed() {
		return
	}
	cmd.Println("  Failures:")
	for _, f := range outcome.Failures {
		cmd.Printf("    id %d (status %d): %s: %s\n", f.Record.ID, f.Status, f.Error.Type, f.Error.Reason)
	}
}

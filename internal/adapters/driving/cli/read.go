package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/services"
)

var (
	readCount int
	readJSON  bool
)

var readCmd = &cobra.Command{
	Use:   "read [start-id]",
	Short: "Read consecutive verses",
	Long: `Prints verses in id order starting at start-id (default 1).
Missing ids are skipped, so fewer verses than requested may be shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().IntVarP(&readCount, "count", "n", services.DefaultReadCount, "number of verses to read")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "output verses as JSON")
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	start := int64(1)
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid start id %q: %w", args[0], err)
		}
		start = id
	}

	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Search == nil {
		return errors.New("search service not configured")
	}

	page, err := s.Search.Consecutive(cmd.Context(), start, readCount)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}

	if readJSON {
		return printJSON(cmd, page)
	}
	if len(page.Verses) == 0 {
		cmd.Println("No verses found.")
		return nil
	}
	for _, v := range page.Verses {
		cmd.Printf("  %s %s\n", styles.Label.Render(verseRef(v)), styles.Muted.Render(fmt.Sprintf("(id %d)", v.ID)))
		printVerse(cmd, v, nil)
		cmd.Println()
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

var (
	searchFrom int
	searchSize int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search verses",
	Long: `Searches Arabic, English and Bangla texts in one query.
A typo-tolerant match and an exact phrase match are combined; exact
phrases rank higher. Matched terms are highlighted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchFrom, "from", 0, "number of results to skip")
	searchCmd.Flags().IntVarP(&searchSize, "size", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Search == nil {
		return errors.New("search service not configured")
	}

	query := strings.Join(args, " ")
	result, err := s.Search.Search(cmd.Context(), query, searchFrom, searchSize)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, result)
	}
	outputSearchTable(cmd, result)
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.SearchResult) {
	if len(result.Hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(styles.Title.Render(fmt.Sprintf("%d results (%s)", result.Total, result.Took)))
	cmd.Println()
	for i, hit := range result.Hits {
		cmd.Printf("  [%d] %s %s\n", searchFrom+i+1,
			styles.Label.Render(verseRef(hit.Verse)),
			styles.Muted.Render(fmt.Sprintf("(id %d, score %.2f)", hit.Verse.ID, hit.Score)))
		printVerse(cmd, hit.Verse, hit.Highlights)
		cmd.Println()
	}
}

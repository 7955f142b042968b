package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

var (
	suggestField string
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [prefix]",
	Short: "Suggest completions for a prefix",
	Long: `Returns up to five typo-tolerant completions for a prefix in one
language field: text_arabic, text_english or text_bangla.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestField, "field", "f", string(domain.FieldEnglish), "text field to complete")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Search == nil {
		return errors.New("search service not configured")
	}

	suggestions, err := s.Search.Suggest(cmd.Context(), strings.Join(args, " "), suggestField)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if suggestJSON {
		return printJSON(cmd, suggestions)
	}
	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}
	for _, sg := range suggestions {
		cmd.Printf("  %s\n", sg.Text)
	}
	return nil
}

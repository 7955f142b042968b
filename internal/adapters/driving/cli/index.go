package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the verse index",
}

var indexEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the index if it does not exist",
	Long: `Waits for the backend to become ready and creates the verse index
with its multilingual mapping if it is absent. An existing index is left
untouched; mapping differences are reported as warnings.`,
	Args: cobra.NoArgs,
	RunE: runIndexEnsure,
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Delete and recreate the index",
	Long: `Deletes the verse index and creates it again with the current mapping.
All indexed verses are discarded. Requires --force.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

func init() {
	indexRebuildCmd.Flags().BoolVar(&indexForce, "force", false, "confirm that all indexed verses will be discarded")
	indexCmd.AddCommand(indexEnsureCmd)
	indexCmd.AddCommand(indexRebuildCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexEnsure(cmd *cobra.Command, _ []string) error {
	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Index == nil {
		return errors.New("index service not configured")
	}

	if err := s.Index.Ensure(cmd.Context()); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	cmd.Printf("Index %s is ready.\n", s.IndexName)
	return nil
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if !indexForce {
		return errors.New("rebuild discards every indexed verse; pass --force to confirm")
	}

	s, err := loadServices(cmd)
	if err != nil {
		return err
	}
	if s.Index == nil {
		return errors.New("index service not configured")
	}

	if s.Locks != nil {
		unlock := s.Locks.Lock(s.IndexName)
		defer unlock()
	}
	if err := s.Index.Rebuild(cmd.Context()); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	cmd.Printf("Index %s rebuilt.\n", s.IndexName)
	return nil
}

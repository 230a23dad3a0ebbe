package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push all vault chunks into the vector index",
	Long: `Load the vault, chunk every note, and push the chunks into the external
vector retrieval service. Run this after adding or editing notes so
suggestions reflect the current vault.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(_ *cobra.Command, _ []string) error {
	fmt.Println("Indexing vault into the retrieval service...")

	count, err := appPipeline.Reindex()
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks.\n", count)
	return nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the vault's tag vocabulary",
	RunE:  runTags,
}

var tagsShowContext bool

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.Flags().BoolVar(&tagsShowContext, "context", false, "Show which notes reference each tag")
}

func runTags(_ *cobra.Command, _ []string) error {
	snap := appPipeline.Snapshot()
	tags := snap.SortedVocab()

	if len(tags) == 0 {
		fmt.Println("No tags found.")
		return nil
	}

	fmt.Printf("%d tags:\n", len(tags))
	for _, tag := range tags {
		if tagsShowContext {
			if users := snap.TagContext[tag]; len(users) > 0 {
				fmt.Printf("  %s  (used by: %s)\n", tag, strings.Join(users, ", "))
				continue
			}
		}
		fmt.Printf("  %s\n", tag)
	}
	return nil
}

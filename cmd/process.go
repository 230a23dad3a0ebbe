package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/notewriter"
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run the full pipeline on a text file",
	Long: `Run the full pipeline on a text file: retrieval-layer suggestions,
escalation to the tag arbiter when retrieval is weak, and a formatted note
written into the vault inbox.

Examples:
  vault-suggest process scanned-page.txt
  vault-suggest process scanned-page.txt --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var processDryRun bool

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "Show results without writing a note")
}

func runProcess(_ *cobra.Command, args []string) error {
	text, err := readInput(nil, args[0])
	if err != nil {
		return err
	}
	filename := filepath.Base(args[0])

	result, err := appPipeline.Process(text, filename)
	if err != nil {
		return err
	}

	printSuggestions(result.Suggestion)

	if result.Escalated {
		fmt.Println("\nEscalated to tag arbiter.")
		if result.Arbiter != nil {
			fmt.Printf("  Existing: %v\n", result.Arbiter.ExistingTags)
			fmt.Printf("  New:      %v\n", result.Arbiter.NewTags)
			fmt.Printf("  Reasoning: %s\n", result.Arbiter.Reasoning)
		} else {
			fmt.Println("  Arbiter unavailable or unusable; kept retrieval tags.")
		}
	}

	fmt.Printf("\nFinal tags: %v\n", result.FinalTags)

	if processDryRun {
		fmt.Println("\nDry run: no note written.")
		return nil
	}

	title := notewriter.TitleFromFilename(filename)
	path, err := appPipeline.WriteNote(title, text, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nNote saved to: %s\n", path)
	return nil
}

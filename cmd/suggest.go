package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [text]",
	Short: "Suggest wikilinks and tags for text",
	Long: `Run the retrieval layer only: vector similarity plus one-hop graph
expansion, without the LLM arbiter.

Text comes from the argument, --file, or stdin.

Examples:
  vault-suggest suggest "backpropagation through convolutional layers"
  vault-suggest suggest --file lecture-notes.txt
  cat notes.txt | vault-suggest suggest`,
	RunE: runSuggest,
}

var (
	suggestFile string
	suggestTopK int
)

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().StringVarP(&suggestFile, "file", "f", "", "Read text from a file")
	suggestCmd.Flags().IntVarP(&suggestTopK, "top-k", "k", 0, "Number of candidates to retrieve (default from config)")
}

func runSuggest(_ *cobra.Command, args []string) error {
	text, err := readInput(args, suggestFile)
	if err != nil {
		return err
	}

	result, err := appPipeline.Suggest(text, suggestTopK)
	if err != nil {
		return err
	}

	printSuggestions(result)
	return nil
}

func printSuggestions(result *suggest.Result) {
	fmt.Println("Suggested wikilinks:")
	if len(result.Links) == 0 {
		fmt.Println("  (none)")
	}
	for _, c := range result.Links {
		printCandidate(c)
	}

	fmt.Println("\nSuggested tags:")
	if len(result.Tags) == 0 {
		fmt.Println("  (none)")
	}
	for _, c := range result.Tags {
		printCandidate(c)
	}
}

func printCandidate(c suggest.Candidate) {
	if rc, ok := c.(suggest.RetrievalCandidate); ok {
		fmt.Printf("  [[%s]] (score: %.4f, source: %s)\n", rc.Title, rc.Score, rc.Source)
		return
	}
	fmt.Printf("  [[%s]] (source: %s)\n", c.CandidateTitle(), c.CandidateSource())
}

func readInput(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

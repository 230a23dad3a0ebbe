package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/config"
	interrors "github.com/streed/vault-suggest/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vault-suggest configuration",
	Long:  `View and manage vault-suggest configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value.

Available keys:
  - vault-path: Path to the note vault
  - retrieval-url: Base URL of the vector retrieval service
  - ollama-endpoint: Ollama endpoint for the tag arbiter
  - arbiter-model: Model used by the tag arbiter
  - top-k: Number of candidates to retrieve
  - min-tags-threshold: Escalate when retrieval finds fewer tags than this
  - min-confidence-threshold: Escalate when the top link score is below this
  - enable-rerank: Use the service's reranker (true/false)
  - tag-style: "wikilink" or "hashtag"
  - watch-folder: Drop folder for the watcher
  - debug: Enable/disable debug logging (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Println("=== vault-suggest Configuration ===")
	fmt.Printf("Config file:               %s\n", configPath)
	fmt.Printf("vault-path:                %s\n", cfg.VaultPath)
	fmt.Printf("tags-folder:               %s\n", cfg.TagsFolder)
	fmt.Printf("inbox-folder:              %s\n", cfg.InboxFolder)
	fmt.Printf("tag-style:                 %s\n", cfg.TagStyle)
	fmt.Printf("retrieval-url:             %s\n", cfg.RetrievalURL)
	fmt.Printf("top-k:                     %d\n", cfg.TopK)
	fmt.Printf("enable-rerank:             %v\n", cfg.EnableRerank)
	fmt.Printf("min-tags-threshold:        %d\n", cfg.MinTagsThreshold)
	fmt.Printf("min-confidence-threshold:  %.2f\n", cfg.MinConfidenceThreshold)
	fmt.Printf("ollama-endpoint:           %s\n", cfg.OllamaEndpoint)
	fmt.Printf("arbiter-model:             %s\n", cfg.ArbiterModel)
	fmt.Printf("arbiter tag bounds:        %d-%d\n", cfg.ArbiterMinTags, cfg.ArbiterMaxTags)
	if cfg.WatchFolder != "" {
		fmt.Printf("watch-folder:              %s\n", cfg.WatchFolder)
	}
	fmt.Printf("debug:                     %v\n", cfg.Debug)
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Println(configPath)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch key {
	case "vault-path":
		cfg.VaultPath = expandPath(value)
	case "retrieval-url":
		cfg.RetrievalURL = value
	case "ollama-endpoint":
		cfg.OllamaEndpoint = value
	case "arbiter-model":
		cfg.ArbiterModel = value
	case "tag-style":
		if value != "wikilink" && value != "hashtag" {
			return fmt.Errorf("tag-style must be \"wikilink\" or \"hashtag\"")
		}
		cfg.TagStyle = value
	case "watch-folder":
		cfg.WatchFolder = expandPath(value)
	case "top-k":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("top-k must be a positive integer")
		}
		cfg.TopK = n
	case "min-tags-threshold":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("min-tags-threshold must be a non-negative integer")
		}
		cfg.MinTagsThreshold = n
	case "min-confidence-threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("min-confidence-threshold must be a non-negative number")
		}
		cfg.MinConfidenceThreshold = f
	case "enable-rerank":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return interrors.ErrInvalidBoolean
		}
		cfg.EnableRerank = b
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return interrors.ErrInvalidBoolean
		}
		cfg.Debug = b
	default:
		return fmt.Errorf("%w: %s", interrors.ErrUnknownConfigKey, key)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

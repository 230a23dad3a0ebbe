package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/arbiter"
	"github.com/streed/vault-suggest/internal/config"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/notewriter"
	"github.com/streed/vault-suggest/internal/pipeline"
	"github.com/streed/vault-suggest/internal/retrieval"
	"github.com/streed/vault-suggest/internal/suggest"
)

var (
	appConfig   *config.Config
	appPipeline *pipeline.Pipeline
	debugFlag   bool
	Version     = "dev" // Version is set from main.go
)

var rootCmd = &cobra.Command{
	Use:     "vault-suggest",
	Short:   "Link and tag suggestions for an Obsidian-style note vault",
	Version: Version,
	Long: `vault-suggest turns arbitrary text into wikilink and tag suggestions for
your note vault, using vector retrieval plus one-hop graph expansion, and
escalating to a local LLM arbiter when retrieval comes back thin.

First time users should run 'vault-suggest init' to set up the configuration.`,
}

func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initAppConfig)
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

func initAppConfig() {
	// Skip initialization for init and config commands
	if len(os.Args) > 1 && (os.Args[1] == "init" || os.Args[1] == "config") {
		return
	}

	var err error
	appConfig, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintf(os.Stderr, "Please run 'vault-suggest init' to set up the configuration.\n")
		os.Exit(1)
	}

	if debugFlag || appConfig.Debug {
		logger.SetDebugMode(true)
		logger.Debug("Vault path: %s", appConfig.VaultPath)
		logger.Debug("Retrieval service: %s", appConfig.RetrievalURL)
		logger.Debug("Ollama endpoint: %s", appConfig.OllamaEndpoint)
		logger.Debug("Escalation thresholds: %d tags / %.2f confidence",
			appConfig.MinTagsThreshold, appConfig.MinConfidenceThreshold)
	}

	if appConfig.VaultPath == "" {
		fmt.Fprintf(os.Stderr, "Error: vault path is not configured.\n")
		fmt.Fprintf(os.Stderr, "Please run 'vault-suggest init' to set up the configuration.\n")
		os.Exit(1)
	}

	snap, _, err := pipeline.BuildSnapshot(appConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading vault: %v\n", err)
		os.Exit(1)
	}

	client := retrieval.NewClient(appConfig)
	var reranker suggest.Reranker
	if appConfig.EnableRerank {
		reranker = client
	}

	appPipeline = pipeline.New(
		appConfig,
		suggest.NewEngine(client, reranker),
		arbiter.New(appConfig),
		client,
		notewriter.New(appConfig),
		suggest.NewHolder(snap),
	)
}

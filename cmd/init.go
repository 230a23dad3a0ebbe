package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vault-suggest configuration",
	Long: `Create the vault-suggest configuration file.

Examples:
  vault-suggest init --vault ~/Documents/MyVault
  vault-suggest init --vault ~/vault --retrieval-url http://localhost:8081`,
	RunE: runInit,
}

var (
	initVaultPath    string
	initRetrievalURL string
	initOllama       string
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initVaultPath, "vault", "", "Path to the note vault (required)")
	initCmd.Flags().StringVar(&initRetrievalURL, "retrieval-url", "", "Base URL of the vector retrieval service")
	initCmd.Flags().StringVar(&initOllama, "ollama-endpoint", "", "Ollama endpoint for the tag arbiter")
	_ = initCmd.MarkFlagRequired("vault")
}

func runInit(_ *cobra.Command, _ []string) error {
	vaultPath := expandPath(initVaultPath)
	if info, err := os.Stat(vaultPath); err != nil || !info.IsDir() {
		return fmt.Errorf("vault path %s is not a directory", vaultPath)
	}

	cfg, err := config.InitializeConfig(vaultPath, initRetrievalURL, initOllama)
	if err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Configuration written to %s\n", configPath)
	fmt.Printf("Vault: %s\n", cfg.VaultPath)
	fmt.Printf("Tags folder: %s\n", cfg.TagsFolder)
	fmt.Printf("Retrieval service: %s\n", cfg.RetrievalURL)
	fmt.Println("\nNext steps:")
	fmt.Println("  vault-suggest reindex    # push the vault into the vector index")
	fmt.Println("  vault-suggest suggest    # get suggestions for text on stdin")
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

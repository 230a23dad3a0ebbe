package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultNoteTemplate is used when the config does not override the note
// layout. Placeholders: {date}, {time}, {title}, {content}, {tags},
// {references}.
const DefaultNoteTemplate = `---
created: {date} {time}
tags: {tags}
---

# {title}

{content}

## References
{references}
`

type Config struct {
	// Vault layout
	VaultPath   string `json:"vault_path"`
	InboxFolder string `json:"inbox_folder"`
	TagsFolder  string `json:"tags_folder"`
	TagStyle    string `json:"tag_style"` // "wikilink" or "hashtag"

	// Retrieval service (external vector index over HTTP)
	RetrievalURL  string `json:"retrieval_url"`
	TopK          int    `json:"top_k"`
	EnableRerank  bool   `json:"enable_rerank"`
	RerankTopN    int    `json:"rerank_top_n"`
	ChunkSize     int    `json:"chunk_size"`
	ChunkOverlap  int    `json:"chunk_overlap"`

	// Escalation thresholds for the tag arbiter
	MinTagsThreshold       int     `json:"min_tags_threshold"`
	MinConfidenceThreshold float64 `json:"min_confidence_threshold"`

	// Tag arbiter (Ollama)
	OllamaEndpoint string `json:"ollama_endpoint"`
	ArbiterModel   string `json:"arbiter_model"`
	ArbiterMinTags int    `json:"arbiter_min_tags"`
	ArbiterMaxTags int    `json:"arbiter_max_tags"`
	NoteCharBudget int    `json:"note_char_budget"`

	// Watcher
	WatchFolder string `json:"watch_folder,omitempty"`
	LedgerPath  string `json:"ledger_path,omitempty"`

	NoteTemplate string `json:"note_template,omitempty"`
	Debug        bool   `json:"debug"`
}

// getDefaultConfig returns a fresh copy of the default configuration
func getDefaultConfig() Config {
	return Config{
		InboxFolder: "1 - Inbox",
		TagsFolder:  "3 - Tags",
		TagStyle:    "wikilink",

		RetrievalURL: "http://localhost:8081",
		TopK:         10,
		EnableRerank: false,
		RerankTopN:   5,
		ChunkSize:    512,
		ChunkOverlap: 50,

		MinTagsThreshold:       3,
		MinConfidenceThreshold: 0.4,

		OllamaEndpoint: "http://localhost:11434",
		ArbiterModel:   "llama3.2:latest",
		ArbiterMinTags: 3,
		ArbiterMaxTags: 6,
		NoteCharBudget: 3000,

		Debug: false,
	}
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "vault-suggest", "config.json"), nil
}

func Load() (*Config, error) {
	// A .env file in the working directory may carry overrides; missing is fine.
	_ = godotenv.Load()

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := getDefaultConfig()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := getDefaultConfig()

	if cfg.InboxFolder == "" {
		cfg.InboxFolder = defaults.InboxFolder
	}
	if cfg.TagsFolder == "" {
		cfg.TagsFolder = defaults.TagsFolder
	}
	if cfg.TagStyle == "" {
		cfg.TagStyle = defaults.TagStyle
	}
	if cfg.RetrievalURL == "" {
		cfg.RetrievalURL = defaults.RetrievalURL
	}
	if cfg.TopK == 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.RerankTopN == 0 {
		cfg.RerankTopN = defaults.RerankTopN
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = defaults.ChunkSize
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = defaults.ChunkOverlap
	}
	if cfg.MinTagsThreshold == 0 {
		cfg.MinTagsThreshold = defaults.MinTagsThreshold
	}
	if cfg.MinConfidenceThreshold == 0 {
		cfg.MinConfidenceThreshold = defaults.MinConfidenceThreshold
	}
	if cfg.OllamaEndpoint == "" {
		cfg.OllamaEndpoint = defaults.OllamaEndpoint
	}
	if cfg.ArbiterModel == "" {
		cfg.ArbiterModel = defaults.ArbiterModel
	}
	if cfg.ArbiterMinTags == 0 {
		cfg.ArbiterMinTags = defaults.ArbiterMinTags
	}
	if cfg.ArbiterMaxTags == 0 {
		cfg.ArbiterMaxTags = defaults.ArbiterMaxTags
	}
	if cfg.NoteCharBudget == 0 {
		cfg.NoteCharBudget = defaults.NoteCharBudget
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = filepath.Join(GetDefaultDataDirectory(), "processed.db")
	}
	if cfg.NoteTemplate == "" {
		cfg.NoteTemplate = DefaultNoteTemplate
	}
}

// applyEnvOverrides lets VAULT_SUGGEST_* environment variables (typically
// from a .env file) override the values stored on disk.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VAULT_SUGGEST_VAULT_PATH"); v != "" {
		cfg.VaultPath = v
	}
	if v := os.Getenv("VAULT_SUGGEST_RETRIEVAL_URL"); v != "" {
		cfg.RetrievalURL = v
	}
	if v := os.Getenv("VAULT_SUGGEST_OLLAMA_ENDPOINT"); v != "" {
		cfg.OllamaEndpoint = v
	}
	if v := os.Getenv("VAULT_SUGGEST_ARBITER_MODEL"); v != "" {
		cfg.ArbiterModel = v
	}
	if v := os.Getenv("VAULT_SUGGEST_WATCH_FOLDER"); v != "" {
		cfg.WatchFolder = v
	}
	if v := os.Getenv("VAULT_SUGGEST_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

func GetDefaultDataDirectory() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", ".vault-suggest")
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "vault-suggest")
}

func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// InitializeConfig writes a fresh config for the given vault, keeping
// defaults for everything else.
func InitializeConfig(vaultPath, retrievalURL, ollamaEndpoint string) (*Config, error) {
	cfg := getDefaultConfig()
	cfg.VaultPath = vaultPath
	if retrievalURL != "" {
		cfg.RetrievalURL = retrievalURL
	}
	if ollamaEndpoint != "" {
		cfg.OllamaEndpoint = ollamaEndpoint
	}
	applyDefaults(&cfg)

	if err := Save(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InboxPath returns the absolute path of the vault inbox folder.
func (c *Config) InboxPath() string {
	return filepath.Join(c.VaultPath, c.InboxFolder)
}

// TagsPath returns the absolute path of the vault tags folder.
func (c *Config) TagsPath() string {
	return filepath.Join(c.VaultPath, c.TagsFolder)
}

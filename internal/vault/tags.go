package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/streed/vault-suggest/internal/logger"
)

// LoadTagSet scans the vault's tags folder and returns the tag vocabulary.
// Every .md file stem in the folder is one tag. A missing folder yields an
// empty vocabulary, not an error; classification and escalation behave
// correctly on empty sets.
func LoadTagSet(vaultPath, tagsFolder string) map[string]struct{} {
	tags := make(map[string]struct{})

	dir := filepath.Join(vaultPath, tagsFolder)
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("Tags folder not found at %s", dir)
		return tags
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		tags[strings.TrimSuffix(e.Name(), ".md")] = struct{}{}
	}

	logger.Info("Loaded %d tags from vault", len(tags))
	return tags
}

package notewriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/streed/vault-suggest/internal/config"
	"github.com/streed/vault-suggest/internal/logger"
)

// Writer formats suggestion results into a markdown note and drops it into
// the vault inbox.
type Writer struct {
	inboxPath string
	tagStyle  string
	template  string
}

// Params describes one note to write.
type Params struct {
	Title      string
	Content    string
	Tags       []string
	References []string
}

func New(cfg *config.Config) *Writer {
	template := cfg.NoteTemplate
	if template == "" {
		template = config.DefaultNoteTemplate
	}
	return &Writer{
		inboxPath: cfg.InboxPath(),
		tagStyle:  cfg.TagStyle,
		template:  template,
	}
}

// Write renders the note template and writes <inbox>/<title>.md, creating
// the inbox folder if needed. It returns the path of the written file.
func (w *Writer) Write(p Params) (string, error) {
	if p.Title == "" {
		return "", fmt.Errorf("note title cannot be empty")
	}

	now := time.Now()
	note := strings.NewReplacer(
		"{date}", now.Format("2006-01-02"),
		"{time}", now.Format("15:04"),
		"{title}", p.Title,
		"{content}", p.Content,
		"{tags}", w.formatTags(p.Tags),
		"{references}", formatReferences(p.References),
	).Replace(w.template)

	if err := os.MkdirAll(w.inboxPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create inbox folder: %w", err)
	}

	path := filepath.Join(w.inboxPath, p.Title+".md")
	if err := os.WriteFile(path, []byte(note), 0644); err != nil {
		return "", fmt.Errorf("failed to write note: %w", err)
	}

	logger.Info("Note written to %s", path)
	return path, nil
}

func (w *Writer) formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(tags))
	for _, tag := range tags {
		if w.tagStyle == "hashtag" {
			formatted = append(formatted, "#"+tag)
		} else {
			formatted = append(formatted, "[["+tag+"]]")
		}
	}
	return strings.Join(formatted, ", ")
}

func formatReferences(refs []string) string {
	if len(refs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(refs))
	for _, ref := range refs {
		lines = append(lines, "- [["+ref+"]]")
	}
	return strings.Join(lines, "\n")
}

// TitleFromFilename turns a dropped file's name into a note title:
// "gradient_descent-notes.txt" becomes "Gradient Descent Notes".
func TitleFromFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)

	words := strings.Fields(stem)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

package vault

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/streed/vault-suggest/internal/errors"
	"github.com/streed/vault-suggest/internal/logger"
)

// Note is a single markdown file in the vault, identified by its title
// (filename stem). Wikilinks are outgoing references; backlinks are the
// inverse view, computed across the whole vault.
type Note struct {
	Title     string
	Folder    string
	Body      string
	Wikilinks []string
	Backlinks []string
}

// Chunk is a retrieval-sized span of a note's body. Every chunk carries the
// note's complete link metadata, not just the links mentioned in its span.
type Chunk struct {
	Title     string
	Folder    string
	Text      string
	Wikilinks []string
	Backlinks []string
}

// Matches [[Target]], [[Target|alias]] and [[Target#heading]]; the captured
// group is the bare note title.
var wikilinkPattern = regexp.MustCompile(`\[\[([^\]\|#]+)(?:[#|][^\]]*)?\]\]`)

// Load walks the vault and parses every .md file into a Note, including
// backlink inversion. Hidden directories (".obsidian" and friends) are
// skipped.
func Load(root string) ([]Note, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.ErrVaultNotFound
	}

	var notes []Note
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			logger.Warn("Skipping unreadable note %s: %v", path, readErr)
			return nil
		}

		title := strings.TrimSuffix(d.Name(), ".md")
		if title == "" {
			return nil
		}

		notes = append(notes, Note{
			Title:     title,
			Folder:    folderOf(root, path),
			Body:      string(data),
			Wikilinks: ParseWikilinks(string(data)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	computeBacklinks(notes)
	logger.Info("Loaded %d notes from vault", len(notes))
	return notes, nil
}

// ParseWikilinks extracts the distinct, ordered set of [[wikilink]] targets
// from a note body.
func ParseWikilinks(body string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, m := range wikilinkPattern.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		links = append(links, target)
	}
	return links
}

// computeBacklinks inverts the wikilink graph: if A links to B, B gets a
// backlink to A. Backlink lists are sorted for stable output.
func computeBacklinks(notes []Note) {
	incoming := make(map[string][]string)
	for _, n := range notes {
		for _, target := range n.Wikilinks {
			incoming[target] = append(incoming[target], n.Title)
		}
	}
	for i := range notes {
		back := incoming[notes[i].Title]
		sort.Strings(back)
		notes[i].Backlinks = dedupeSorted(back)
	}
}

func dedupeSorted(sorted []string) []string {
	var out []string
	for _, s := range sorted {
		if len(out) == 0 || out[len(out)-1] != s {
			out = append(out, s)
		}
	}
	return out
}

// Chunks splits every note body into rune windows of the given size and
// overlap. Each chunk inherits the note's full wikilink/backlink sets so no
// chunk presents a partial view of the note's graph neighborhood.
func Chunks(notes []Note, size, overlap int) []Chunk {
	if size <= 0 {
		size = 512
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []Chunk
	for _, n := range notes {
		if n.Title == "" {
			continue
		}
		for _, text := range splitRunes(n.Body, size, overlap) {
			chunks = append(chunks, Chunk{
				Title:     n.Title,
				Folder:    n.Folder,
				Text:      text,
				Wikilinks: n.Wikilinks,
				Backlinks: n.Backlinks,
			})
		}
	}
	return chunks
}

func splitRunes(body string, size, overlap int) []string {
	runes := []rune(body)
	if len(runes) <= size {
		return []string{body}
	}

	step := size - overlap
	var parts []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}

// folderOf returns the note's parent directory relative to the vault root,
// or "" for notes at the root.
func folderOf(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

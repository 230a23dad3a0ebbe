package suggest

import (
	"sort"

	"github.com/streed/vault-suggest/internal/vault"
)

// NoteMeta is the merged link view of one note: the union of wikilinks and
// backlinks across every chunk sharing the note's title. A single chunk may
// omit links that appear in other chunks of the same note, so candidates are
// always annotated from this index rather than from chunk metadata.
type NoteMeta struct {
	Folder    string
	Wikilinks []string
	Backlinks []string
}

// BuildMetadata folds the chunk corpus into one entry per note title.
// Chunks with an empty title contribute no note identity and are dropped.
// The result is independent of chunk order: link lists are set unions,
// sorted for stable downstream output.
func BuildMetadata(chunks []vault.Chunk) map[string]NoteMeta {
	type acc struct {
		folder    string
		wikilinks map[string]struct{}
		backlinks map[string]struct{}
	}

	merged := make(map[string]*acc)
	for _, c := range chunks {
		if c.Title == "" {
			continue
		}
		a, ok := merged[c.Title]
		if !ok {
			a = &acc{
				folder:    c.Folder,
				wikilinks: make(map[string]struct{}),
				backlinks: make(map[string]struct{}),
			}
			merged[c.Title] = a
		}
		for _, wl := range c.Wikilinks {
			a.wikilinks[wl] = struct{}{}
		}
		for _, bl := range c.Backlinks {
			a.backlinks[bl] = struct{}{}
		}
	}

	meta := make(map[string]NoteMeta, len(merged))
	for title, a := range merged {
		meta[title] = NoteMeta{
			Folder:    a.folder,
			Wikilinks: sortedKeys(a.wikilinks),
			Backlinks: sortedKeys(a.backlinks),
		}
	}
	return meta
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

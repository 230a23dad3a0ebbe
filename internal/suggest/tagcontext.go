package suggest

import (
	"sort"

	"github.com/streed/vault-suggest/internal/vault"
)

// BuildTagContext maps each tag to the sorted distinct note titles that
// reference it via wikilink or backlink; direction is not distinguished,
// both count as uses. Tags no note references are omitted entirely, which
// keeps arbiter prompts compact.
func BuildTagContext(chunks []vault.Chunk, vocab map[string]struct{}) map[string][]string {
	users := make(map[string]map[string]struct{})

	for _, c := range chunks {
		if c.Title == "" {
			continue
		}
		for _, link := range c.Wikilinks {
			if _, ok := vocab[link]; ok {
				addUser(users, link, c.Title)
			}
		}
		for _, link := range c.Backlinks {
			if _, ok := vocab[link]; ok {
				addUser(users, link, c.Title)
			}
		}
	}

	context := make(map[string][]string, len(users))
	for tag, titles := range users {
		sorted := make([]string, 0, len(titles))
		for t := range titles {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
		context[tag] = sorted
	}
	return context
}

func addUser(users map[string]map[string]struct{}, tag, title string) {
	if users[tag] == nil {
		users[tag] = make(map[string]struct{})
	}
	users[tag][title] = struct{}{}
}

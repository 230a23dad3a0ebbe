package suggest

import (
	"fmt"
	"sort"

	"github.com/streed/vault-suggest/internal/logger"
)

// Hit is one scored chunk from the retrieval backend. Wikilinks/backlinks
// are chunk-local and possibly incomplete; the engine re-annotates from the
// metadata index.
type Hit struct {
	Title     string
	Score     float64
	Folder    string
	Wikilinks []string
	Backlinks []string
}

// Retriever is the nearest-neighbor capability the engine consumes. Any
// backend works; tests substitute a stub returning canned hits.
type Retriever interface {
	Retrieve(query string, k int) ([]Hit, error)
}

// Reranker optionally reorders (and may shrink) a hit list using a more
// expensive cross-encoding pass.
type Reranker interface {
	Rerank(hits []Hit, query string) ([]Hit, error)
}

// Engine turns a text blob into ranked, deduplicated, classified link and
// tag suggestions. It holds no corpus state of its own; every call runs
// against the snapshot it is handed.
type Engine struct {
	retriever Retriever
	reranker  Reranker
}

func NewEngine(retriever Retriever, reranker Reranker) *Engine {
	return &Engine{
		retriever: retriever,
		reranker:  reranker,
	}
}

// Suggest retrieves the topK most similar chunks for text, deduplicates them
// into one candidate per note (best score wins), expands one hop through the
// link graph, and classifies every candidate as a tag or a link by
// vocabulary membership.
//
// Zero retriever hits produce two empty lists, not an error. A retriever or
// reranker failure is propagated; the engine never substitutes empty results
// for a failed call.
func (e *Engine) Suggest(text string, topK int, snap *Snapshot) (*Result, error) {
	hits, err := e.retriever.Retrieve(text, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	if e.reranker != nil {
		hits, err = e.reranker.Rerank(hits, text)
		if err != nil {
			return nil, fmt.Errorf("rerank: %w", err)
		}
	}

	primaries := dedupeHits(hits, snap)
	sort.SliceStable(primaries, func(i, j int) bool {
		return primaries[i].Score > primaries[j].Score
	})

	secondaries := expandGraph(primaries)

	result := &Result{Links: []Candidate{}, Tags: []Candidate{}}
	for _, c := range primaries {
		if _, isTag := snap.Vocab[c.Title]; isTag {
			result.Tags = append(result.Tags, c)
		} else {
			result.Links = append(result.Links, c)
		}
	}
	for _, c := range secondaries {
		if _, isTag := snap.Vocab[c.Title]; isTag {
			result.Tags = append(result.Tags, c)
		} else {
			result.Links = append(result.Links, c)
		}
	}

	logger.Debug("Suggested %d links and %d tags (%d primary, %d graph)",
		len(result.Links), len(result.Tags), len(primaries), len(secondaries))
	return result, nil
}

// dedupeHits groups hits by note title, keeping the maximum score seen per
// title. Ties keep the first-seen entry; comparison is plain float equality.
// Link metadata comes from the snapshot index so a partially-linked chunk
// never shortchanges its note.
func dedupeHits(hits []Hit, snap *Snapshot) []RetrievalCandidate {
	best := make(map[string]int)
	var candidates []RetrievalCandidate

	for _, h := range hits {
		if h.Title == "" {
			continue
		}
		if i, seen := best[h.Title]; seen {
			if h.Score > candidates[i].Score {
				candidates[i].Score = h.Score
			}
			continue
		}

		c := RetrievalCandidate{
			Title:  h.Title,
			Score:  h.Score,
			Folder: h.Folder,
			Source: SourceRetrieval,
		}
		if meta, ok := snap.Meta[h.Title]; ok {
			c.Folder = meta.Folder
			c.Wikilinks = meta.Wikilinks
			c.Backlinks = meta.Backlinks
		}
		best[h.Title] = len(candidates)
		candidates = append(candidates, c)
	}

	return candidates
}

// expandGraph collects the union of wikilinks and backlinks across all
// primary candidates, minus any title already present as a primary. The set
// is deterministic; its order is made stable by sorting, which the output
// contract permits.
func expandGraph(primaries []RetrievalCandidate) []GraphCandidate {
	primary := make(map[string]struct{}, len(primaries))
	for _, c := range primaries {
		primary[c.Title] = struct{}{}
	}

	neighbors := make(map[string]struct{})
	for _, c := range primaries {
		for _, wl := range c.Wikilinks {
			neighbors[wl] = struct{}{}
		}
		for _, bl := range c.Backlinks {
			neighbors[bl] = struct{}{}
		}
	}
	for title := range primary {
		delete(neighbors, title)
	}

	titles := sortedKeys(neighbors)
	candidates := make([]GraphCandidate, 0, len(titles))
	for _, t := range titles {
		candidates = append(candidates, GraphCandidate{Title: t, Source: SourceGraph})
	}
	return candidates
}

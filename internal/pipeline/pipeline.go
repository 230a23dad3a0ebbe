package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/streed/vault-suggest/internal/arbiter"
	"github.com/streed/vault-suggest/internal/config"
	apperrors "github.com/streed/vault-suggest/internal/errors"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/notewriter"
	"github.com/streed/vault-suggest/internal/suggest"
	"github.com/streed/vault-suggest/internal/vault"
)

// TagArbiter is the escalation target. The concrete implementation talks to
// Ollama; tests plug in a stub.
type TagArbiter interface {
	Arbitrate(req arbiter.Request) (*arbiter.Decision, error)
}

// Indexer pushes corpus chunks into the external vector index.
type Indexer interface {
	Index(id, text string, meta suggest.Hit) error
	IsAvailable() bool
}

// Pipeline runs the full suggestion flow: retrieval-layer suggestions,
// escalation check, optional arbitration, and note writing. The corpus
// snapshot is shared through a Holder so concurrent callers always see a
// complete, immutable view.
type Pipeline struct {
	cfg     *config.Config
	engine  *suggest.Engine
	arbiter TagArbiter
	indexer Indexer
	writer  *notewriter.Writer
	holder  *suggest.Holder
}

// Result is the outcome of one Process call. Arbiter is nil when escalation
// did not trigger or the arbiter's output was unusable.
type Result struct {
	Suggestion *suggest.Result   `json:"suggestion"`
	Escalated  bool              `json:"escalated"`
	Arbiter    *arbiter.Decision `json:"arbiter,omitempty"`
	FinalTags  []string          `json:"final_tags"`
	References []string          `json:"references"`
}

func New(cfg *config.Config, engine *suggest.Engine, arb TagArbiter, indexer Indexer, writer *notewriter.Writer, holder *suggest.Holder) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		engine:  engine,
		arbiter: arb,
		indexer: indexer,
		writer:  writer,
		holder:  holder,
	}
}

// Snapshot returns the currently published corpus snapshot.
func (p *Pipeline) Snapshot() *suggest.Snapshot {
	return p.holder.Load()
}

// Suggest runs only the retrieval layer, without escalation.
func (p *Pipeline) Suggest(text string, topK int) (*suggest.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyText
	}
	if topK <= 0 {
		topK = p.cfg.TopK
	}
	return p.engine.Suggest(text, topK, p.holder.Load())
}

// Process runs the full flow for one piece of text. When escalation
// triggers and the arbiter returns malformed output, the retrieval-layer
// result is kept and FinalTags degrade to the retrieval tags; a transport
// failure is propagated instead, since there is nothing to degrade to that
// the caller could not decide better.
func (p *Pipeline) Process(text, filename string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyText
	}

	snap := p.holder.Load()
	suggestion, err := p.engine.Suggest(text, p.cfg.TopK, snap)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Suggestion: suggestion,
		FinalTags:  suggestion.TagTitles(),
		References: suggestion.LinkTitles(),
	}

	if !suggest.ShouldEscalate(suggestion, p.cfg.MinTagsThreshold, p.cfg.MinConfidenceThreshold) {
		return result, nil
	}

	result.Escalated = true
	logger.Info("Escalating to tag arbiter: %d tags, top score %.2f",
		len(suggestion.Tags), suggestion.TopLinkScore())

	if p.arbiter == nil {
		return result, nil
	}

	decision, err := p.arbiter.Arbitrate(arbiter.Request{
		Text:          text,
		Vocabulary:    snap.SortedVocab(),
		RetrievalTags: suggestion.TagTitles(),
		TagContext:    snap.TagContext,
		Filename:      filename,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrArbiterBadResponse) {
			logger.Warn("Arbiter output unusable, keeping retrieval tags: %v", err)
			return result, nil
		}
		return nil, err
	}

	result.Arbiter = decision
	result.FinalTags = decision.Total()
	return result, nil
}

// WriteNote formats a processed result as a markdown note in the vault
// inbox and returns the written path.
func (p *Pipeline) WriteNote(title, content string, result *Result) (string, error) {
	return p.writer.Write(notewriter.Params{
		Title:      title,
		Content:    content,
		Tags:       result.FinalTags,
		References: result.References,
	})
}

// Reload rebuilds the corpus snapshot from the vault on disk and publishes
// it atomically. In-flight requests keep using the old snapshot.
func (p *Pipeline) Reload() error {
	snap, _, err := BuildSnapshot(p.cfg)
	if err != nil {
		return err
	}
	p.holder.Store(snap)
	logger.Info("Corpus snapshot reloaded: %d notes, %d tags", len(snap.Meta), len(snap.Vocab))
	return nil
}

// Reindex loads the vault and pushes every chunk into the vector index.
// It returns the number of chunks indexed.
func (p *Pipeline) Reindex() (int, error) {
	if p.indexer == nil {
		return 0, fmt.Errorf("no indexer configured")
	}
	if !p.indexer.IsAvailable() {
		return 0, apperrors.ErrRetrievalUnavailable
	}

	notes, err := vault.Load(p.cfg.VaultPath)
	if err != nil {
		return 0, err
	}
	chunks := vault.Chunks(notes, p.cfg.ChunkSize, p.cfg.ChunkOverlap)

	counts := make(map[string]int)
	for _, c := range chunks {
		counts[c.Title]++
		id := fmt.Sprintf("%s#%d", c.Title, counts[c.Title])
		meta := suggest.Hit{
			Title:     c.Title,
			Folder:    c.Folder,
			Wikilinks: c.Wikilinks,
			Backlinks: c.Backlinks,
		}
		if err := p.indexer.Index(id, c.Text, meta); err != nil {
			return 0, fmt.Errorf("indexing %s: %w", id, err)
		}
	}

	logger.Info("Indexed %d chunks from %d notes", len(chunks), len(notes))
	return len(chunks), nil
}

// BuildSnapshot loads the vault and assembles a fresh corpus snapshot plus
// the chunk list it was built from.
func BuildSnapshot(cfg *config.Config) (*suggest.Snapshot, []vault.Chunk, error) {
	notes, err := vault.Load(cfg.VaultPath)
	if err != nil {
		return nil, nil, err
	}
	chunks := vault.Chunks(notes, cfg.ChunkSize, cfg.ChunkOverlap)
	vocab := vault.LoadTagSet(cfg.VaultPath, cfg.TagsFolder)
	return suggest.NewSnapshot(chunks, vocab), chunks, nil
}

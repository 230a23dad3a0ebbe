package suggest

import (
	"sync/atomic"

	"github.com/streed/vault-suggest/internal/vault"
)

// Snapshot is the read-only corpus view one suggestion request runs against:
// the metadata index, the tag vocabulary, and the tag context. A reload
// builds a whole new Snapshot and swaps it in; nothing here is ever mutated
// after publication, so concurrent requests can share one snapshot freely.
type Snapshot struct {
	Meta       map[string]NoteMeta
	Vocab      map[string]struct{}
	TagContext map[string][]string
}

// NewSnapshot builds a snapshot from a chunk corpus and a tag vocabulary.
func NewSnapshot(chunks []vault.Chunk, vocab map[string]struct{}) *Snapshot {
	if vocab == nil {
		vocab = make(map[string]struct{})
	}
	return &Snapshot{
		Meta:       BuildMetadata(chunks),
		Vocab:      vocab,
		TagContext: BuildTagContext(chunks, vocab),
	}
}

// SortedVocab returns the vocabulary as a sorted slice, for deterministic
// prompting.
func (s *Snapshot) SortedVocab() []string {
	return sortedKeys(s.Vocab)
}

// Holder publishes the current snapshot to concurrent readers and swaps it
// atomically on reload.
type Holder struct {
	ptr atomic.Pointer[Snapshot]
}

func NewHolder(snap *Snapshot) *Holder {
	h := &Holder{}
	h.ptr.Store(snap)
	return h
}

func (h *Holder) Load() *Snapshot {
	return h.ptr.Load()
}

func (h *Holder) Store(snap *Snapshot) {
	h.ptr.Store(snap)
}

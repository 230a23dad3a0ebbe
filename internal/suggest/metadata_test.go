package suggest

import (
	"reflect"
	"testing"

	"github.com/streed/vault-suggest/internal/vault"
)

func TestBuildMetadataMergesChunks(t *testing.T) {
	chunks := []vault.Chunk{
		{Title: "Gradient Descent", Folder: "2 - Areas", Wikilinks: []string{"Backprop"}, Backlinks: []string{"Momentum"}},
		{Title: "Gradient Descent", Folder: "2 - Areas", Wikilinks: []string{"Learning Rate", "Backprop"}},
		{Title: "Momentum", Wikilinks: []string{"Gradient Descent"}},
	}

	meta := BuildMetadata(chunks)

	if len(meta) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(meta))
	}

	gd := meta["Gradient Descent"]
	if gd.Folder != "2 - Areas" {
		t.Errorf("Expected folder from chunks, got %q", gd.Folder)
	}
	if want := []string{"Backprop", "Learning Rate"}; !reflect.DeepEqual(gd.Wikilinks, want) {
		t.Errorf("Expected merged sorted wikilinks %v, got %v", want, gd.Wikilinks)
	}
	if want := []string{"Momentum"}; !reflect.DeepEqual(gd.Backlinks, want) {
		t.Errorf("Expected backlinks %v, got %v", want, gd.Backlinks)
	}
}

func TestBuildMetadataDropsEmptyTitles(t *testing.T) {
	chunks := []vault.Chunk{
		{Title: "", Wikilinks: []string{"X"}},
		{Title: "Kept"},
	}

	meta := BuildMetadata(chunks)
	if len(meta) != 1 {
		t.Fatalf("Expected 1 note, got %d", len(meta))
	}
	if _, ok := meta["Kept"]; !ok {
		t.Error("Expected note Kept to survive")
	}
}

func TestBuildMetadataOrderIndependent(t *testing.T) {
	forward := []vault.Chunk{
		{Title: "A", Wikilinks: []string{"B"}},
		{Title: "A", Wikilinks: []string{"C"}},
	}
	reversed := []vault.Chunk{forward[1], forward[0]}

	if !reflect.DeepEqual(BuildMetadata(forward), BuildMetadata(reversed)) {
		t.Error("Metadata should not depend on chunk order")
	}
}

func TestBuildMetadataEmptyCorpus(t *testing.T) {
	meta := BuildMetadata(nil)
	if len(meta) != 0 {
		t.Errorf("Expected empty index, got %d entries", len(meta))
	}
}

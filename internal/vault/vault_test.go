package vault

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/streed/vault-suggest/internal/errors"
)

func writeNote(t *testing.T, root, relPath, body string) {
	t.Helper()
	path := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create note directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write note: %v", err)
	}
}

func TestParseWikilinks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain links",
			body: "See [[Gradient Descent]] and [[Backpropagation]].",
			want: []string{"Gradient Descent", "Backpropagation"},
		},
		{
			name: "aliased link",
			body: "See [[Gradient Descent|GD]].",
			want: []string{"Gradient Descent"},
		},
		{
			name: "heading link",
			body: "See [[Gradient Descent#Convergence]].",
			want: []string{"Gradient Descent"},
		},
		{
			name: "duplicates collapsed in order",
			body: "[[B]] then [[A]] then [[B]] again",
			want: []string{"B", "A"},
		},
		{
			name: "no links",
			body: "Nothing here, not even [single brackets].",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseWikilinks(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseWikilinks(%q) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestLoadComputesBacklinks(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Gradient Descent.md", "Uses [[Learning Rate]].")
	writeNote(t, root, "Momentum.md", "Extends [[Gradient Descent]].")
	writeNote(t, root, "Learning Rate.md", "A hyperparameter.")

	notes, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("Expected 3 notes, got %d", len(notes))
	}

	byTitle := make(map[string]Note)
	for _, n := range notes {
		byTitle[n.Title] = n
	}

	if want := []string{"Momentum"}; !reflect.DeepEqual(byTitle["Gradient Descent"].Backlinks, want) {
		t.Errorf("Gradient Descent backlinks = %v, want %v", byTitle["Gradient Descent"].Backlinks, want)
	}
	if want := []string{"Gradient Descent"}; !reflect.DeepEqual(byTitle["Learning Rate"].Backlinks, want) {
		t.Errorf("Learning Rate backlinks = %v, want %v", byTitle["Learning Rate"].Backlinks, want)
	}
	if len(byTitle["Momentum"].Backlinks) != 0 {
		t.Errorf("Momentum should have no backlinks, got %v", byTitle["Momentum"].Backlinks)
	}
}

func TestLoadSkipsHiddenDirsAndRecordsFolders(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Top.md", "root note")
	writeNote(t, root, filepath.Join("2 - Areas", "Nested.md"), "nested note")
	writeNote(t, root, filepath.Join(".obsidian", "Ignored.md"), "config junk")
	writeNote(t, root, "notanote.txt", "plain text")

	notes, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("Expected 2 notes, got %d", len(notes))
	}

	for _, n := range notes {
		switch n.Title {
		case "Top":
			if n.Folder != "" {
				t.Errorf("Top folder = %q, want empty", n.Folder)
			}
		case "Nested":
			if n.Folder != "2 - Areas" {
				t.Errorf("Nested folder = %q, want \"2 - Areas\"", n.Folder)
			}
		default:
			t.Errorf("Unexpected note %q", n.Title)
		}
	}
}

func TestLoadMissingVault(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != errors.ErrVaultNotFound {
		t.Errorf("Expected ErrVaultNotFound, got %v", err)
	}
}

func TestLoadTagSet(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, filepath.Join("3 - Tags", "machine-learning.md"), "")
	writeNote(t, root, filepath.Join("3 - Tags", "optimization.md"), "")
	writeNote(t, root, filepath.Join("3 - Tags", "readme.txt"), "not a tag")

	tags := LoadTagSet(root, "3 - Tags")
	if len(tags) != 2 {
		t.Fatalf("Expected 2 tags, got %d", len(tags))
	}
	for _, want := range []string{"machine-learning", "optimization"} {
		if _, ok := tags[want]; !ok {
			t.Errorf("Expected tag %q in vocabulary", want)
		}
	}
}

func TestLoadTagSetMissingFolder(t *testing.T) {
	tags := LoadTagSet(t.TempDir(), "3 - Tags")
	if tags == nil {
		t.Fatal("Expected empty set, got nil")
	}
	if len(tags) != 0 {
		t.Errorf("Expected empty vocabulary, got %d tags", len(tags))
	}
}

func TestChunksWindowing(t *testing.T) {
	body := "abcdefghij" // 10 runes
	notes := []Note{{Title: "N", Body: body, Wikilinks: []string{"X"}}}

	chunks := Chunks(notes, 4, 1)
	want := []string{"abcd", "defg", "ghij"}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, c := range chunks {
		if c.Text != want[i] {
			t.Errorf("Chunk %d = %q, want %q", i, c.Text, want[i])
		}
		if !reflect.DeepEqual(c.Wikilinks, []string{"X"}) {
			t.Errorf("Chunk %d should inherit note wikilinks, got %v", i, c.Wikilinks)
		}
	}
}

func TestChunksShortBodySingleChunk(t *testing.T) {
	notes := []Note{{Title: "N", Body: "short"}}
	chunks := Chunks(notes, 512, 50)
	if len(chunks) != 1 || chunks[0].Text != "short" {
		t.Errorf("Expected one whole-body chunk, got %v", chunks)
	}
}

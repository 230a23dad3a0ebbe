package notewriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/streed/vault-suggest/internal/config"
)

func newTestWriter(t *testing.T, tagStyle string) (*Writer, string) {
	t.Helper()
	vault := t.TempDir()
	cfg := &config.Config{
		VaultPath:   vault,
		InboxFolder: "1 - Inbox",
		TagStyle:    tagStyle,
	}
	return New(cfg), vault
}

func TestWriteCreatesNote(t *testing.T) {
	writer, vault := newTestWriter(t, "wikilink")

	path, err := writer.Write(Params{
		Title:      "Gradient Descent Notes",
		Content:    "Some observations about convergence.",
		Tags:       []string{"machine-learning", "optimization"},
		References: []string{"Backpropagation"},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	wantPath := filepath.Join(vault, "1 - Inbox", "Gradient Descent Notes.md")
	if path != wantPath {
		t.Errorf("Write returned %q, want %q", path, wantPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written note: %v", err)
	}
	note := string(data)

	for _, want := range []string{
		"# Gradient Descent Notes",
		"Some observations about convergence.",
		"[[machine-learning]], [[optimization]]",
		"- [[Backpropagation]]",
	} {
		if !strings.Contains(note, want) {
			t.Errorf("Note missing %q:\n%s", want, note)
		}
	}
}

func TestWriteHashtagStyle(t *testing.T) {
	writer, _ := newTestWriter(t, "hashtag")

	path, err := writer.Write(Params{
		Title: "T",
		Tags:  []string{"ml", "ai"},
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "#ml, #ai") {
		t.Errorf("Expected hashtag-style tags, got:\n%s", string(data))
	}
}

func TestWriteEmptyTitle(t *testing.T) {
	writer, _ := newTestWriter(t, "wikilink")
	if _, err := writer.Write(Params{Content: "body"}); err == nil {
		t.Error("Expected error for empty title")
	}
}

func TestWriteCustomTemplate(t *testing.T) {
	vault := t.TempDir()
	cfg := &config.Config{
		VaultPath:    vault,
		InboxFolder:  "inbox",
		NoteTemplate: "{title}|{tags}|{content}",
	}
	writer := New(cfg)

	path, err := writer.Write(Params{Title: "X", Content: "body", Tags: []string{"t"}})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if got := string(data); got != "X|[[t]]|body" {
		t.Errorf("Rendered note = %q", got)
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gradient_descent-notes.txt", "Gradient Descent Notes"},
		{"meeting.md", "Meeting"},
		{"Already Nice.md", "Already Nice"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

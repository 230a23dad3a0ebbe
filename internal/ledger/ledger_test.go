package ledger

import (
	"path/filepath"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "processed.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSeenAndMark(t *testing.T) {
	l := openTestLedger(t)

	seen, err := l.Seen("dropped.txt")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Error("Fresh ledger should not have seen anything")
	}

	if err := l.MarkProcessed("dropped.txt"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}

	seen, err = l.Seen("dropped.txt")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Error("Marked file should be seen")
	}
}

func TestMarkProcessedIdempotent(t *testing.T) {
	l := openTestLedger(t)

	for i := 0; i < 3; i++ {
		if err := l.MarkProcessed("same.md"); err != nil {
			t.Fatalf("MarkProcessed run %d failed: %v", i, err)
		}
	}

	count, err := l.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry after repeated marks, got %d", count)
	}
}

func TestLedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	if err := l.MarkProcessed("persist.md"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	l.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen ledger: %v", err)
	}
	defer reopened.Close()

	seen, err := reopened.Seen("persist.md")
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Error("Entry should survive reopening the ledger")
	}
}

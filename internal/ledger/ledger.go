package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/streed/vault-suggest/internal/logger"
)

// Ledger records which dropped files have already been run through the
// pipeline, so a watcher restart does not reprocess the whole folder.
type Ledger struct {
	conn *sql.DB
}

func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	logger.Debug("Ledger path: %s", path)

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	l := &Ledger{conn: conn}
	if err := l.initialize(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	_, err := l.conn.Exec(`
		CREATE TABLE IF NOT EXISTS processed_files (
			name TEXT PRIMARY KEY,
			processed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create processed_files table: %w", err)
	}
	return nil
}

// Seen reports whether name has already been processed.
func (l *Ledger) Seen(name string) (bool, error) {
	var count int
	err := l.conn.QueryRow("SELECT COUNT(*) FROM processed_files WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records name as processed. Marking an already-processed file
// again is a no-op.
func (l *Ledger) MarkProcessed(name string) error {
	_, err := l.conn.Exec("INSERT OR IGNORE INTO processed_files (name) VALUES (?)", name)
	if err != nil {
		return fmt.Errorf("failed to record processed file: %w", err)
	}
	return nil
}

// Count returns the number of processed files on record.
func (l *Ledger) Count() (int, error) {
	var count int
	if err := l.conn.QueryRow("SELECT COUNT(*) FROM processed_files").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}

func (l *Ledger) Close() error {
	return l.conn.Close()
}

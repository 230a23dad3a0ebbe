package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/streed/vault-suggest/internal/ledger"
	"github.com/streed/vault-suggest/internal/logger"
)

// ProcessFunc handles one dropped file: name is the bare filename, text its
// contents.
type ProcessFunc func(name, text string) error

// settleDelay gives the writing application time to finish before we read a
// freshly created file.
const settleDelay = 500 * time.Millisecond

// Watch runs an fsnotify watcher on folder until ctx is cancelled,
// processing every new .md or .txt file exactly once. The ledger survives
// restarts; files it already records are skipped. An initial sweep picks up
// files that arrived while the watcher was down.
func Watch(ctx context.Context, folder string, led *ledger.Ledger, process ProcessFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(folder); err != nil {
		return err
	}

	logger.Info("Watching %s for new files", folder)
	sweep(folder, led, process)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isTextFile(ev.Name) {
				continue
			}
			time.Sleep(settleDelay)
			handle(ev.Name, led, process)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("Watcher error: %v", watchErr)
		}
	}
}

// sweep processes any unprocessed files already sitting in the folder.
func sweep(folder string, led *ledger.Ledger, process ProcessFunc) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		logger.Warn("Watch folder not readable at %s: %v", folder, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isTextFile(e.Name()) {
			continue
		}
		handle(filepath.Join(folder, e.Name()), led, process)
	}
}

func handle(path string, led *ledger.Ledger, process ProcessFunc) {
	name := filepath.Base(path)

	seen, err := led.Seen(name)
	if err != nil {
		logger.Error("Ledger lookup failed for %s: %v", name, err)
		return
	}
	if seen {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("Failed to read %s: %v", path, err)
		return
	}

	logger.Info("New file detected: %s", name)
	if err := process(name, string(data)); err != nil {
		logger.Error("Failed to process %s: %v", name, err)
		return
	}

	if err := led.MarkProcessed(name); err != nil {
		logger.Error("Failed to record %s as processed: %v", name, err)
		return
	}
	logger.Debug("Marked %s as processed", name)
}

func isTextFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return true
	}
	return false
}

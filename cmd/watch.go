package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/ledger"
	"github.com/streed/vault-suggest/internal/logger"
	"github.com/streed/vault-suggest/internal/notewriter"
	"github.com/streed/vault-suggest/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a folder and process new files automatically",
	Long: `Watch the configured drop folder for new .md and .txt files and run the
full pipeline on each, writing the resulting notes into the vault inbox.

Files already recorded in the processed-file ledger are skipped, so
restarting the watcher does not reprocess the whole folder.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	if appConfig.WatchFolder == "" {
		return fmt.Errorf("watch_folder is not set in the configuration")
	}

	led, err := ledger.Open(appConfig.LedgerPath)
	if err != nil {
		return err
	}
	defer led.Close()

	if count, err := led.Count(); err == nil {
		logger.Info("Already processed: %d files", count)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return watcher.Watch(ctx, appConfig.WatchFolder, led, func(name, text string) error {
		result, err := appPipeline.Process(text, name)
		if err != nil {
			return err
		}
		title := notewriter.TitleFromFilename(name)
		path, err := appPipeline.WriteNote(title, text, result)
		if err != nil {
			return err
		}
		logger.Info("Note saved to %s", path)
		return nil
	})
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/streed/vault-suggest/internal/api"
	"github.com/streed/vault-suggest/internal/logger"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start an HTTP API server that exposes the suggestion pipeline via REST
endpoints:

- POST /api/v1/suggest   Retrieval-layer link and tag suggestions
- POST /api/v1/process   Full pipeline including arbiter escalation
- GET  /api/v1/tags      The tag vocabulary
- GET  /api/v1/health    Snapshot statistics
- POST /api/v1/reload    Rebuild the corpus snapshot from disk

Examples:
  vault-suggest serve
  vault-suggest serve --host 0.0.0.0 --port 3000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind the server to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to bind the server to")
}

func runServe(_ *cobra.Command, _ []string) error {
	server := api.NewServer(appConfig, appPipeline)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(serveHost, servePort)
	}()

	fmt.Printf("Server URL: http://%s:%d\n", serveHost, servePort)
	fmt.Printf("Health:     http://%s:%d/api/v1/health\n", serveHost, servePort)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal %v, shutting down", sig)
		return server.Stop()
	}
}

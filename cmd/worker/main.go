package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"

	"github.com/Multiwoven/multiwoven-sub000/pkg/extract/support/util/logger"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file. It is loaded, env-expanded and validated at worker startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// main dispatches one extraction run. The run id comes from the first
// argument or the SYNC_RUN_ID environment variable; the run must have been
// dispatched (status started) by the scheduling side.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Requesting cancellation of the run...", sig)
		cancel()
	}()

	syncRunID := os.Getenv("SYNC_RUN_ID")
	if len(os.Args) > 1 {
		syncRunID = os.Args[1]
	}
	if syncRunID == "" {
		logger.Fatalf("No sync run id given. Pass it as the first argument or via SYNC_RUN_ID.")
	}

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	RunApplication(ctx, envFilePath, embeddedConfig, syncRunID)
}

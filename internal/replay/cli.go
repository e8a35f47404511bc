package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/gazeboard/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "replay_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`Gazeboard Replay Tool
=====================

Replays a scripted gaze and blink session against a running gazeboard
service and verifies GET /state after every frame. One run takes a little
over the 30 second selection lock.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -width int
        Synthetic frame width (default 400)
  -height int
        Synthetic frame height (default 300)
  -tick duration
        Pause between frames (default 100ms)
  -lock-wait duration
        Delay after a selection before the follow-up blink (default 31s)
  -timeout duration
        HTTP request and processing timeout (default 5s)
  -output string
        Write a JSON report to this file
  -log string
        Log file for replay output (default: replay_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Replay against a local service
  go run ./cmd/replay

  # Replay against another host and keep a report
  go run ./cmd/replay -url http://board.local:9090 -output report.json
`)
}

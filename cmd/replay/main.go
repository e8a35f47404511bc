package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/gazeboard/internal/replay"
)

// Default configuration constants.
const (
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9090", "Base URL of the service")
		width      = flag.Int("width", replay.DefaultWidth, "Synthetic frame width")
		height     = flag.Int("height", replay.DefaultHeight, "Synthetic frame height")
		tick       = flag.Duration("tick", replay.DefaultTick, "Pause between frames")
		lockWait   = flag.Duration("lock-wait", replay.DefaultLockWait, "Delay after a selection before the follow-up blink")
		timeout    = flag.Duration("timeout", replay.DefaultTimeout, "HTTP request and processing timeout")
		outputFile = flag.String("output", "", "Write a JSON report to this file")
		logFile    = flag.String("log", "", "Log file for replay output (default: replay_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &replay.Config{
		BaseURL:    *baseURL,
		Width:      *width,
		Height:     *height,
		Tick:       *tick,
		LockWait:   *lockWait,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if _, err := replay.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Replay failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}

// Package logging sets up the opt-in debug log.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DebugLogPath is the fixed path for debug logs.
const DebugLogPath = "mytracker-debug.log"

var (
	mu      sync.Mutex
	file    *os.File
	current = slog.New(slog.DiscardHandler)
)

// Init enables debug logging to path (DebugLogPath when empty). When
// enabled is false every log call is discarded.
func Init(enabled bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		current = slog.New(slog.DiscardHandler)
		return nil
	}
	if path == "" {
		path = DebugLogPath
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating debug log: %w", err)
	}
	file = f
	current = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	current.Debug("debug_start", "log_file", path, "time", time.Now().Format(time.RFC3339))
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return nil
	}
	current.Debug("debug_end", "time", time.Now().Format(time.RFC3339))
	err := file.Close()
	file = nil
	current = slog.New(slog.DiscardHandler)
	return err
}

// L returns the active logger.
func L() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current
}

package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"pkt.systems/pslog"
)

const (
	maxFileSize = 5 << 20 // 5 MB
	maxValueLen = 200
	truncSuffix = "…"
)

var (
	mu     sync.Mutex
	file   *os.File
	logger pslog.Logger
)

// Init opens the log file for appending. Call once at startup.
// If the file exceeds 5 MB, it is rotated (renamed to .log.1) before opening.
// Safe to skip: all log calls become no-ops if not initialized.
func Init(dir string) error {
	path := filepath.Join(dir, "tabsurf.log")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Rotate if too large.
	if info, err := os.Stat(path); err == nil && info.Size() > maxFileSize {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	file = f
	logger = newLogger(f)
	mu.Unlock()
	return nil
}

// use routes log calls to l instead of a file. Passing nil disables logging.
func use(l pslog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
		logger = nil
	}
}

// Info logs a structured event line.
//
//	applog.Info("tab.opened", "index", 2, "url", url)
//	applog.Info("engine.started", "kind", "fetch")
func Info(event string, kv ...any) {
	if l := current(); l != nil {
		l.Info(event, clip(kv)...)
	}
}

// Debug logs a low-volume diagnostic event.
func Debug(event string, kv ...any) {
	if l := current(); l != nil {
		l.Debug(event, clip(kv)...)
	}
}

// Error logs an event with an error.
//
//	applog.Error("ws.send", err, "action", "close")
func Error(event string, err error, kv ...any) {
	l := current()
	if l == nil {
		return
	}
	if err != nil {
		l = l.With("err", clipValue(err.Error()))
	}
	l.Error(event, clip(kv)...)
}

func newLogger(w io.Writer) pslog.Logger {
	return pslog.NewWithOptions(w, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.DebugLevel,
	})
}

func current() pslog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// clip shortens long values so a single page title or URL cannot flood the log.
func clip(kv []any) []any {
	out := make([]any, len(kv))
	for i, v := range kv {
		if i%2 == 1 {
			out[i] = clipValue(fmt.Sprint(v))
			continue
		}
		out[i] = v
	}
	return out
}

func clipValue(s string) string {
	if len(s) > maxValueLen {
		return s[:maxValueLen] + truncSuffix
	}
	return s
}

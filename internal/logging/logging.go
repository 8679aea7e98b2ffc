// Package logging sets up the process-wide log sink. Grounded on
// cmd/thicc/debug.go and cmd/thock/debug.go: a single standard-library
// *log.Logger redirected to a file, with a NullWriter fallback when
// logging is disabled. TermIDE adds rotation-on-open to satisfy the
// session directory's 24-hour retention policy (spec §6).
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
)

// Level mirrors the logging.min_level config values.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func ParseLevel(s string) Level {
	switch s {
	case "error":
		return LevelError
	case "warn":
		return LevelWarn
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	default:
		return LevelInfo
	}
}

// NullWriter discards everything written to it, used when logging is disabled.
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// Config configures Init.
type Config struct {
	Dir        string // logs/ directory under the session dir
	MinLevel   Level
	Retention  time.Duration // how long a rotated file is kept before deletion
	FilePath   string        // override: write directly to this path instead of Dir/termide.log
	Disabled   bool
}

var current Level = LevelInfo

// Enabled reports whether a message at lvl should be emitted.
func Enabled(lvl Level) bool { return lvl <= current }

// Init opens (rotating if necessary) the log file and redirects the
// standard logger to it. The returned file must be closed at shutdown.
func Init(cfg Config) (io.Closer, error) {
	current = cfg.MinLevel
	if cfg.Disabled {
		log.SetOutput(NullWriter{})
		return nopCloser{}, nil
	}

	path := cfg.FilePath
	if path == "" {
		if cfg.Dir == "" {
			return nil, fmt.Errorf("logging: no directory or file path configured")
		}
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: create dir: %w", err)
		}
		path = filepath.Join(cfg.Dir, "termide.log")
	}

	if err := rotateIfStale(path, cfg.Retention); err != nil {
		log.Printf("TERMIDE Logging: rotate failed, continuing: %v", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	log.SetOutput(f)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	if cfg.Dir != "" {
		go sweepOldLogs(cfg.Dir, cfg.Retention)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// rotateIfStale renames an existing log file to a timestamped sibling
// when it predates the retention window, so a fresh file starts clean.
func rotateIfStale(path string, retention time.Duration) error {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if time.Since(info.ModTime()) < retention {
		return nil
	}
	rotated := fmt.Sprintf("%s.%s", path, info.ModTime().UTC().Format("20060102T150405"))
	return os.Rename(path, rotated)
}

// RecoverWorker catches a panic raised anywhere within a background
// worker goroutine and logs it with a stack trace, letting the
// goroutine exit instead of taking the whole process down with it
// (spec §9: "Worker threads catch panics at their top level and
// degrade" / §7's WorkerFailure model: "logged, feature degrades
// silently, no crash"). Call it deferred at the very top of the
// goroutine's entry function:
//
//	go func() {
//		defer logging.RecoverWorker("pty-reader")
//		...
//	}()
//
// Callers that need to run extra cleanup (flipping an alive flag,
// closing a channel) on the panicking path should instead recover()
// locally and pass the value to LogPanic.
func RecoverWorker(name string) {
	if r := recover(); r != nil {
		LogPanic(name, r)
	}
}

// LogPanic formats and logs a value already obtained from recover(),
// for call sites that need to run their own cleanup alongside the log
// line (see RecoverWorker's doc comment).
func LogPanic(name string, r any) {
	stack := errors.Wrap(fmt.Errorf("%v", r), 1)
	log.Printf("TERMIDE worker %q panicked, degrading: %v\n%s", name, r, stack.ErrorStack())
}

// sweepOldLogs deletes rotated log files older than retention from dir.
func sweepOldLogs(dir string, retention time.Duration) {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-retention)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}

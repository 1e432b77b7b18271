package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Options configures the global logger. A zero value logs INFO and above to
// stderr only.
type Options struct {
	Level Level
	// File, when set, receives an uncolored copy of every line and is
	// rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu       sync.Mutex
	console  = stdlog.New(os.Stderr, "", 0)
	file     *stdlog.Logger
	rotator  *lumberjack.Logger
	minLevel = LevelInfo

	levelColors = map[Level]*color.Color{
		LevelDebug: color.New(color.FgCyan),
		LevelInfo:  color.New(color.FgGreen),
		LevelError: color.New(color.FgRed, color.Bold),
	}
)

// ParseLevel accepts debug, info or error in any case.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToUpper(strings.TrimSpace(s))); l {
	case LevelDebug, LevelInfo, LevelError:
		return l, nil
	case "":
		return LevelInfo, nil
	default:
		return "", fmt.Errorf("log: unknown level %q", s)
	}
}

// Configure applies opts, replacing any previously opened file sink.
func Configure(opts Options) error {
	level, err := ParseLevel(string(opts.Level))
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if err := closeFileLocked(); err != nil {
		return err
	}
	minLevel = level

	if opts.File == "" {
		return nil
	}
	rotator = &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	file = stdlog.New(rotator, "", 0)
	return nil
}

func SetLevel(l Level) {
	mu.Lock()
	minLevel = l
	mu.Unlock()
}

// SetOutput redirects console output, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	console.SetOutput(w)
	mu.Unlock()
}

// Close flushes and closes the file sink, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeFileLocked()
}

func closeFileLocked() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	file = nil
	return err
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

func logWithLevel(level Level, msg string, kv ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled(level) {
		return
	}

	// 2025-01-01T00:00:00Z [LEVEL] msg key=value ...
	ts := time.Now().Format(time.RFC3339Nano)
	rest := msg + formatKVs(kv...)

	tag := string(level)
	if c, ok := levelColors[level]; ok {
		tag = c.Sprint(tag)
	}
	console.Println(ts + " [" + tag + "] " + rest)

	if file != nil {
		file.Println(ts + " [" + string(level) + "] " + rest)
	}
}

func enabled(level Level) bool {
	switch minLevel {
	case LevelDebug:
		return true
	case LevelInfo:
		return level == LevelInfo || level == LevelError
	case LevelError:
		return level == LevelError
	default:
		return true
	}
}

func formatKVs(kv ...any) string {
	var b strings.Builder
	// Expect kv as pairs: key, value, key, value, ...
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b.WriteString(" " + key + "=" + fmt.Sprint(kv[i+1]))
	}
	// If odd number of args, last one is ignored.
	return b.String()
}

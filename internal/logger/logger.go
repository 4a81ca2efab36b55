package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default logging configuration constants
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes where vrhook writes its log lines.
// If File is empty, DefaultFile() is used. Rotation parameters follow
// lumberjack semantics.
type Config struct {
	File       string // log file path
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // Gzip rotated files
	Color      bool   // ANSI colors on the console sink
	Level      string // debug, info, warn, error (default info)
	NoConsole  bool   // disable the console sink
}

// DefaultFile returns "<executable-name>.log" in the working directory.
func DefaultFile() string {
	name := "vrhook"
	if exe, err := os.Executable(); err == nil {
		base := filepath.Base(exe)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return name + ".log"
}

// FileWriter returns the rotating writer for the log file.
func (c Config) FileWriter() io.WriteCloser {
	file := c.File
	if file == "" {
		file = DefaultFile()
	}
	return &lj.Logger{
		Filename:   file,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// New builds a logger that writes to the console and to the rotating log
// file. The returned closer releases the file.
func New(c Config) (*slog.Logger, io.Closer) {
	file := c.FileWriter()
	sinks := []Sink{{W: file}}
	if !c.NoConsole {
		sinks = append(sinks, Sink{W: os.Stdout, Color: c.Color})
	}
	h := NewLineHandler(&slog.HandlerOptions{Level: ParseLevel(c.Level)}, sinks...)
	return slog.New(h), file
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

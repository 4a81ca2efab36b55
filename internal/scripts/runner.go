// Package scripts discovers user scripts in a directory and launches them
// as detached child processes.
package scripts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/loykin/vrhook/internal/metrics"
)

// DefaultPattern selects Windows command scripts.
const DefaultPattern = "*.cmd"

// Runner finds scripts matching Pattern directly inside a directory and
// hands each to Launcher. Launches are fire-and-forget.
type Runner struct {
	Pattern  string
	Launcher Launcher
	Logger   *slog.Logger
}

// New returns a Runner using the shell launcher.
func New(pattern string, log *slog.Logger) *Runner {
	return &Runner{Pattern: pattern, Launcher: ShellLauncher{}, Logger: log}
}

func (r *Runner) pattern() string {
	if r.Pattern == "" {
		return DefaultPattern
	}
	return r.Pattern
}

// Find creates dir when it is missing and returns the matching files in
// name order. Subdirectories are not searched.
func (r *Runner) Find(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := matchName(r.pattern(), e.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", r.pattern(), err)
		}
		if ok {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// Count reports how many scripts dir holds. Errors are logged and count as
// zero.
func (r *Runner) Count(dir string) int {
	found, err := r.Find(dir)
	if err != nil {
		r.Logger.Error("failed to list scripts", "dir", dir, "error", err)
		return 0
	}
	return len(found)
}

// Run launches every script in dir and returns how many started. A script
// that fails to launch is logged and skipped.
func (r *Runner) Run(dir string) int {
	found, err := r.Find(dir)
	if err != nil {
		r.Logger.Error("failed to list scripts", "dir", dir, "error", err)
		return 0
	}
	if len(found) == 0 {
		r.Logger.Warn("no scripts found", "dir", dir, "pattern", r.pattern())
		return 0
	}
	r.Logger.Info("found scripts", "dir", dir, "count", len(found))

	launched := 0
	for _, path := range found {
		if err := r.Launcher.Launch(path); err != nil {
			r.Logger.Error("failed to launch script", "script", path, "error", err)
			metrics.IncScriptFailed(dir)
			continue
		}
		r.Logger.Info("launched script", "script", path)
		metrics.IncScriptLaunched(dir)
		launched++
	}
	return launched
}

package logger

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// TimeFormat is the clock prefix of every line.
const TimeFormat = "15:04:05"

// Sink is one destination of a LineHandler.
type Sink struct {
	W     io.Writer
	Color bool
}

// LineHandler renders records as "HH:mm:ss LEVEL message key=value ..." and
// writes the same line to every sink.
type LineHandler struct {
	opts   slog.HandlerOptions
	sinks  []Sink
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// NewLineHandler creates a LineHandler. A nil opts logs at info and above.
func NewLineHandler(opts *slog.HandlerOptions, sinks ...Sink) *LineHandler {
	h := &LineHandler{sinks: sinks, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *LineHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *LineHandler) Handle(_ context.Context, r slog.Record) error {
	var tail bytes.Buffer
	for _, a := range h.attrs {
		writeAttr(&tail, nil, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&tail, h.groups, a)
		return true
	})
	tail.WriteByte('\n')

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	clock := ts.Format(TimeFormat)
	level := r.Level.String()

	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for _, s := range h.sinks {
		var line bytes.Buffer
		line.WriteString(clock)
		line.WriteByte(' ')
		if s.Color {
			line.WriteString(levelColor(r.Level))
			line.WriteString(level)
			line.WriteString("\033[0m")
		} else {
			line.WriteString(level)
		}
		line.WriteByte(' ')
		line.WriteString(r.Message)
		line.Write(tail.Bytes())
		if _, err := s.W.Write(line.Bytes()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *LineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		nh.attrs = append(nh.attrs, qualify(h.groups, a))
	}
	return &nh
}

func (h *LineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.groups = append(append([]string(nil), h.groups...), name)
	return &nh
}

func qualify(groups []string, a slog.Attr) slog.Attr {
	for i := len(groups) - 1; i >= 0; i-- {
		a = slog.Attr{Key: groups[i] + "." + a.Key, Value: a.Value}
	}
	return a
}

func writeAttr(buf *bytes.Buffer, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	a = qualify(groups, a)
	if a.Value.Kind() == slog.KindGroup {
		prefix := a.Key
		for _, ga := range a.Value.Group() {
			if prefix != "" {
				ga.Key = prefix + "." + ga.Key
			}
			writeAttr(buf, nil, ga)
		}
		return
	}
	fmt.Fprintf(buf, " %s=%v", a.Key, a.Value.Any())
}

func levelColor(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "\033[31m" // Red
	case l >= slog.LevelWarn:
		return "\033[33m" // Yellow
	case l >= slog.LevelInfo:
		return "\033[32m" // Green
	default:
		return "\033[36m" // Cyan
	}
}

// Package vrhook runs user scripts around the lifetime of an OpenVR runtime.
package vrhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/loykin/vrhook/internal/config"
	"github.com/loykin/vrhook/internal/connector"
	"github.com/loykin/vrhook/internal/detector"
	"github.com/loykin/vrhook/internal/lifecycle"
	"github.com/loykin/vrhook/internal/logger"
	"github.com/loykin/vrhook/internal/metrics"
	"github.com/loykin/vrhook/internal/openvr"
	"github.com/loykin/vrhook/internal/scripts"
	"github.com/loykin/vrhook/internal/watcher"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = config.Config

type Runtime = openvr.Runtime

type Event = openvr.Event

type State = lifecycle.State

// EventQuit is the runtime event that ends the wait for quit.
const EventQuit = openvr.EventQuit

func LoadConfig(path string) (Config, error) { return config.Load(path) }

func DefaultConfig() Config { return config.Default() }

// Option customizes a Hook.
type Option func(*Hook)

// WithRuntime replaces the OpenVR client, e.g. with a test double.
func WithRuntime(rt Runtime) Option { return func(h *Hook) { h.rt = rt } }

// WithLogger replaces the console and file logger built from Config.
func WithLogger(l *slog.Logger) Option { return func(h *Hook) { h.log = l } }

// Hook wires the runtime client, script runner and quit watcher for one
// configuration.
type Hook struct {
	cfg     Config
	log     *slog.Logger
	closer  io.Closer
	rt      Runtime
	scripts *scripts.Runner
}

func New(cfg Config, opts ...Option) *Hook {
	h := &Hook{cfg: cfg}
	for _, o := range opts {
		o(h)
	}
	if h.log == nil {
		h.log, h.closer = logger.New(cfg.LoggerConfig())
	}
	if h.rt == nil {
		h.rt = openvr.NewClient(cfg.Runtime.Library)
	}
	h.scripts = scripts.New(cfg.Pattern, h.log)
	return h
}

func (h *Hook) Logger() *slog.Logger { return h.log }

func (h *Hook) Config() Config { return h.cfg }

// Close releases the log file.
func (h *Hook) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

func (h *Hook) connector() *connector.Connector {
	c := &connector.Connector{
		Runtime:      h.rt,
		AppKey:       h.cfg.AppKey,
		ManifestPath: h.cfg.Manifest,
		Logger:       h.log,
	}
	if len(h.cfg.Runtime.ProcessNames) > 0 {
		c.Probe = detector.ProcessNameDetector{Names: h.cfg.Runtime.ProcessNames}
	}
	return c
}

func (h *Hook) orchestrator() *lifecycle.Orchestrator {
	return &lifecycle.Orchestrator{
		Connector:     h.connector(),
		Runtime:       h.rt,
		Scripts:       h.scripts,
		Watcher:       watcher.New(h.rt, h.cfg.PollInterval, h.log),
		StartDir:      h.cfg.StartDir,
		StopDir:       h.cfg.StopDir,
		RetryInterval: h.cfg.RetryInterval,
		Logger:        h.log,
	}
}

// Run performs one full lifecycle. Cancelling ctx stops it at the next stage
// boundary and Run returns ctx.Err().
func (h *Hook) Run(ctx context.Context) (State, error) {
	if err := RegisterMetricsDefault(); err != nil {
		h.log.Warn("metrics registration failed", "error", err)
	}
	if h.cfg.Metrics.Listen != "" {
		// metrics stay up for the whole run, independent of ctx
		mctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if _, err := metrics.Serve(mctx, h.cfg.Metrics.Listen, h.log); err != nil {
			h.log.Error("metrics server not started", "addr", h.cfg.Metrics.Listen, "error", err)
		}
	}

	h.log.Info("vrhook starting", "start_dir", h.cfg.StartDir, "stop_dir", h.cfg.StopDir, "pattern", h.cfg.Pattern)
	return h.orchestrator().Run(ctx)
}

// Register connects once, ensures the manifest registration and disconnects.
func (h *Hook) Register() error {
	if err := h.connector().Connect(); err != nil {
		return fmt.Errorf("connect to runtime: %w", err)
	}
	h.rt.Shutdown()
	return nil
}

// Scripts returns the scripts a run would launch, creating missing
// directories like a run does.
func (h *Hook) Scripts() (start, stop []string, err error) {
	if start, err = h.scripts.Find(h.cfg.StartDir); err != nil {
		return nil, nil, err
	}
	if stop, err = h.scripts.Find(h.cfg.StopDir); err != nil {
		return nil, nil, err
	}
	return start, stop, nil
}

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics exposes /metrics on addr until ctx is done.
func ServeMetrics(ctx context.Context, addr string, log *slog.Logger) (net.Addr, error) {
	return metrics.Serve(ctx, addr, log)
}

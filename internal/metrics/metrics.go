package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stages of a lifecycle run, as reported by the current_stage gauge.
var Stages = []string{"connecting", "start_scripts", "waiting_for_quit", "shutdown", "stop_scripts", "done"}

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	connectAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "runtime",
			Name:      "connect_attempts_total",
			Help:      "Number of runtime connection attempts.",
		},
	)
	connectFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "runtime",
			Name:      "connect_failures_total",
			Help:      "Number of failed runtime connection attempts.",
		},
	)
	runtimeEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "runtime",
			Name:      "events_total",
			Help:      "Number of runtime events drained while waiting for quit.",
		}, []string{"type"},
	)
	pollErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "runtime",
			Name:      "poll_errors_total",
			Help:      "Number of failed event polls.",
		},
	)
	scriptsLaunched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "scripts",
			Name:      "launched_total",
			Help:      "Number of scripts launched per directory.",
		}, []string{"dir"},
	)
	scriptsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vrhook",
			Subsystem: "scripts",
			Name:      "launch_failures_total",
			Help:      "Number of scripts that failed to launch per directory.",
		}, []string{"dir"},
	)
	currentStage = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vrhook",
			Subsystem: "lifecycle",
			Name:      "current_stage",
			Help:      "Current lifecycle stage (1 = active, 0 = inactive).",
		}, []string{"stage"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{connectAttempts, connectFailures, runtimeEvents, pollErrors, scriptsLaunched, scriptsFailed, currentStage}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncConnectAttempt() {
	if regOK.Load() {
		connectAttempts.Inc()
	}
}

func IncConnectFailure() {
	if regOK.Load() {
		connectFailures.Inc()
	}
}

func IncEvent(eventType string) {
	if regOK.Load() {
		runtimeEvents.WithLabelValues(eventType).Inc()
	}
}

func IncPollError() {
	if regOK.Load() {
		pollErrors.Inc()
	}
}

func IncScriptLaunched(dir string) {
	if regOK.Load() {
		scriptsLaunched.WithLabelValues(dir).Inc()
	}
}

func IncScriptFailed(dir string) {
	if regOK.Load() {
		scriptsFailed.WithLabelValues(dir).Inc()
	}
}

// SetStage marks stage active and every other known stage inactive.
func SetStage(stage string) {
	if !regOK.Load() {
		return
	}
	for _, s := range Stages {
		var value float64
		if s == stage {
			value = 1
		}
		currentStage.WithLabelValues(s).Set(value)
	}
}

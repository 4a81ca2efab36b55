// Package watcher blocks until the runtime announces that it is shutting
// down.
package watcher

import (
	"log/slog"
	"time"

	"github.com/loykin/vrhook/internal/metrics"
	"github.com/loykin/vrhook/internal/openvr"
)

// DefaultInterval is the pause between drains of the event queue.
const DefaultInterval = time.Second

// Watcher polls a connected runtime for the quit event.
type Watcher struct {
	Runtime  openvr.Runtime
	Interval time.Duration
	Logger   *slog.Logger

	sleep func(time.Duration)
}

// New returns a Watcher polling every interval.
func New(rt openvr.Runtime, interval time.Duration, log *slog.Logger) *Watcher {
	return &Watcher{Runtime: rt, Interval: interval, Logger: log}
}

// Wait returns after the quit event has been seen and acknowledged. Poll
// errors are logged and polling continues. Wait cannot be cancelled.
func (w *Watcher) Wait() {
	w.Logger.Info("waiting for runtime to quit")
	for {
		events, err := w.drain()
		if err != nil {
			metrics.IncPollError()
			w.Logger.Error("failed to poll runtime events", "error", err)
		}
		for _, ev := range events {
			if ev.Type == openvr.EventQuit {
				w.Logger.Info("runtime quit received")
				w.Runtime.AcknowledgeQuitExiting()
				return
			}
		}
		w.pause()
	}
}

// drain pulls events until the queue is empty. Events read before an error
// are still returned.
func (w *Watcher) drain() ([]openvr.Event, error) {
	var events []openvr.Event
	for {
		ev, ok, err := w.Runtime.PollNextEvent()
		if err != nil {
			return events, err
		}
		if !ok {
			return events, nil
		}
		metrics.IncEvent(ev.Type.String())
		w.Logger.Debug("runtime event", "type", ev.Type.String(), "device", ev.TrackedDeviceIndex)
		events = append(events, ev)
	}
}

func (w *Watcher) pause() {
	d := w.Interval
	if d <= 0 {
		d = DefaultInterval
	}
	if w.sleep != nil {
		w.sleep(d)
		return
	}
	time.Sleep(d)
}

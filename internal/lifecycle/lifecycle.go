// Package lifecycle sequences a vrhook run: connect, start scripts, wait for
// the runtime to quit, shut down, stop scripts.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/loykin/vrhook/internal/metrics"
)

// DefaultRetryInterval is the fixed delay between connection attempts.
const DefaultRetryInterval = time.Second

type Connector interface {
	Connect() error
}

type ScriptRunner interface {
	Run(dir string) int
	Count(dir string) int
}

type QuitWaiter interface {
	Wait()
}

type Shutdowner interface {
	Shutdown()
}

// State is threaded through the stages of one run.
type State struct {
	Attempts      int
	Connected     bool
	StartLaunched int
	WaitedForQuit bool
	ShutDown      bool
	StopLaunched  int
}

// Orchestrator runs the stages in order. Cancellation is only observed
// between stages and while waiting to retry a connection; a stage that has
// started always completes.
type Orchestrator struct {
	Connector     Connector
	Runtime       Shutdowner
	Scripts       ScriptRunner
	Watcher       QuitWaiter
	StartDir      string
	StopDir       string
	RetryInterval time.Duration
	Logger        *slog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Run executes one full lifecycle. It returns ctx.Err() when cancelled at a
// stage boundary; the runtime is still shut down if it was connected.
func (o *Orchestrator) Run(ctx context.Context) (State, error) {
	var st State

	metrics.SetStage("connecting")
	if err := o.connect(ctx, &st); err != nil {
		o.Logger.Warn("cancelled before the runtime connected", "attempts", st.Attempts)
		return st, err
	}

	metrics.SetStage("start_scripts")
	st.StartLaunched = o.Scripts.Run(o.StartDir)

	if err := ctx.Err(); err != nil {
		o.Logger.Warn("cancelled after start scripts")
		o.shutdown(&st)
		return st, err
	}

	if o.Scripts.Count(o.StopDir) > 0 {
		metrics.SetStage("waiting_for_quit")
		o.Watcher.Wait()
		st.WaitedForQuit = true
	} else {
		o.Logger.Info("no stop scripts, not waiting for runtime to quit", "dir", o.StopDir)
	}

	o.shutdown(&st)

	metrics.SetStage("stop_scripts")
	st.StopLaunched = o.Scripts.Run(o.StopDir)

	metrics.SetStage("done")
	o.Logger.Info("lifecycle complete", "start_scripts", st.StartLaunched, "stop_scripts", st.StopLaunched)
	return st, nil
}

func (o *Orchestrator) connect(ctx context.Context, st *State) error {
	interval := o.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st.Attempts++
		if err := o.Connector.Connect(); err == nil {
			st.Connected = true
			o.Logger.Info("connected to runtime", "attempts", st.Attempts)
			return nil
		}
		if err := o.wait(ctx, interval); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) shutdown(st *State) {
	if !st.Connected || st.ShutDown {
		return
	}
	metrics.SetStage("shutdown")
	o.Runtime.Shutdown()
	st.ShutDown = true
	o.Logger.Info("runtime connection shut down")
}

func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if o.sleep != nil {
		return o.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

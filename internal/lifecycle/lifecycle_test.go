package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loykin/vrhook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trace collects the calls made by the fakes below, in order.
type trace struct{ calls []string }

func (t *trace) add(s string) { t.calls = append(t.calls, s) }

type fakeConnector struct {
	tr       *trace
	failures int
	attempts int
}

func (c *fakeConnector) Connect() error {
	c.attempts++
	c.tr.add("connect")
	if c.attempts <= c.failures {
		return errors.New("runtime not ready")
	}
	return nil
}

type fakeScripts struct {
	tr     *trace
	counts map[string]int
	onRun  func(dir string)
}

func (s *fakeScripts) Run(dir string) int {
	s.tr.add("run:" + dir)
	if s.onRun != nil {
		s.onRun(dir)
	}
	return s.counts[dir]
}

func (s *fakeScripts) Count(dir string) int {
	s.tr.add("count:" + dir)
	return s.counts[dir]
}

type fakeWatcher struct{ tr *trace }

func (w *fakeWatcher) Wait() { w.tr.add("wait") }

type fakeRuntime struct{ tr *trace }

func (r *fakeRuntime) Shutdown() { r.tr.add("shutdown") }

func newOrchestrator(tr *trace, failures int, counts map[string]int) (*Orchestrator, *fakeConnector, *fakeScripts, *[]time.Duration) {
	log, _ := testutil.NewLogger()
	conn := &fakeConnector{tr: tr, failures: failures}
	sc := &fakeScripts{tr: tr, counts: counts}
	o := &Orchestrator{
		Connector:     conn,
		Runtime:       &fakeRuntime{tr: tr},
		Scripts:       sc,
		Watcher:       &fakeWatcher{tr: tr},
		StartDir:      "start",
		StopDir:       "stop",
		RetryInterval: time.Second,
		Logger:        log,
	}
	var slept []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		tr.add("sleep")
		slept = append(slept, d)
		return ctx.Err()
	}
	return o, conn, sc, &slept
}

func TestRun_NoStopScriptsSkipsWait(t *testing.T) {
	tr := &trace{}
	o, _, _, _ := newOrchestrator(tr, 0, map[string]int{"start": 1})

	st, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"connect", "run:start", "count:stop", "shutdown", "run:stop"}, tr.calls)
	assert.Equal(t, State{Attempts: 1, Connected: true, StartLaunched: 1, ShutDown: true}, st)
}

func TestRun_StopScriptsWaitBeforeShutdown(t *testing.T) {
	tr := &trace{}
	o, _, _, _ := newOrchestrator(tr, 0, map[string]int{"stop": 2})

	st, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"connect", "run:start", "count:stop", "wait", "shutdown", "run:stop"}, tr.calls)
	assert.True(t, st.WaitedForQuit)
	assert.Equal(t, 2, st.StopLaunched)
}

func TestRun_RetriesUntilConnected(t *testing.T) {
	const failures = 3
	tr := &trace{}
	o, conn, _, slept := newOrchestrator(tr, failures, nil)

	st, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, failures+1, conn.attempts)
	assert.Equal(t, failures+1, st.Attempts)
	require.Len(t, *slept, failures)
	for _, d := range *slept {
		assert.GreaterOrEqual(t, d, time.Second)
	}
	assert.Equal(t, []string{
		"connect", "sleep", "connect", "sleep", "connect", "sleep", "connect",
		"run:start", "count:stop", "shutdown", "run:stop",
	}, tr.calls)
}

func TestRun_CancelledBeforeConnect(t *testing.T) {
	tr := &trace{}
	o, conn, _, _ := newOrchestrator(tr, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st, err := o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, conn.attempts)
	assert.False(t, st.Connected)
	assert.Empty(t, tr.calls)
}

func TestRun_CancelledWhileRetrying(t *testing.T) {
	tr := &trace{}
	o, conn, _, _ := newOrchestrator(tr, 100, nil)
	ctx, cancel := context.WithCancel(context.Background())
	o.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, conn.attempts)
	assert.Equal(t, []string{"connect"}, tr.calls)
}

func TestRun_CancelledAfterStartScriptsShutsDown(t *testing.T) {
	tr := &trace{}
	o, _, sc, _ := newOrchestrator(tr, 0, map[string]int{"stop": 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc.onRun = func(dir string) {
		if dir == "start" {
			cancel()
		}
	}

	st, err := o.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"connect", "run:start", "shutdown"}, tr.calls)
	assert.True(t, st.ShutDown)
	assert.False(t, st.WaitedForQuit)
}

func TestWait_DefaultTimer(t *testing.T) {
	o := &Orchestrator{}
	start := time.Now()
	require.NoError(t, o.wait(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.wait(ctx, time.Hour), context.Canceled)
}

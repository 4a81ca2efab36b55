package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/loykin/vrhook"
	"github.com/loykin/vrhook/internal/openvr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime stands in for the OpenVR client.
type fakeRuntime struct {
	mu        sync.Mutex
	initErr   error
	installed bool
	polled    bool
	calls     []string
}

func (f *fakeRuntime) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeRuntime) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRuntime) Init(openvr.ApplicationType) error { f.record("Init"); return f.initErr }
func (f *fakeRuntime) IsApplicationInstalled(string) bool {
	f.record("IsApplicationInstalled")
	return f.installed
}
func (f *fakeRuntime) AddApplicationManifest(path string, _ bool) error {
	f.record("AddApplicationManifest:" + path)
	return nil
}
func (f *fakeRuntime) SetApplicationAutoLaunch(string, bool) error {
	f.record("SetApplicationAutoLaunch")
	return nil
}
// PollNextEvent yields a single quit event, then reports an empty queue.
func (f *fakeRuntime) PollNextEvent() (openvr.Event, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.polled {
		return openvr.Event{}, false, nil
	}
	f.polled = true
	return openvr.Event{Type: openvr.EventQuit}, true, nil
}
func (f *fakeRuntime) AcknowledgeQuitExiting() { f.record("AcknowledgeQuitExiting") }
func (f *fakeRuntime) Shutdown()               { f.record("Shutdown") }

func useFakeRuntime(t *testing.T, rt *fakeRuntime) {
	t.Helper()
	orig := newHook
	newHook = func(cfg vrhook.Config) *vrhook.Hook { return vrhook.New(cfg, vrhook.WithRuntime(rt)) }
	t.Cleanup(func() { newHook = orig })
}

// writeConfig points every path at dir so tests never touch the working
// directory.
func writeConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	data := strings.Join([]string{
		`start_dir = "` + filepath.ToSlash(filepath.Join(dir, "start")) + `"`,
		`stop_dir = "` + filepath.ToSlash(filepath.Join(dir, "stop")) + `"`,
		`retry_interval = "10ms"`,
		`poll_interval = "10ms"`,
		`[runtime]`,
		`process_names = []`,
		`[log]`,
		`file = "` + filepath.ToSlash(filepath.Join(dir, "vrhook.log")) + `"`,
		extra,
	}, "\n")
	path := filepath.Join(dir, "vrhook.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(args ...string) (string, error) {
	root := buildRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRoot_RunsLifecycle(t *testing.T) {
	dir := t.TempDir()
	rt := &fakeRuntime{installed: true}
	useFakeRuntime(t, rt)
	cfg := writeConfig(t, dir, "[metrics]\nlisten = \"127.0.0.1:0\"")

	_, err := execute("--config", cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Init", "IsApplicationInstalled", "Shutdown"}, rt.Calls())
	for _, sub := range []string{"start", "stop"} {
		st, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, "%s dir created", sub)
		assert.True(t, st.IsDir())
	}
	b, err := os.ReadFile(filepath.Join(dir, "vrhook.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "INFO lifecycle complete")
	assert.Contains(t, string(b), "WARN no scripts found")
}

func TestRoot_WaitsWhenStopScriptsExist(t *testing.T) {
	dir := t.TempDir()
	rt := &fakeRuntime{installed: true}
	useFakeRuntime(t, rt)
	cfg := writeConfig(t, dir, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stop"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stop", "noop.cmd"), []byte("exit 0\n"), 0o644))

	_, err := execute("--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Init", "IsApplicationInstalled", "AcknowledgeQuitExiting", "Shutdown"}, rt.Calls())
}

func TestRoot_BadConfig(t *testing.T) {
	useFakeRuntime(t, &fakeRuntime{})
	_, err := execute("--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = execute("unexpected-arg")
	assert.Error(t, err)
}

func TestScriptsCommand(t *testing.T) {
	dir := t.TempDir()
	useFakeRuntime(t, &fakeRuntime{})
	cfg := writeConfig(t, dir, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "start"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "start", "launch.cmd"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "start", "notes.txt"), nil, 0o644))

	out, err := execute("scripts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "start (1):\n")
	assert.Contains(t, out, filepath.Join(dir, "start", "launch.cmd"))
	assert.NotContains(t, out, "notes.txt")
	assert.Contains(t, out, "stop (0):\n")
}

func TestRegisterCommand(t *testing.T) {
	dir := t.TempDir()
	rt := &fakeRuntime{}
	useFakeRuntime(t, rt)
	cfg := writeConfig(t, dir, "")

	_, err := execute("register", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Init", "IsApplicationInstalled",
		"AddApplicationManifest:app.vrmanifest", "SetApplicationAutoLaunch", "Shutdown",
	}, rt.Calls())
}

func TestRegisterCommand_ConnectFailure(t *testing.T) {
	dir := t.TempDir()
	rt := &fakeRuntime{initErr: openvr.InitError(108)}
	useFakeRuntime(t, rt)
	cfg := writeConfig(t, dir, "")

	_, err := execute("register", "--config", cfg)
	require.Error(t, err)
	var ie openvr.InitError
	assert.True(t, errors.As(err, &ie))
	assert.Equal(t, []string{"Init"}, rt.Calls(), "register does not retry")
}

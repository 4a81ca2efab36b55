//go:build darwin || linux || windows

package openvr

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/ebitengine/purego"
)

const (
	systemInterface       = "FnTable:IVRSystem_022"
	applicationsInterface = "FnTable:IVRApplications_007"
)

// Function table slots, in declaration order of the C API structs.
const (
	systemPollNextEvent          = 29
	systemAcknowledgeQuitExiting = 43

	appsAddApplicationManifest   = 0
	appsIsApplicationInstalled   = 2
	appsSetApplicationAutoLaunch = 17
)

// Client talks to the OpenVR runtime through its C API, loaded with purego
// so no cgo toolchain is required.
type Client struct {
	library string
	lib     uintptr

	initInternal     func(code *int32, appType int32) uint32
	shutdownInternal func()
	genericInterface func(version string, code *int32) unsafe.Pointer

	isInstalled   func(appKey string) bool
	addManifest   func(path string, temporary bool) int32
	setAutoLaunch func(appKey string, autoLaunch bool) int32
	pollNextEvent func(event unsafe.Pointer, size uint32) bool
	ackQuit       func()

	initialized bool
}

// NewClient returns a client for the given runtime library. An empty name
// selects the platform default.
func NewClient(library string) *Client {
	if library == "" {
		library = DefaultLibrary
	}
	return &Client{library: library}
}

// Library returns the library path the client loads.
func (c *Client) Library() string { return c.library }

func (c *Client) load() error {
	if c.lib != 0 {
		return nil
	}
	lib, err := openLibrary(c.library)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, c.library, err)
	}
	entries := []struct {
		name string
		fn   any
	}{
		{"VR_InitInternal", &c.initInternal},
		{"VR_ShutdownInternal", &c.shutdownInternal},
		{"VR_GetGenericInterface", &c.genericInterface},
	}
	for _, e := range entries {
		addr, err := lookup(lib, e.name)
		if err != nil {
			return fmt.Errorf("%w: %s: missing symbol %s: %v", ErrLibraryNotFound, c.library, e.name, err)
		}
		purego.RegisterFunc(e.fn, addr)
	}
	c.lib = lib
	return nil
}

// Init connects to the runtime and resolves the system and applications
// function tables.
func (c *Client) Init(appType ApplicationType) error {
	if err := c.load(); err != nil {
		return err
	}
	var code int32
	c.initInternal(&code, int32(appType))
	if InitError(code) != InitNone {
		return InitError(code)
	}
	sys, err := c.fnTable(systemInterface)
	if err != nil {
		c.shutdownInternal()
		return err
	}
	apps, err := c.fnTable(applicationsInterface)
	if err != nil {
		c.shutdownInternal()
		return err
	}
	purego.RegisterFunc(&c.pollNextEvent, slot(sys, systemPollNextEvent))
	purego.RegisterFunc(&c.ackQuit, slot(sys, systemAcknowledgeQuitExiting))
	purego.RegisterFunc(&c.addManifest, slot(apps, appsAddApplicationManifest))
	purego.RegisterFunc(&c.isInstalled, slot(apps, appsIsApplicationInstalled))
	purego.RegisterFunc(&c.setAutoLaunch, slot(apps, appsSetApplicationAutoLaunch))
	c.initialized = true
	return nil
}

func (c *Client) fnTable(version string) (unsafe.Pointer, error) {
	var code int32
	table := c.genericInterface(version, &code)
	if InitError(code) != InitNone || table == nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInterfaceNotFound, version, InitError(code))
	}
	return table, nil
}

func slot(table unsafe.Pointer, index int) uintptr {
	return *(*uintptr)(unsafe.Add(table, index*int(unsafe.Sizeof(uintptr(0)))))
}

func (c *Client) IsApplicationInstalled(appKey string) bool {
	if !c.initialized {
		return false
	}
	return c.isInstalled(appKey)
}

// AddApplicationManifest registers the manifest at path. The runtime runs in
// its own process, so relative paths are resolved against the current
// working directory first.
func (c *Client) AddApplicationManifest(path string, temporary bool) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve manifest path: %w", err)
	}
	if code := AppError(c.addManifest(abs, temporary)); code != AppNone {
		return code
	}
	return nil
}

func (c *Client) SetApplicationAutoLaunch(appKey string, autoLaunch bool) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	if code := AppError(c.setAutoLaunch(appKey, autoLaunch)); code != AppNone {
		return code
	}
	return nil
}

func (c *Client) PollNextEvent() (Event, bool, error) {
	if !c.initialized {
		return Event{}, false, ErrNotInitialized
	}
	var buf [eventBufferWords]uint64
	if !c.pollNextEvent(unsafe.Pointer(&buf[0]), eventSize) {
		return Event{}, false, nil
	}
	return decodeEvent(unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), eventSize)), true, nil
}

func (c *Client) AcknowledgeQuitExiting() {
	if c.initialized {
		c.ackQuit()
	}
}

// Shutdown releases the runtime connection. It is a no-op when Init never
// succeeded.
func (c *Client) Shutdown() {
	if !c.initialized {
		return
	}
	c.shutdownInternal()
	c.initialized = false
	c.isInstalled = nil
	c.addManifest = nil
	c.setAutoLaunch = nil
	c.pollNextEvent = nil
	c.ackQuit = nil
}

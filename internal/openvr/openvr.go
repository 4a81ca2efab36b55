// Package openvr exposes the subset of the OpenVR runtime API that vrhook
// needs: connecting as an overlay application, manifest registration and
// lifecycle event polling.
package openvr

import (
	"errors"
	"fmt"
)

// ApplicationType mirrors EVRApplicationType.
type ApplicationType int32

const (
	ApplicationOther      ApplicationType = 0
	ApplicationScene      ApplicationType = 1
	ApplicationOverlay    ApplicationType = 2
	ApplicationBackground ApplicationType = 3
	ApplicationUtility    ApplicationType = 4
)

// EventType mirrors EVREventType. Only the values vrhook looks at are named.
type EventType uint32

const (
	EventNone                EventType = 0
	EventQuit                EventType = 700
	EventProcessQuit         EventType = 701
	EventQuitAcknowledged    EventType = 703
	EventDriverRequestedQuit EventType = 704
)

func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventQuit:
		return "quit"
	case EventProcessQuit:
		return "process_quit"
	case EventQuitAcknowledged:
		return "quit_acknowledged"
	case EventDriverRequestedQuit:
		return "driver_requested_quit"
	default:
		return fmt.Sprintf("event(%d)", uint32(t))
	}
}

// Event is a single record returned by PollNextEvent.
type Event struct {
	Type               EventType
	TrackedDeviceIndex uint32
	AgeSeconds         float32
}

var (
	// ErrLibraryNotFound is returned by Init when the runtime client library
	// cannot be loaded.
	ErrLibraryNotFound = errors.New("openvr: runtime library not found")
	// ErrInterfaceNotFound is returned when the runtime does not provide a
	// required interface version.
	ErrInterfaceNotFound = errors.New("openvr: interface not available")
	// ErrNotInitialized is returned by calls made before a successful Init.
	ErrNotInitialized = errors.New("openvr: not initialized")
)

// InitError is an EVRInitError code returned by VR_InitInternal.
type InitError int32

const InitNone InitError = 0

func (e InitError) Error() string {
	if name, ok := initErrorNames[e]; ok {
		return fmt.Sprintf("openvr init error %d (%s)", int32(e), name)
	}
	return fmt.Sprintf("openvr init error %d", int32(e))
}

var initErrorNames = map[InitError]string{
	100: "InstallationNotFound",
	101: "InstallationCorrupt",
	102: "VRClientDLLNotFound",
	103: "FileNotFound",
	104: "FactoryNotFound",
	105: "InterfaceNotFound",
	106: "InvalidInterface",
	108: "HmdNotFound",
	109: "NotInitialized",
	119: "ShuttingDown",
	121: "NoServerForBackgroundApp",
	300: "IPCServerInitFailed",
	301: "IPCConnectFailed",
}

// AppError is an EVRApplicationError code returned by the applications
// interface.
type AppError int32

const AppNone AppError = 0

func (e AppError) Error() string {
	if name, ok := appErrorNames[e]; ok {
		return fmt.Sprintf("openvr application error %d (%s)", int32(e), name)
	}
	return fmt.Sprintf("openvr application error %d", int32(e))
}

var appErrorNames = map[AppError]string{
	100: "AppKeyAlreadyExists",
	101: "NoManifest",
	102: "NoApplication",
	103: "InvalidIndex",
	104: "UnknownApplication",
	105: "IPCFailed",
	106: "ApplicationAlreadyRunning",
	107: "InvalidManifest",
	108: "InvalidApplication",
	109: "LaunchFailed",
	110: "ApplicationAlreadyStarting",
	111: "LaunchInProgress",
	112: "OldApplicationQuitting",
	113: "TransitionAborted",
	114: "IsTemplate",
	115: "SteamVRIsExiting",
	200: "BufferTooSmall",
	201: "PropertyNotSet",
	202: "UnknownProperty",
	203: "InvalidParameter",
	300: "NotImplemented",
}

// Runtime is the synchronous call/poll surface of the VR runtime.
// Implementations are not safe for concurrent use.
type Runtime interface {
	Init(appType ApplicationType) error
	IsApplicationInstalled(appKey string) bool
	AddApplicationManifest(path string, temporary bool) error
	SetApplicationAutoLaunch(appKey string, autoLaunch bool) error
	// PollNextEvent returns the next queued event. ok is false when the
	// queue is empty.
	PollNextEvent() (ev Event, ok bool, err error)
	AcknowledgeQuitExiting()
	Shutdown()
}

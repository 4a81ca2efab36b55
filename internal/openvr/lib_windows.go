//go:build windows

package openvr

import "golang.org/x/sys/windows"

// DefaultLibrary is the runtime client DLL searched on the loader path.
var DefaultLibrary = "openvr_api.dll"

// sizeof(VREvent_t) with the default 8 byte packing.
const eventSize = 64

func openLibrary(name string) (uintptr, error) {
	h, err := windows.LoadLibrary(name)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func lookup(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}

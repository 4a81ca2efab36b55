//go:build darwin || linux

package openvr

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// DefaultLibrary is the runtime client library name searched on the loader
// path.
var DefaultLibrary = func() string {
	if runtime.GOOS == "darwin" {
		return "libopenvr_api.dylib"
	}
	return "libopenvr_api.so"
}()

// OpenVR's vrtypes are packed to 4 bytes on Linux and macOS.
const eventSize = 60

func openLibrary(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

func lookup(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}

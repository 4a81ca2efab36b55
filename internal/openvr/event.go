package openvr

import (
	"encoding/binary"
	"math"
)

// eventBufferWords sizes the 8 byte aligned buffer handed to PollNextEvent;
// it holds VREvent_t on every supported platform.
const eventBufferWords = 8

var _ Runtime = (*Client)(nil)

// decodeEvent reads the fixed header of a VREvent_t. The data union that
// follows is not used.
func decodeEvent(b []byte) Event {
	return Event{
		Type:               EventType(binary.LittleEndian.Uint32(b[0:4])),
		TrackedDeviceIndex: binary.LittleEndian.Uint32(b[4:8]),
		AgeSeconds:         math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

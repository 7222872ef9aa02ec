// Package protocol models the framing overhead of V2X access technologies.
package protocol

// Protocol identifies a wireless access technology.
type Protocol string

// Supported access technologies.
const (
	DSRC  Protocol = "DSRC"
	CV2X  Protocol = "C-V2X"
	NRV2X Protocol = "5G NR-V2X"
)

// All returns the supported protocols in report order.
func All() []Protocol {
	return []Protocol{DSRC, CV2X, NRV2X}
}

// Per-protocol framing components in bytes. These constants are the
// external contract of the overhead model and must not drift.
const (
	dsrcMACMin      = 30
	dsrcMACMax      = 40
	dsrcLLCSNAP     = 8
	dsrcSecurityMin = 60
	dsrcSecurityMax = 100

	cv2xSCIMin    = 16
	cv2xSCIMax    = 24
	cv2xStackMin  = 20
	cv2xStackMax  = 40
	cv2xSecurity  = 48

	nrv2xSchedMin = 24
	nrv2xSchedMax = 40
	nrv2xStack    = 48
	nrv2xSecurity = 72
)

// Overhead returns the non-payload byte count a protocol adds to a frame,
// for the minimum or maximum overhead mode.
func Overhead(p Protocol, maxOverhead bool) int {
	switch p {
	case DSRC:
		if maxOverhead {
			return dsrcMACMax + dsrcLLCSNAP + dsrcSecurityMax
		}
		return dsrcMACMin + dsrcLLCSNAP + dsrcSecurityMin
	case CV2X:
		if maxOverhead {
			return cv2xSCIMax + cv2xStackMax + cv2xSecurity
		}
		return cv2xSCIMin + cv2xStackMin + cv2xSecurity
	case NRV2X:
		if maxOverhead {
			return nrv2xSchedMax + nrv2xStack + nrv2xSecurity
		}
		return nrv2xSchedMin + nrv2xStack + nrv2xSecurity
	default:
		return 0
	}
}

// FrameSize returns the total frame size for a payload under one protocol.
func FrameSize(p Protocol, payload int, maxOverhead bool) int {
	return payload + Overhead(p, maxOverhead)
}

// FrameSizes holds the total frame size of one payload under every
// supported protocol, plus the raw payload itself.
type FrameSizes struct {
	Payload int
	DSRC    int
	CV2X    int
	NRV2X   int
}

// Sizes computes the per-protocol totals for a payload.
func Sizes(payload int, maxOverhead bool) FrameSizes {
	return FrameSizes{
		Payload: payload,
		DSRC:    FrameSize(DSRC, payload, maxOverhead),
		CV2X:    FrameSize(CV2X, payload, maxOverhead),
		NRV2X:   FrameSize(NRV2X, payload, maxOverhead),
	}
}

// Total returns the frame size for the given protocol from the computed set.
func (f FrameSizes) Total(p Protocol) int {
	switch p {
	case DSRC:
		return f.DSRC
	case CV2X:
		return f.CV2X
	case NRV2X:
		return f.NRV2X
	default:
		return 0
	}
}

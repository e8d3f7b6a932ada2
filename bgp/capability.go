package bgp

import "encoding/binary"

// CapabilityCode identifies an OPEN capability TLV (RFC 5492 and the
// family-specific RFCs it parameterizes).
type CapabilityCode uint8

const (
	CapMultiprotocol       CapabilityCode = 1
	CapRouteRefresh        CapabilityCode = 2
	CapGracefulRestart     CapabilityCode = 64
	CapFourOctetASN        CapabilityCode = 65
	CapAddPath             CapabilityCode = 69
	CapEnhancedRouteRefresh CapabilityCode = 70
)

// AddPathDirection is the per-(AFI,SAFI) direction a peer advertises
// it can send, receive, or both, for AddPath-framed NLRI (RFC 7911).
type AddPathDirection uint8

const (
	AddPathReceive AddPathDirection = 1
	AddPathSend    AddPathDirection = 2
	AddPathBoth    AddPathDirection = AddPathSend | AddPathReceive
)

// AddPathEntry is one (AFI, SAFI, direction) tuple inside an AddPath
// capability.
type AddPathEntry struct {
	AFI       AFI
	SAFI      SAFI
	Direction AddPathDirection
}

// GracefulRestartAFSAFI is one per-family entry of a Graceful Restart
// capability (RFC 4724 §3).
type GracefulRestartAFSAFI struct {
	AFI   AFI
	SAFI  SAFI
	Flags uint8
}

// Capability is a tagged variant over the capability kinds spec.md §3
// names. Only the fields relevant to Code are populated; the zero
// value of the rest is meaningless.
type Capability struct {
	Code CapabilityCode

	// CapFourOctetASN
	ASN uint32

	// CapMultiprotocol
	MPAFI  AFI
	MPSAFI SAFI

	// CapAddPath
	AddPaths []AddPathEntry

	// CapGracefulRestart
	RestartFlags uint8
	RestartTime  uint16
	RestartAFs   []GracefulRestartAFSAFI

	// Unknown capability codes are preserved verbatim so that encode
	// round-trips byte-identically (spec §4.5, §7, §8 invariant 4).
	UnknownCode    uint8
	UnknownPayload []byte
}

// decodeCapability parses one capability TLV {code(1), length(1),
// value(length)} from buf and returns it with the number of bytes
// consumed. Unknown codes are never fatal: they are preserved as an
// opaque Capability whose Code and UnknownCode both hold the wire
// code, with the raw value in UnknownPayload for round-trip.
func decodeCapability(buf []byte) (Capability, int, error) {
	if len(buf) < 2 {
		return Capability{}, 0, errInsufficientBuffer(2, len(buf))
	}
	code := buf[0]
	length := int(buf[1])
	if len(buf) < 2+length {
		return Capability{}, 0, errInsufficientBuffer(2+length, len(buf))
	}
	value := buf[2 : 2+length]
	consumed := 2 + length

	switch CapabilityCode(code) {
	case CapMultiprotocol:
		if length != 4 {
			return Capability{}, 0, errMalformedField("capability.multiprotocol", "value must be 4 bytes")
		}
		return Capability{
			Code:   CapMultiprotocol,
			MPAFI:  AFI(binary.BigEndian.Uint16(value[0:2])),
			MPSAFI: SAFI(value[3]),
		}, consumed, nil
	case CapRouteRefresh:
		return Capability{Code: CapRouteRefresh}, consumed, nil
	case CapEnhancedRouteRefresh:
		return Capability{Code: CapEnhancedRouteRefresh}, consumed, nil
	case CapFourOctetASN:
		if length != 4 {
			return Capability{}, 0, errMalformedField("capability.four-octet-asn", "value must be 4 bytes")
		}
		return Capability{Code: CapFourOctetASN, ASN: binary.BigEndian.Uint32(value)}, consumed, nil
	case CapAddPath:
		if length%4 != 0 {
			return Capability{}, 0, errMalformedField("capability.addpath", "value length must be a multiple of 4")
		}
		var entries []AddPathEntry
		for i := 0; i+4 <= length; i += 4 {
			entries = append(entries, AddPathEntry{
				AFI:       AFI(binary.BigEndian.Uint16(value[i : i+2])),
				SAFI:      SAFI(value[i+2]),
				Direction: AddPathDirection(value[i+3]),
			})
		}
		return Capability{Code: CapAddPath, AddPaths: entries}, consumed, nil
	case CapGracefulRestart:
		if length < 2 {
			return Capability{}, 0, errMalformedField("capability.graceful-restart", "value too short")
		}
		word := binary.BigEndian.Uint16(value[0:2])
		cap := Capability{
			Code:         CapGracefulRestart,
			RestartFlags: uint8(word >> 12),
			RestartTime:  word & 0x0FFF,
		}
		for i := 2; i+4 <= length; i += 4 {
			cap.RestartAFs = append(cap.RestartAFs, GracefulRestartAFSAFI{
				AFI:   AFI(binary.BigEndian.Uint16(value[i : i+2])),
				SAFI:  SAFI(value[i+2]),
				Flags: value[i+3],
			})
		}
		return cap, consumed, nil
	default:
		payload := make([]byte, length)
		copy(payload, value)
		return Capability{Code: CapabilityCode(code), UnknownCode: code, UnknownPayload: payload}, consumed, nil
	}
}

// isKnown reports whether c was decoded as a recognized capability
// kind (as opposed to an opaque passthrough).
func (c Capability) isKnown() bool {
	switch c.Code {
	case CapMultiprotocol, CapRouteRefresh, CapEnhancedRouteRefresh, CapFourOctetASN, CapAddPath, CapGracefulRestart:
		return true
	default:
		return false
	}
}

// encode appends the wire TLV form of c to dst.
func (c Capability) encode(dst []byte) []byte {
	if !c.isKnown() {
		dst = append(dst, c.UnknownCode, byte(len(c.UnknownPayload)))
		return append(dst, c.UnknownPayload...)
	}

	var value []byte
	switch c.Code {
	case CapMultiprotocol:
		value = make([]byte, 4)
		binary.BigEndian.PutUint16(value[0:2], uint16(c.MPAFI))
		value[2] = 0
		value[3] = byte(c.MPSAFI)
	case CapRouteRefresh, CapEnhancedRouteRefresh:
		value = nil
	case CapFourOctetASN:
		value = make([]byte, 4)
		binary.BigEndian.PutUint32(value, c.ASN)
	case CapAddPath:
		value = make([]byte, 0, 4*len(c.AddPaths))
		for _, e := range c.AddPaths {
			var entry [4]byte
			binary.BigEndian.PutUint16(entry[0:2], uint16(e.AFI))
			entry[2] = byte(e.SAFI)
			entry[3] = byte(e.Direction)
			value = append(value, entry[:]...)
		}
	case CapGracefulRestart:
		value = make([]byte, 2, 2+4*len(c.RestartAFs))
		word := (uint16(c.RestartFlags) << 12) | (c.RestartTime & 0x0FFF)
		binary.BigEndian.PutUint16(value[0:2], word)
		for _, e := range c.RestartAFs {
			var entry [4]byte
			binary.BigEndian.PutUint16(entry[0:2], uint16(e.AFI))
			entry[2] = byte(e.SAFI)
			entry[3] = e.Flags
			value = append(value, entry[:]...)
		}
	}

	dst = append(dst, byte(c.Code), byte(len(value)))
	return append(dst, value...)
}

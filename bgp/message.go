package bgp

import "encoding/binary"

// DecodeMessageHead validates the 19-byte BGP header in buf[0:19]
// (marker must be all-ones; length must fall in [19, 4096] for a
// session that has not negotiated extended messages) and returns the
// message type and the body length (total length minus the header).
func DecodeMessageHead(buf []byte) (MessageType, int, error) {
	if len(buf) < HeaderLength {
		return 0, 0, errInsufficientBuffer(HeaderLength, len(buf))
	}
	for i := 0; i < MarkerLength; i++ {
		if buf[i] != 0xFF {
			return 0, 0, errMarkerMismatch()
		}
	}
	length := int(binary.BigEndian.Uint16(buf[16:18]))
	if length < MinStandardMessageLength {
		return 0, 0, errMalformedField("header.length", "total length below minimum header size")
	}
	if length > MaxStandardMessageLength {
		return 0, 0, errTooMuchData(MaxStandardMessageLength)
	}
	return MessageType(buf[18]), length - HeaderLength, nil
}

// PrepareMessageBuf writes the 19-byte marker+length+type header into
// buf[0:19] for a message with the given type and body length, and
// returns the total message size (header + body) the caller should
// now fill the body bytes into, starting at offset 19.
func PrepareMessageBuf(buf []byte, typ MessageType, bodyLen int) (int, error) {
	total := HeaderLength + bodyLen
	if total > MaxStandardMessageLength {
		return 0, errTooMuchData(MaxStandardMessageLength)
	}
	if len(buf) < total {
		return 0, errInsufficientBuffer(total, len(buf))
	}
	for i := 0; i < MarkerLength; i++ {
		buf[i] = 0xFF
	}
	binary.BigEndian.PutUint16(buf[16:18], uint16(total))
	buf[18] = byte(typ)
	return total, nil
}

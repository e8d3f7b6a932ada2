// Package wire implements the fixed-width primitive codec: big-endian
// integers, IPv4/IPv6 addresses, and length-prefixed prefix bytes on
// raw byte slices, with explicit bounds checking and no hidden
// allocation beyond what the caller asks for.
package wire

import (
	"encoding/binary"
	"fmt"
	"net"
)

// InsufficientBufferError reports a read or write that ran past the
// end of the supplied slice.
type InsufficientBufferError struct {
	Need int
	Have int
}

func (e *InsufficientBufferError) Error() string {
	return fmt.Sprintf("wire: insufficient buffer: need %d, have %d", e.Need, e.Have)
}

func needErr(need, have int) error {
	return &InsufficientBufferError{Need: need, Have: have}
}

// ReadUint8 reads a single byte from buf[0].
func ReadUint8(buf []byte) (uint8, error) {
	if len(buf) < 1 {
		return 0, needErr(1, len(buf))
	}
	return buf[0], nil
}

// ReadUint16 reads a big-endian uint16 from buf[0:2].
func ReadUint16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, needErr(2, len(buf))
	}
	return binary.BigEndian.Uint16(buf), nil
}

// ReadUint32 reads a big-endian uint32 from buf[0:4].
func ReadUint32(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, needErr(4, len(buf))
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadUint64 reads a big-endian uint64 from buf[0:8].
func ReadUint64(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, needErr(8, len(buf))
	}
	return binary.BigEndian.Uint64(buf), nil
}

// WriteUint8 appends a single byte and returns the extended slice.
func WriteUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// WriteUint16 appends a big-endian uint16.
func WriteUint16(dst []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

// WriteUint32 appends a big-endian uint32.
func WriteUint32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

// WriteUint64 appends a big-endian uint64.
func WriteUint64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// ReadIPv4 reads a 4-byte IPv4 address from buf[0:4].
func ReadIPv4(buf []byte) (net.IP, error) {
	if len(buf) < 4 {
		return nil, needErr(4, len(buf))
	}
	ip := make(net.IP, 4)
	copy(ip, buf[:4])
	return ip, nil
}

// ReadIPv6 reads a 16-byte IPv6 address from buf[0:16].
func ReadIPv6(buf []byte) (net.IP, error) {
	if len(buf) < 16 {
		return nil, needErr(16, len(buf))
	}
	ip := make(net.IP, 16)
	copy(ip, buf[:16])
	return ip, nil
}

// WriteIP appends the 4- or 16-byte wire form of ip, whichever it
// already is. Callers normalize with .To4()/.To16() before calling.
func WriteIP(dst []byte, ip net.IP) []byte {
	return append(dst, ip...)
}

// PrefixByteLen returns ceil(bits/8), the number of trailing address
// bytes a prefix of the given bit length occupies on the wire.
func PrefixByteLen(bits int) int {
	return (bits + 7) / 8
}

// ReadPrefixBytes reads PrefixByteLen(bits) bytes from buf and returns
// them zero-padded to addrLen (4 for IPv4, 16 for IPv6), along with
// the number of bytes consumed. Fails with InsufficientBufferError if
// buf is short, and with a plain error if bits exceeds addrLen*8.
func ReadPrefixBytes(buf []byte, bits int, addrLen int) ([]byte, int, error) {
	if bits > addrLen*8 {
		return nil, 0, fmt.Errorf("wire: prefix length %d exceeds address width %d bits", bits, addrLen*8)
	}
	n := PrefixByteLen(bits)
	if len(buf) < n {
		return nil, 0, needErr(n, len(buf))
	}
	out := make([]byte, addrLen)
	copy(out, buf[:n])
	return out, n, nil
}

// WritePrefixBytes appends the first PrefixByteLen(bits) bytes of addr
// to dst (all of addr when it is shorter than that) and returns the
// extended slice.
func WritePrefixBytes(dst []byte, addr []byte, bits int) []byte {
	n := PrefixByteLen(bits)
	if n > len(addr) {
		n = len(addr)
	}
	return append(dst, addr[:n]...)
}

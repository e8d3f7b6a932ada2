package wire

import (
	"bytes"
	"errors"
	"net"
	"testing"
)

func TestReadWriteUint8(t *testing.T) {
	dst := WriteUint8(nil, 0xAB)
	if !bytes.Equal(dst, []byte{0xAB}) {
		t.Fatalf("unexpected encoding: %x", dst)
	}
	v, err := ReadUint8(dst)
	if err != nil || v != 0xAB {
		t.Fatalf("ReadUint8: got (%d, %v)", v, err)
	}
	if _, err := ReadUint8(nil); err == nil {
		t.Fatal("expected error reading uint8 from empty buffer")
	}
}

func TestReadWriteUint16(t *testing.T) {
	dst := WriteUint16(nil, 0x1234)
	v, err := ReadUint16(dst)
	if err != nil || v != 0x1234 {
		t.Fatalf("ReadUint16: got (%#x, %v)", v, err)
	}
	if _, err := ReadUint16([]byte{0x01}); err == nil {
		t.Fatal("expected error reading uint16 from a 1-byte buffer")
	}
}

func TestReadWriteUint32(t *testing.T) {
	dst := WriteUint32(nil, 0xDEADBEEF)
	v, err := ReadUint32(dst)
	if err != nil || v != 0xDEADBEEF {
		t.Fatalf("ReadUint32: got (%#x, %v)", v, err)
	}
	if _, err := ReadUint32(dst[:3]); err == nil {
		t.Fatal("expected error reading uint32 from a 3-byte buffer")
	}
}

func TestReadWriteUint64(t *testing.T) {
	dst := WriteUint64(nil, 0x0102030405060708)
	if len(dst) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(dst))
	}
	v, err := ReadUint64(dst)
	if err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadUint64: got (%#x, %v)", v, err)
	}
	if _, err := ReadUint64(dst[:7]); err == nil {
		t.Fatal("expected error reading uint64 from a 7-byte buffer")
	}
}

func TestAppendedWritesCompose(t *testing.T) {
	var dst []byte
	dst = WriteUint8(dst, 1)
	dst = WriteUint16(dst, 2)
	dst = WriteUint32(dst, 3)
	dst = WriteUint64(dst, 4)
	if len(dst) != 1+2+4+8 {
		t.Fatalf("expected %d bytes, got %d", 1+2+4+8, len(dst))
	}

	v8, _ := ReadUint8(dst)
	v16, _ := ReadUint16(dst[1:])
	v32, _ := ReadUint32(dst[3:])
	v64, _ := ReadUint64(dst[7:])
	if v8 != 1 || v16 != 2 || v32 != 3 || v64 != 4 {
		t.Fatalf("round-trip mismatch: %d %d %d %d", v8, v16, v32, v64)
	}
}

func TestReadIPv4(t *testing.T) {
	want := net.IPv4(192, 0, 2, 1).To4()
	ip, err := ReadIPv4(want)
	if err != nil {
		t.Fatalf("ReadIPv4: %v", err)
	}
	if !ip.Equal(want) {
		t.Fatalf("expected %s, got %s", want, ip)
	}
	if _, err := ReadIPv4([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error reading IPv4 from a 3-byte buffer")
	}
}

func TestReadIPv6(t *testing.T) {
	want := net.ParseIP("2001:db8::1")
	ip, err := ReadIPv6(want.To16())
	if err != nil {
		t.Fatalf("ReadIPv6: %v", err)
	}
	if !ip.Equal(want) {
		t.Fatalf("expected %s, got %s", want, ip)
	}
	if _, err := ReadIPv6(make([]byte, 15)); err == nil {
		t.Fatal("expected error reading IPv6 from a 15-byte buffer")
	}
}

func TestWriteIP(t *testing.T) {
	v4 := net.IPv4(198, 51, 100, 7).To4()
	dst := WriteIP(nil, v4)
	if !bytes.Equal(dst, v4) {
		t.Fatalf("expected %v, got %v", []byte(v4), dst)
	}

	v6 := net.ParseIP("2001:db8::2").To16()
	dst = WriteIP(nil, v6)
	if !bytes.Equal(dst, v6) {
		t.Fatalf("expected %v, got %v", []byte(v6), dst)
	}
}

func TestPrefixByteLen(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 7: 1, 8: 1, 9: 2, 24: 3, 32: 4, 128: 16}
	for bits, want := range cases {
		if got := PrefixByteLen(bits); got != want {
			t.Fatalf("PrefixByteLen(%d) = %d, want %d", bits, got, want)
		}
	}
}

func TestReadPrefixBytes(t *testing.T) {
	buf := []byte{0xC0, 0xA8, 0x00, 0xFF} // /24 prefix 192.168.0.0, trailing byte is not ours
	padded, n, err := ReadPrefixBytes(buf, 24, 4)
	if err != nil {
		t.Fatalf("ReadPrefixBytes: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 bytes consumed, got %d", n)
	}
	want := []byte{0xC0, 0xA8, 0x00, 0x00}
	if !bytes.Equal(padded, want) {
		t.Fatalf("expected zero-padded %x, got %x", want, padded)
	}
}

func TestReadPrefixBytes_ZeroLengthIsDefaultRoute(t *testing.T) {
	padded, n, err := ReadPrefixBytes(nil, 0, 4)
	if err != nil {
		t.Fatalf("ReadPrefixBytes(0): %v", err)
	}
	if n != 0 || !bytes.Equal(padded, []byte{0, 0, 0, 0}) {
		t.Fatalf("expected zero-length default route, got n=%d padded=%x", n, padded)
	}
}

func TestReadPrefixBytes_RejectsWidthOverflow(t *testing.T) {
	if _, _, err := ReadPrefixBytes(make([]byte, 16), 129, 16); err == nil {
		t.Fatal("expected error when prefix length exceeds address width")
	}
}

func TestReadPrefixBytes_RejectsTruncatedBuffer(t *testing.T) {
	var insufficient *InsufficientBufferError
	_, _, err := ReadPrefixBytes([]byte{0x0A}, 32, 4)
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientBufferError, got %v", err)
	}
}

func TestWritePrefixBytes(t *testing.T) {
	addr := []byte{0x0A, 0x00, 0x00, 0x01}
	dst := WritePrefixBytes(nil, addr, 24)
	if !bytes.Equal(dst, []byte{0x0A, 0x00, 0x00}) {
		t.Fatalf("expected first 3 bytes of addr, got %x", dst)
	}
}

func TestWritePrefixBytes_ClampsToAddrLength(t *testing.T) {
	addr := []byte{0x0A, 0x00}
	dst := WritePrefixBytes(nil, addr, 32)
	if !bytes.Equal(dst, addr) {
		t.Fatalf("expected WritePrefixBytes to clamp to len(addr), got %x", dst)
	}
}

func TestPrefixBytesRoundTrip(t *testing.T) {
	original := net.ParseIP("2001:db8:abcd::").To16()
	encoded := WritePrefixBytes(nil, original, 48)
	if len(encoded) != 6 {
		t.Fatalf("expected 6 encoded bytes for a /48, got %d", len(encoded))
	}
	decoded, n, err := ReadPrefixBytes(encoded, 48, 16)
	if err != nil {
		t.Fatalf("ReadPrefixBytes: %v", err)
	}
	if n != 6 || !bytes.Equal(decoded[:6], original[:6]) {
		t.Fatalf("round-trip mismatch: %x vs %x", decoded[:6], original[:6])
	}
}

func TestInsufficientBufferError_Message(t *testing.T) {
	err := needErr(4, 1)
	if err.Error() == "" {
		t.Fatal("expected non-empty error message")
	}
}

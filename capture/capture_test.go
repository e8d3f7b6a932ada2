package capture

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildV2Frame(payload []byte) []byte {
	buf := make([]byte, collectorHeaderSize+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], collectorVersionV2)
	binary.BigEndian.PutUint32(buf[6:10], uint32(len(payload)))
	copy(buf[collectorHeaderSize:], payload)
	return buf
}

func buildV17Frame(payload []byte) []byte {
	hdrLen := uint16(obmpV17MinHeaderSize)
	buf := make([]byte, int(hdrLen)+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], obmpV17Magic)
	buf[4], buf[5] = 1, 7
	binary.BigEndian.PutUint16(buf[6:8], hdrLen)
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(payload)))
	copy(buf[hdrLen:], payload)
	return buf
}

func TestDecodeCollectorFrame_V2AndV17AgreeOnPayload(t *testing.T) {
	payload := []byte{0x03, 0x00, 0x00, 0x00, 0x06, 0x04, 0xDE, 0xAD}

	v2, err := DecodeCollectorFrame(buildV2Frame(payload), 0)
	if err != nil {
		t.Fatalf("v2 decode: %v", err)
	}
	v17, err := DecodeCollectorFrame(buildV17Frame(payload), 0)
	if err != nil {
		t.Fatalf("v1.7 decode: %v", err)
	}
	if !bytes.Equal(v2.Payload, payload) {
		t.Fatalf("v2 payload mismatch: got %x, want %x", v2.Payload, payload)
	}
	if !bytes.Equal(v17.Payload, payload) {
		t.Fatalf("v1.7 payload mismatch: got %x, want %x", v17.Payload, payload)
	}

	if v2.Format != CollectorFormatV2 || v2.Version != collectorVersionV2 || v2.HeaderLength != collectorHeaderSize {
		t.Fatalf("v2 metadata mismatch: %+v", v2)
	}
	if v17.Format != CollectorFormatV17 || v17.Version != 0x0107 || v17.HeaderLength != obmpV17MinHeaderSize {
		t.Fatalf("v1.7 metadata mismatch: %+v", v17)
	}
}

func TestDecodeCollectorFrame_V2RetainsCollectorHash(t *testing.T) {
	payload := []byte{0x03, 0x00, 0x00, 0x00, 0x06}
	frame := buildV2Frame(payload)
	binary.BigEndian.PutUint32(frame[2:6], 0xCAFEBABE)

	f, err := DecodeCollectorFrame(frame, 0)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.CollectorHash != 0xCAFEBABE {
		t.Fatalf("expected collector hash 0xCAFEBABE, got %#x", f.CollectorHash)
	}
}

func TestDecodeCollectorFrame_MaxPayloadBytesRejected(t *testing.T) {
	frame := buildV2Frame([]byte{1, 2, 3, 4})
	if _, err := DecodeCollectorFrame(frame, 2); err == nil {
		t.Fatal("expected error when payload exceeds maxPayloadBytes")
	}
}

func TestDecodeCollectorFrame_Truncated(t *testing.T) {
	frame := buildV2Frame([]byte{1, 2, 3, 4})
	if _, err := DecodeCollectorFrame(frame[:len(frame)-2], 0); err == nil {
		t.Fatal("expected error for truncated frame")
	}
}

func TestCompressDecompressRaw_RoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 100)
	compressed := CompressRaw(raw)
	if len(compressed) == 0 {
		t.Fatal("expected non-empty compressed output")
	}
	decompressed, err := DecompressRaw(compressed)
	if err != nil {
		t.Fatalf("DecompressRaw: %v", err)
	}
	if !bytes.Equal(decompressed, raw) {
		t.Fatal("round-trip mismatch")
	}
}

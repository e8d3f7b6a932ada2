package bmp

import (
	"encoding/binary"
	"fmt"
)

// InfoTLV is one Information TLV as carried by Initiation,
// Termination, and the tail of PeerUp (RFC 7854 §4.4). Known types
// (string, sysDescr, sysName) are not further interpreted here beyond
// their raw value; unknown types are preserved identically.
type InfoTLV struct {
	Type  uint16
	Value []byte
}

// DecodeInfoTLVs walks a block of {type(2), length(2), value(length)}
// entries to the end of buf.
func DecodeInfoTLVs(buf []byte) ([]InfoTLV, error) {
	var out []InfoTLV
	offset := 0
	for offset < len(buf) {
		if offset+4 > len(buf) {
			return out, fmt.Errorf("bmp: information TLV header truncated at offset %d", offset)
		}
		typ := binary.BigEndian.Uint16(buf[offset : offset+2])
		length := int(binary.BigEndian.Uint16(buf[offset+2 : offset+4]))
		offset += 4
		if offset+length > len(buf) {
			return out, fmt.Errorf("bmp: information TLV value truncated at offset %d", offset)
		}
		out = append(out, InfoTLV{Type: typ, Value: append([]byte(nil), buf[offset:offset+length]...)})
		offset += length
	}
	return out, nil
}

// EncodeInfoTLVs appends the wire form of every TLV in tlvs to dst.
func EncodeInfoTLVs(dst []byte, tlvs []InfoTLV) []byte {
	for _, t := range tlvs {
		dst = binary.BigEndian.AppendUint16(dst, t.Type)
		dst = binary.BigEndian.AppendUint16(dst, uint16(len(t.Value)))
		dst = append(dst, t.Value...)
	}
	return dst
}

// InfoTLVSet is the decoded body of an Initiation or Termination
// message: both are simply a sequence of Information TLVs.
type InfoTLVSet struct {
	TLVs []InfoTLV
}

// DecodeInitiation parses an Initiation message body.
func DecodeInitiation(body []byte) (*InfoTLVSet, int, error) {
	tlvs, err := DecodeInfoTLVs(body)
	if err != nil {
		return nil, 0, err
	}
	return &InfoTLVSet{TLVs: tlvs}, len(body), nil
}

// DecodeTermination parses a Termination message body.
func DecodeTermination(body []byte) (*InfoTLVSet, int, error) {
	tlvs, err := DecodeInfoTLVs(body)
	if err != nil {
		return nil, 0, err
	}
	return &InfoTLVSet{TLVs: tlvs}, len(body), nil
}

// EncodeTo appends the wire form of the TLV set to dst.
func (s *InfoTLVSet) EncodeTo(dst []byte) []byte {
	return EncodeInfoTLVs(dst, s.TLVs)
}

// PeerDownNotification is the decoded PeerDown body (RFC 7854 §4.9).
// The reason byte selects which of the four optional data shapes
// follows; the codec preserves Data raw rather than dispatching on
// Reason, since spec.md does not enumerate per-reason payloads.
type PeerDownNotification struct {
	Reason uint8
	Data   []byte
}

// DecodePeerDown parses a PeerDown body.
func DecodePeerDown(body []byte) (*PeerDownNotification, int, error) {
	if len(body) < 1 {
		return nil, 0, fmt.Errorf("bmp: peer down body empty")
	}
	return &PeerDownNotification{
		Reason: body[0],
		Data:   append([]byte(nil), body[1:]...),
	}, len(body), nil
}

// EncodeTo appends the wire form of the PeerDown body to dst.
func (p *PeerDownNotification) EncodeTo(dst []byte) []byte {
	dst = append(dst, p.Reason)
	return append(dst, p.Data...)
}

package addr

import (
	"encoding/binary"
	"fmt"
	"net"
)

// RDType identifies the encoding of a route distinguisher's 6-byte
// value field (RFC 4364 §4.2).
type RDType uint16

const (
	RDTypeAS2 RDType = 0 // 2-octet ASN : 4-octet number
	RDTypeIP  RDType = 1 // IPv4 address : 2-octet number
	RDTypeAS4 RDType = 2 // 4-octet ASN : 2-octet number
)

// RouteDistinguisher is the 8-octet value VPN NLRI prepends to make
// prefixes unique across VRFs.
type RouteDistinguisher struct {
	Type  RDType
	Value [6]byte
}

// NewRDAS2 builds a type-0 RD from a 2-octet ASN and a 4-octet number.
func NewRDAS2(asn uint16, number uint32) RouteDistinguisher {
	var v [6]byte
	binary.BigEndian.PutUint16(v[0:2], asn)
	binary.BigEndian.PutUint32(v[2:6], number)
	return RouteDistinguisher{Type: RDTypeAS2, Value: v}
}

// NewRDIP builds a type-1 RD from an IPv4 address and a 2-octet number.
func NewRDIP(ip net.IP, number uint16) RouteDistinguisher {
	var v [6]byte
	ip4 := ip.To4()
	copy(v[0:4], ip4)
	binary.BigEndian.PutUint16(v[4:6], number)
	return RouteDistinguisher{Type: RDTypeIP, Value: v}
}

// NewRDAS4 builds a type-2 RD from a 4-octet ASN and a 2-octet number.
func NewRDAS4(asn uint32, number uint16) RouteDistinguisher {
	var v [6]byte
	binary.BigEndian.PutUint32(v[0:4], asn)
	binary.BigEndian.PutUint16(v[4:6], number)
	return RouteDistinguisher{Type: RDTypeAS4, Value: v}
}

// DecodeRD parses an 8-octet route distinguisher from buf[0:8].
func DecodeRD(buf []byte) (RouteDistinguisher, error) {
	if len(buf) < 8 {
		return RouteDistinguisher{}, fmt.Errorf("addr: route distinguisher truncated (have %d, need 8)", len(buf))
	}
	rd := RouteDistinguisher{Type: RDType(binary.BigEndian.Uint16(buf[0:2]))}
	copy(rd.Value[:], buf[2:8])
	return rd, nil
}

// Encode appends the 8-octet wire form of rd to dst.
func (rd RouteDistinguisher) Encode(dst []byte) []byte {
	var typ [2]byte
	binary.BigEndian.PutUint16(typ[:], uint16(rd.Type))
	dst = append(dst, typ[:]...)
	return append(dst, rd.Value[:]...)
}

func (rd RouteDistinguisher) String() string {
	switch rd.Type {
	case RDTypeAS2:
		asn := binary.BigEndian.Uint16(rd.Value[0:2])
		num := binary.BigEndian.Uint32(rd.Value[2:6])
		return fmt.Sprintf("%d:%d", asn, num)
	case RDTypeIP:
		ip := net.IP(rd.Value[0:4])
		num := binary.BigEndian.Uint16(rd.Value[4:6])
		return fmt.Sprintf("%s:%d", ip.String(), num)
	case RDTypeAS4:
		asn := binary.BigEndian.Uint32(rd.Value[0:4])
		num := binary.BigEndian.Uint16(rd.Value[4:6])
		return fmt.Sprintf("%d:%d", asn, num)
	default:
		return fmt.Sprintf("unknown-rd-type(%d):%x", rd.Type, rd.Value)
	}
}

// Equal reports structural equality.
func (rd RouteDistinguisher) Equal(o RouteDistinguisher) bool {
	return rd.Type == o.Type && rd.Value == o.Value
}

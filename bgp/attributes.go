package bgp

import (
	"encoding/binary"
	"net"
)

// Path attribute flag bits (RFC 4271 §4.3).
const (
	AttrFlagOptional       uint8 = 0x80
	AttrFlagTransitive     uint8 = 0x40
	AttrFlagPartial        uint8 = 0x20
	AttrFlagExtendedLength uint8 = 0x10
)

// AttrType identifies a path attribute's type code.
type AttrType uint8

const (
	AttrOrigin              AttrType = 1
	AttrASPath              AttrType = 2
	AttrNextHop             AttrType = 3
	AttrMultiExitDisc       AttrType = 4
	AttrLocalPref           AttrType = 5
	AttrAtomicAggregate     AttrType = 6
	AttrAggregator          AttrType = 7
	AttrCommunities         AttrType = 8
	AttrOriginatorID        AttrType = 9
	AttrClusterList         AttrType = 10
	AttrMPReachNLRI         AttrType = 14
	AttrMPUnreachNLRI       AttrType = 15
	AttrExtendedCommunities AttrType = 16
	AttrPMSITunnel          AttrType = 22
	AttrAttrSet             AttrType = 128
)

// OriginCode is the ORIGIN attribute's value (RFC 4271 §4.3).
type OriginCode uint8

const (
	OriginIGP        OriginCode = 0
	OriginEGP        OriginCode = 1
	OriginIncomplete OriginCode = 2
)

// ASPathSegmentType discriminates the four AS_PATH segment kinds
// (RFC 4271 §4.3, RFC 5065 for the confederation variants).
type ASPathSegmentType uint8

const (
	SegmentSet             ASPathSegmentType = 1
	SegmentSequence        ASPathSegmentType = 2
	SegmentConfedSequence  ASPathSegmentType = 3
	SegmentConfedSet       ASPathSegmentType = 4
)

// ASPathSegment is one segment of an AS_PATH attribute.
type ASPathSegment struct {
	Type ASPathSegmentType
	ASNs []uint32
}

// AggregatorValue is the AGGREGATOR attribute's value.
type AggregatorValue struct {
	ASN uint32
	IP  net.IP
}

// MPReachNLRI is the MP_REACH_NLRI attribute's value (RFC 4760 §3).
// NextHop is kept as raw bytes: its shape varies by AFI/SAFI (plain
// IPv4/IPv6, IPv6 global+link-local, or an 8-byte zero RD prefix for
// VPN next hops) and the codec does not interpret it further.
type MPReachNLRI struct {
	AFI     AFI
	SAFI    SAFI
	NextHop []byte
	NLRI    []NLRI
}

// MPUnreachNLRI is the MP_UNREACH_NLRI attribute's value.
type MPUnreachNLRI struct {
	AFI  AFI
	SAFI SAFI
	NLRI []NLRI
}

// PMSITunnel is the PMSI_TUNNEL attribute's value (RFC 6514 §5).
type PMSITunnel struct {
	Flags      uint8
	TunnelType uint8
	Label      [3]byte
	TunnelID   []byte
}

// AttrSetValue is the ATTR_SET attribute's value (RFC 6368): a set of
// attributes as originated by OriginatingAS, carried opaquely through
// intervening ASes.
type AttrSetValue struct {
	OriginatingAS uint32
	Attributes    []Attribute
}

// Attribute is a tagged variant over the path attribute kinds spec.md
// §3 names. Only the fields relevant to Type are populated. Unknown
// carries the raw value for a type code the codec does not recognize;
// it is never populated for a known type, whose malformed wire form
// is a decode error instead.
type Attribute struct {
	Flags uint8
	Type  AttrType

	Origin OriginCode
	ASPath []ASPathSegment

	NextHop net.IP

	MultiExitDisc uint32
	LocalPref     uint32

	Aggregator AggregatorValue

	Communities []uint32

	OriginatorID net.IP
	ClusterList  []net.IP

	MPReach   *MPReachNLRI
	MPUnreach *MPUnreachNLRI

	ExtendedCommunities [][8]byte

	PMSITunnel *PMSITunnel
	AttrSet    *AttrSetValue

	Unknown []byte
}

func (a AttrType) isKnown() bool {
	switch a {
	case AttrOrigin, AttrASPath, AttrNextHop, AttrMultiExitDisc, AttrLocalPref,
		AttrAtomicAggregate, AttrAggregator, AttrCommunities, AttrOriginatorID,
		AttrClusterList, AttrMPReachNLRI, AttrMPUnreachNLRI, AttrExtendedCommunities,
		AttrPMSITunnel, AttrAttrSet:
		return true
	default:
		return false
	}
}

// DecodeAttributes parses a path-attribute block (the bytes between
// the UPDATE message's total-path-attribute-length field and the
// start of NLRI). sp supplies the negotiated ASN width and AddPath
// directionality used to parse AS_PATH/AGGREGATOR and the NLRI nested
// inside MP_REACH_NLRI/MP_UNREACH_NLRI. adaptiveAggregator selects the
// BMP PeerUp-captured heuristic for AGGREGATOR width (spec §4.4): the
// width is inferred from the attribute's own length instead of from
// sp.
func DecodeAttributes(buf []byte, sp *SessionParameters, adaptiveAggregator bool) ([]Attribute, error) {
	var out []Attribute
	offset := 0
	for offset < len(buf) {
		if offset+2 > len(buf) {
			return out, errInsufficientBuffer(offset+2, len(buf))
		}
		flags := buf[offset]
		typ := buf[offset+1]
		offset += 2

		var length int
		if flags&AttrFlagExtendedLength != 0 {
			if offset+2 > len(buf) {
				return out, errInsufficientBuffer(offset+2, len(buf))
			}
			length = int(binary.BigEndian.Uint16(buf[offset : offset+2]))
			offset += 2
		} else {
			if offset+1 > len(buf) {
				return out, errInsufficientBuffer(offset+1, len(buf))
			}
			length = int(buf[offset])
			offset++
		}

		if offset+length > len(buf) {
			return out, errInsufficientBuffer(offset+length, len(buf))
		}
		value := buf[offset : offset+length]
		offset += length

		attr, err := decodeAttributeValue(flags, AttrType(typ), value, sp, adaptiveAggregator)
		if err != nil {
			return out, err
		}
		out = append(out, attr)
	}
	return out, nil
}

func decodeAttributeValue(flags uint8, typ AttrType, value []byte, sp *SessionParameters, adaptiveAggregator bool) (Attribute, error) {
	a := Attribute{Flags: flags, Type: typ}

	if !typ.isKnown() {
		a.Unknown = append([]byte(nil), value...)
		if sp != nil {
			sp.Hooks.UnknownAttribute(uint8(typ))
		}
		return a, nil
	}

	switch typ {
	case AttrOrigin:
		if len(value) != 1 {
			return Attribute{}, errMalformedField("attribute.origin", "value must be 1 byte")
		}
		a.Origin = OriginCode(value[0])

	case AttrASPath:
		segs, err := decodeASPath(value, asnWidth(sp))
		if err != nil {
			return Attribute{}, err
		}
		a.ASPath = segs

	case AttrNextHop:
		if len(value) != 4 {
			return Attribute{}, errMalformedField("attribute.next-hop", "value must be 4 bytes")
		}
		a.NextHop = net.IP(append([]byte(nil), value...))

	case AttrMultiExitDisc:
		if len(value) != 4 {
			return Attribute{}, errMalformedField("attribute.med", "value must be 4 bytes")
		}
		a.MultiExitDisc = binary.BigEndian.Uint32(value)

	case AttrLocalPref:
		if len(value) != 4 {
			return Attribute{}, errMalformedField("attribute.local-pref", "value must be 4 bytes")
		}
		a.LocalPref = binary.BigEndian.Uint32(value)

	case AttrAtomicAggregate:
		if len(value) != 0 {
			return Attribute{}, errMalformedField("attribute.atomic-aggregate", "value must be empty")
		}

	case AttrAggregator:
		agg, err := decodeAggregator(value, sp, adaptiveAggregator)
		if err != nil {
			return Attribute{}, err
		}
		a.Aggregator = agg

	case AttrCommunities:
		if len(value)%4 != 0 {
			return Attribute{}, errMalformedField("attribute.communities", "value length must be a multiple of 4")
		}
		for i := 0; i+4 <= len(value); i += 4 {
			a.Communities = append(a.Communities, binary.BigEndian.Uint32(value[i:i+4]))
		}

	case AttrOriginatorID:
		if len(value) != 4 {
			return Attribute{}, errMalformedField("attribute.originator-id", "value must be 4 bytes")
		}
		a.OriginatorID = net.IP(append([]byte(nil), value...))

	case AttrClusterList:
		if len(value)%4 != 0 {
			return Attribute{}, errMalformedField("attribute.cluster-list", "value length must be a multiple of 4")
		}
		for i := 0; i+4 <= len(value); i += 4 {
			a.ClusterList = append(a.ClusterList, net.IP(append([]byte(nil), value[i:i+4]...)))
		}

	case AttrMPReachNLRI:
		mp, err := decodeMPReach(value, sp)
		if err != nil {
			return Attribute{}, err
		}
		a.MPReach = mp

	case AttrMPUnreachNLRI:
		mp, err := decodeMPUnreach(value, sp)
		if err != nil {
			return Attribute{}, err
		}
		a.MPUnreach = mp

	case AttrExtendedCommunities:
		if len(value)%8 != 0 {
			return Attribute{}, errMalformedField("attribute.extended-communities", "value length must be a multiple of 8")
		}
		for i := 0; i+8 <= len(value); i += 8 {
			var ec [8]byte
			copy(ec[:], value[i:i+8])
			a.ExtendedCommunities = append(a.ExtendedCommunities, ec)
		}

	case AttrPMSITunnel:
		if len(value) < 5 {
			return Attribute{}, errMalformedField("attribute.pmsi-tunnel", "value too short")
		}
		p := &PMSITunnel{Flags: value[0], TunnelType: value[1]}
		copy(p.Label[:], value[2:5])
		p.TunnelID = append([]byte(nil), value[5:]...)
		a.PMSITunnel = p

	case AttrAttrSet:
		if len(value) < 4 {
			return Attribute{}, errMalformedField("attribute.attr-set", "value too short")
		}
		inner, err := DecodeAttributes(value[4:], sp, adaptiveAggregator)
		if err != nil {
			return Attribute{}, err
		}
		a.AttrSet = &AttrSetValue{
			OriginatingAS: binary.BigEndian.Uint32(value[0:4]),
			Attributes:    inner,
		}
	}

	return a, nil
}

func asnWidth(sp *SessionParameters) int {
	if sp != nil && sp.FourOctetASNEnabled() {
		return 4
	}
	return 2
}

func decodeASPath(value []byte, width int) ([]ASPathSegment, error) {
	var segs []ASPathSegment
	offset := 0
	for offset < len(value) {
		if offset+2 > len(value) {
			return nil, errMalformedField("attribute.as-path", "segment header truncated")
		}
		segType := value[offset]
		count := int(value[offset+1])
		offset += 2

		need := count * width
		if offset+need > len(value) {
			return nil, errMalformedField("attribute.as-path", "segment length inconsistent with negotiated ASN width")
		}
		seg := ASPathSegment{Type: ASPathSegmentType(segType)}
		for i := 0; i < count; i++ {
			var asn uint32
			if width == 4 {
				asn = binary.BigEndian.Uint32(value[offset : offset+4])
			} else {
				asn = uint32(binary.BigEndian.Uint16(value[offset : offset+2]))
			}
			seg.ASNs = append(seg.ASNs, asn)
			offset += width
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func decodeAggregator(value []byte, sp *SessionParameters, adaptive bool) (AggregatorValue, error) {
	width := asnWidth(sp)
	if adaptive {
		switch len(value) {
		case 6:
			width = 2
		case 8:
			width = 4
		default:
			return AggregatorValue{}, errMalformedField("attribute.aggregator", "value must be 6 or 8 bytes when width is inferred")
		}
	}
	if len(value) != width+4 {
		return AggregatorValue{}, errMalformedField("attribute.aggregator", "value length inconsistent with negotiated ASN width")
	}
	var asn uint32
	if width == 4 {
		asn = binary.BigEndian.Uint32(value[0:4])
	} else {
		asn = uint32(binary.BigEndian.Uint16(value[0:2]))
	}
	ip := net.IP(append([]byte(nil), value[width:width+4]...))
	return AggregatorValue{ASN: asn, IP: ip}, nil
}

func decodeMPReach(value []byte, sp *SessionParameters) (*MPReachNLRI, error) {
	if len(value) < 4 {
		return nil, errMalformedField("attribute.mp-reach", "value too short")
	}
	afi := AFI(binary.BigEndian.Uint16(value[0:2]))
	safi := SAFI(value[2])
	nhLen := int(value[3])
	offset := 4
	if offset+nhLen+1 > len(value) {
		return nil, errMalformedField("attribute.mp-reach", "next-hop field truncated")
	}
	nextHop := append([]byte(nil), value[offset:offset+nhLen]...)
	offset += nhLen

	// reserved byte
	offset++

	mode := NLRIMode{AddPath: addPathForReceive(sp, afi, safi)}
	list, err := DecodeNLRIList(afi, safi, value[offset:], mode)
	if err != nil {
		return nil, err
	}
	return &MPReachNLRI{AFI: afi, SAFI: safi, NextHop: nextHop, NLRI: list}, nil
}

func decodeMPUnreach(value []byte, sp *SessionParameters) (*MPUnreachNLRI, error) {
	if len(value) < 3 {
		return nil, errMalformedField("attribute.mp-unreach", "value too short")
	}
	afi := AFI(binary.BigEndian.Uint16(value[0:2]))
	safi := SAFI(value[2])

	mode := NLRIMode{AddPath: addPathForReceive(sp, afi, safi), Withdraw: true}
	list, err := DecodeNLRIList(afi, safi, value[3:], mode)
	if err != nil {
		return nil, err
	}
	return &MPUnreachNLRI{AFI: afi, SAFI: safi, NLRI: list}, nil
}

func addPathForReceive(sp *SessionParameters, afi AFI, safi SAFI) bool {
	if sp == nil {
		return false
	}
	return sp.AddPathEnabled(afi, safi, AddPathReceive)
}

// EncodeAttributes appends the wire form of every attribute in attrs
// to dst, using extended-length encoding whenever a value is 256
// bytes or longer (spec §4.4).
func EncodeAttributes(dst []byte, attrs []Attribute, sp *SessionParameters) ([]byte, error) {
	for _, a := range attrs {
		value, err := encodeAttributeValue(a, sp)
		if err != nil {
			return nil, err
		}
		flags := a.Flags &^ AttrFlagExtendedLength
		if len(value) >= 256 {
			flags |= AttrFlagExtendedLength
		}
		dst = append(dst, flags, byte(a.Type))
		if flags&AttrFlagExtendedLength != 0 {
			if len(value) > 0xFFFF {
				return nil, errTooMuchData(0xFFFF)
			}
			dst = binary.BigEndian.AppendUint16(dst, uint16(len(value)))
		} else {
			dst = append(dst, byte(len(value)))
		}
		dst = append(dst, value...)
	}
	return dst, nil
}

func encodeAttributeValue(a Attribute, sp *SessionParameters) ([]byte, error) {
	if !a.Type.isKnown() {
		return a.Unknown, nil
	}

	switch a.Type {
	case AttrOrigin:
		return []byte{byte(a.Origin)}, nil

	case AttrASPath:
		return encodeASPath(a.ASPath, asnWidth(sp)), nil

	case AttrNextHop:
		ip := a.NextHop.To4()
		if ip == nil {
			ip = make(net.IP, 4)
		}
		return append([]byte(nil), ip...), nil

	case AttrMultiExitDisc:
		return binary.BigEndian.AppendUint32(nil, a.MultiExitDisc), nil

	case AttrLocalPref:
		return binary.BigEndian.AppendUint32(nil, a.LocalPref), nil

	case AttrAtomicAggregate:
		return nil, nil

	case AttrAggregator:
		return encodeAggregator(a.Aggregator, asnWidth(sp)), nil

	case AttrCommunities:
		var out []byte
		for _, c := range a.Communities {
			out = binary.BigEndian.AppendUint32(out, c)
		}
		return out, nil

	case AttrOriginatorID:
		ip := a.OriginatorID.To4()
		if ip == nil {
			ip = make(net.IP, 4)
		}
		return append([]byte(nil), ip...), nil

	case AttrClusterList:
		var out []byte
		for _, ip := range a.ClusterList {
			ip4 := ip.To4()
			if ip4 == nil {
				ip4 = make(net.IP, 4)
			}
			out = append(out, ip4...)
		}
		return out, nil

	case AttrMPReachNLRI:
		return encodeMPReach(a.MPReach, sp)

	case AttrMPUnreachNLRI:
		return encodeMPUnreach(a.MPUnreach, sp)

	case AttrExtendedCommunities:
		var out []byte
		for _, ec := range a.ExtendedCommunities {
			out = append(out, ec[:]...)
		}
		return out, nil

	case AttrPMSITunnel:
		if a.PMSITunnel == nil {
			return nil, errMalformedField("attribute.pmsi-tunnel", "missing value")
		}
		out := []byte{a.PMSITunnel.Flags, a.PMSITunnel.TunnelType}
		out = append(out, a.PMSITunnel.Label[:]...)
		return append(out, a.PMSITunnel.TunnelID...), nil

	case AttrAttrSet:
		if a.AttrSet == nil {
			return nil, errMalformedField("attribute.attr-set", "missing value")
		}
		out := binary.BigEndian.AppendUint32(nil, a.AttrSet.OriginatingAS)
		return EncodeAttributes(out, a.AttrSet.Attributes, sp)
	}

	return nil, nil
}

func encodeASPath(segs []ASPathSegment, width int) []byte {
	var out []byte
	for _, seg := range segs {
		out = append(out, byte(seg.Type), byte(len(seg.ASNs)))
		for _, asn := range seg.ASNs {
			if width == 4 {
				out = binary.BigEndian.AppendUint32(out, asn)
			} else {
				out = binary.BigEndian.AppendUint16(out, uint16(asn))
			}
		}
	}
	return out
}

func encodeAggregator(agg AggregatorValue, width int) []byte {
	var out []byte
	if width == 4 {
		out = binary.BigEndian.AppendUint32(out, agg.ASN)
	} else {
		out = binary.BigEndian.AppendUint16(out, uint16(agg.ASN))
	}
	ip := agg.IP.To4()
	if ip == nil {
		ip = make(net.IP, 4)
	}
	return append(out, ip...)
}

func encodeMPReach(mp *MPReachNLRI, sp *SessionParameters) ([]byte, error) {
	if mp == nil {
		return nil, errMalformedField("attribute.mp-reach", "missing value")
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(mp.AFI))
	out = append(out, byte(mp.SAFI), byte(len(mp.NextHop)))
	out = append(out, mp.NextHop...)
	out = append(out, 0) // reserved

	mode := NLRIMode{AddPath: addPathForReceive(sp, mp.AFI, mp.SAFI)}
	var err error
	out, err = EncodeNLRIList(out, mp.AFI, mp.SAFI, mp.NLRI, mode)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func encodeMPUnreach(mp *MPUnreachNLRI, sp *SessionParameters) ([]byte, error) {
	if mp == nil {
		return nil, errMalformedField("attribute.mp-unreach", "missing value")
	}
	out := binary.BigEndian.AppendUint16(nil, uint16(mp.AFI))
	out = append(out, byte(mp.SAFI))

	mode := NLRIMode{AddPath: addPathForReceive(sp, mp.AFI, mp.SAFI), Withdraw: true}
	var err error
	out, err = EncodeNLRIList(out, mp.AFI, mp.SAFI, mp.NLRI, mode)
	if err != nil {
		return nil, err
	}
	return out, nil
}

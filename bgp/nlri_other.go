package bgp

import (
	"github.com/route-beacon/bgpcodec/addr"
	"github.com/route-beacon/bgpcodec/internal/wire"
)

// VPLSRoute is the decoded form of a VPLS NLRI (RFC 4761 §3.2.3): a
// fixed-width VPN edge descriptor, never prefix-length self-delimited.
type VPLSRoute struct {
	RD             addr.RouteDistinguisher
	VEID           uint16
	VEBlockOffset  uint16
	VEBlockSize    uint16
	Label          addr.Label
}

const vplsBodyLen = 8 + 2 + 2 + 2 + 3

func vplsCodec() nlriCodec {
	decode := func(buf []byte, mode NLRIMode) (NLRI, int, error) {
		offset := 0
		n := NLRI{AFI: AFIL2VPN, SAFI: SAFIVPLS}

		if mode.AddPath {
			v, err := wire.ReadUint32(buf[offset:])
			if err != nil {
				return NLRI{}, 0, errInsufficientBuffer(offset+4, len(buf))
			}
			n.HasPathID = true
			n.PathID = v
			offset += 4
		}

		if offset+2 > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+2, len(buf))
		}
		length, err := wire.ReadUint16(buf[offset:])
		if err != nil {
			return NLRI{}, 0, err
		}
		offset += 2

		if int(length) != vplsBodyLen {
			return NLRI{}, 0, errMalformedField("vpls.length", "must describe the fixed 17-byte body")
		}
		if offset+vplsBodyLen > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+vplsBodyLen, len(buf))
		}
		body := buf[offset : offset+vplsBodyLen]
		offset += vplsBodyLen

		rd, err := addr.DecodeRD(body[0:8])
		if err != nil {
			return NLRI{}, 0, err
		}
		veid, _ := wire.ReadUint16(body[8:10])
		veBlockOffset, _ := wire.ReadUint16(body[10:12])
		veBlockSize, _ := wire.ReadUint16(body[12:14])

		route := &VPLSRoute{RD: rd, VEID: veid, VEBlockOffset: veBlockOffset, VEBlockSize: veBlockSize}
		copy(route.Label[:], body[14:17])
		n.VPLS = route
		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if n.VPLS == nil {
			return nil, errMalformedField("nlri.vpls", "missing VPLS route")
		}
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		dst = wire.WriteUint16(dst, uint16(vplsBodyLen))
		dst = n.VPLS.RD.Encode(dst)
		dst = wire.WriteUint16(dst, n.VPLS.VEID)
		dst = wire.WriteUint16(dst, n.VPLS.VEBlockOffset)
		dst = wire.WriteUint16(dst, n.VPLS.VEBlockSize)
		return append(dst, n.VPLS.Label[:]...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

// mdtCodec implements RFC 6037's MDT SAFI: a prefix-length-framed
// fixed body (RD + source IPv4 + group IPv4), never variably shaped.
func mdtCodec(afi AFI) nlriCodec {
	const bodyLen = 8 + 4 + 4

	decode := func(buf []byte, mode NLRIMode) (NLRI, int, error) {
		offset := 0
		n := NLRI{AFI: afi, SAFI: SAFIMDT}

		if mode.AddPath {
			v, err := wire.ReadUint32(buf[offset:])
			if err != nil {
				return NLRI{}, 0, errInsufficientBuffer(offset+4, len(buf))
			}
			n.HasPathID = true
			n.PathID = v
			offset += 4
		}

		if offset >= len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+1, len(buf))
		}
		bitsLen := int(buf[offset])
		offset++
		if bitsLen != bodyLen*8 {
			return NLRI{}, 0, errMalformedField("mdt.length", "must describe the fixed RD+source+group body")
		}
		if offset+bodyLen > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+bodyLen, len(buf))
		}
		body := buf[offset : offset+bodyLen]
		offset += bodyLen

		rd, err := addr.DecodeRD(body[0:8])
		if err != nil {
			return NLRI{}, 0, err
		}
		n.RD = &rd
		n.MDTSource = addr.NewBgpNet(addr.FamilyIPv4, body[8:12], 32)
		n.MDTGroup = addr.NewBgpNet(addr.FamilyIPv4, body[12:16], 32)
		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if n.RD == nil {
			return nil, errMalformedField("nlri.mdt", "missing RD")
		}
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		dst = append(dst, byte(bodyLen*8))
		dst = n.RD.Encode(dst)
		dst = append(dst, n.MDTSource.Addr[:4]...)
		return append(dst, n.MDTGroup.Addr[:4]...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

// opaqueRouteTypeCodec implements the MVPN SAFI (RFC 6514 §4) as a
// self-delimited route-type+length passthrough: the wire framing is
// fully decoded, but the per-route-type payload is preserved opaque
// rather than interpreted field by field (spec §4.4 "MVPN: framing
// only").
func opaqueRouteTypeCodec(afi AFI, safi SAFI) nlriCodec {
	decode := func(buf []byte, mode NLRIMode) (NLRI, int, error) {
		offset := 0
		n := NLRI{AFI: afi, SAFI: safi}

		if mode.AddPath {
			v, err := wire.ReadUint32(buf[offset:])
			if err != nil {
				return NLRI{}, 0, errInsufficientBuffer(offset+4, len(buf))
			}
			n.HasPathID = true
			n.PathID = v
			offset += 4
		}

		if offset+2 > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+2, len(buf))
		}
		routeType := buf[offset]
		length := int(buf[offset+1])
		offset += 2
		if offset+length > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+length, len(buf))
		}
		n.OpaqueType = routeType
		n.Opaque = append([]byte(nil), buf[offset:offset+length]...)
		offset += length
		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		if len(n.Opaque) > 255 {
			return nil, errTooMuchData(255)
		}
		dst = append(dst, n.OpaqueType, byte(len(n.Opaque)))
		return append(dst, n.Opaque...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

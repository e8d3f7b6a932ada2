package bgp

import (
	"github.com/route-beacon/bgpcodec/addr"
	"github.com/route-beacon/bgpcodec/internal/wire"
)

// EVPNRouteType discriminates the five EVPN NLRI shapes (RFC 7432 §7).
type EVPNRouteType uint8

const (
	EVPNEthernetAD          EVPNRouteType = 1
	EVPNMACIPAdvertisement  EVPNRouteType = 2
	EVPNInclusiveMulticast  EVPNRouteType = 3
	EVPNEthernetSegment     EVPNRouteType = 4
	EVPNIPPrefix            EVPNRouteType = 5
)

// ESI is a 10-octet Ethernet Segment Identifier.
type ESI [10]byte

// EVPNRoute is the decoded form of one EVPN NLRI. Only the fields the
// route type defines are populated.
type EVPNRoute struct {
	RouteType EVPNRouteType

	RD            addr.RouteDistinguisher
	ESI           ESI
	EthernetTagID uint32

	HasMAC bool
	MAC    addr.MAC

	IP addr.BgpNet // zero-length prefix when absent

	GatewayIP addr.BgpNet

	Label  addr.Label
	Label2 addr.Label
	HasLabel2 bool

	// Unknown carries the raw payload for a route type the codec
	// does not recognize, preserved for round-trip (spec §4.7,
	// invariant 4).
	Unknown []byte
}

func evpnCodec() nlriCodec {
	decode := func(buf []byte, mode NLRIMode) (NLRI, int, error) {
		offset := 0
		n := NLRI{AFI: AFIL2VPN, SAFI: SAFIEVPN}

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
		payload := buf[offset : offset+length]
		offset += length

		route, err := decodeEVPNRoute(EVPNRouteType(routeType), payload)
		if err != nil {
			return NLRI{}, 0, err
		}
		n.EVPN = route
		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if n.EVPN == nil {
			return nil, errMalformedField("nlri.evpn", "missing EVPN route")
		}
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		payload := encodeEVPNRoute(n.EVPN)
		dst = append(dst, byte(n.EVPN.RouteType), byte(len(payload)))
		return append(dst, payload...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

func decodeEVPNRoute(rt EVPNRouteType, data []byte) (*EVPNRoute, error) {
	switch rt {
	case EVPNEthernetAD:
		if len(data) < 8+10+4+3 {
			return nil, errMalformedField("evpn.ethernet-ad", "truncated")
		}
		rd, err := addr.DecodeRD(data[0:8])
		if err != nil {
			return nil, err
		}
		r := &EVPNRoute{RouteType: rt, RD: rd}
		copy(r.ESI[:], data[8:18])
		r.EthernetTagID = beUint32(data[18:22])
		copy(r.Label[:], data[22:25])
		return r, nil

	case EVPNMACIPAdvertisement:
		if len(data) < 8+10+4+1+6+1 {
			return nil, errMalformedField("evpn.mac-ip", "truncated")
		}
		rd, err := addr.DecodeRD(data[0:8])
		if err != nil {
			return nil, err
		}
		r := &EVPNRoute{RouteType: rt, RD: rd}
		copy(r.ESI[:], data[8:18])
		r.EthernetTagID = beUint32(data[18:22])
		macLen := data[22]
		if macLen != 48 || len(data) < 23+6+1 {
			return nil, errMalformedField("evpn.mac-ip", "unsupported MAC address length")
		}
		r.HasMAC = true
		copy(r.MAC[:], data[23:29])
		offset := 29
		ipLen := int(data[offset])
		offset++
		family := addr.FamilyIPv4
		ipBytes := 0
		switch ipLen {
		case 0:
		case 32:
			ipBytes = 4
		case 128:
			family = addr.FamilyIPv6
			ipBytes = 16
		default:
			return nil, errMalformedField("evpn.mac-ip", "unsupported IP address length")
		}
		if len(data) < offset+ipBytes {
			return nil, errMalformedField("evpn.mac-ip", "truncated IP field")
		}
		if ipBytes > 0 {
			r.IP = addr.NewBgpNet(family, data[offset:offset+ipBytes], ipLen)
		}
		offset += ipBytes
		if offset+3 > len(data) {
			return nil, errMalformedField("evpn.mac-ip", "missing MPLS label 1")
		}
		copy(r.Label[:], data[offset:offset+3])
		offset += 3
		if offset+3 <= len(data) {
			copy(r.Label2[:], data[offset:offset+3])
			r.HasLabel2 = true
			offset += 3
		}
		return r, nil

	case EVPNInclusiveMulticast:
		if len(data) < 8+4+1 {
			return nil, errMalformedField("evpn.inclusive-multicast", "truncated")
		}
		rd, err := addr.DecodeRD(data[0:8])
		if err != nil {
			return nil, err
		}
		r := &EVPNRoute{RouteType: rt, RD: rd}
		r.EthernetTagID = beUint32(data[8:12])
		offset := 12
		ipLen := int(data[offset])
		offset++
		family, ipBytes, err := ipLenToFamily(ipLen)
		if err != nil {
			return nil, err
		}
		if len(data) < offset+ipBytes {
			return nil, errMalformedField("evpn.inclusive-multicast", "truncated originating router address")
		}
		r.IP = addr.NewBgpNet(family, data[offset:offset+ipBytes], ipLen)
		return r, nil

	case EVPNEthernetSegment:
		if len(data) < 8+10+1 {
			return nil, errMalformedField("evpn.ethernet-segment", "truncated")
		}
		rd, err := addr.DecodeRD(data[0:8])
		if err != nil {
			return nil, err
		}
		r := &EVPNRoute{RouteType: rt, RD: rd}
		copy(r.ESI[:], data[8:18])
		offset := 18
		ipLen := int(data[offset])
		offset++
		family, ipBytes, err := ipLenToFamily(ipLen)
		if err != nil {
			return nil, err
		}
		if len(data) < offset+ipBytes {
			return nil, errMalformedField("evpn.ethernet-segment", "truncated originating router address")
		}
		r.IP = addr.NewBgpNet(family, data[offset:offset+ipBytes], ipLen)
		return r, nil

	case EVPNIPPrefix:
		if len(data) < 8+10+4+1 {
			return nil, errMalformedField("evpn.ip-prefix", "truncated")
		}
		rd, err := addr.DecodeRD(data[0:8])
		if err != nil {
			return nil, err
		}
		r := &EVPNRoute{RouteType: rt, RD: rd}
		copy(r.ESI[:], data[8:18])
		r.EthernetTagID = beUint32(data[18:22])
		offset := 22
		prefixLen := int(data[offset])
		offset++
		// The fixed-width prefix/gateway fields are 4 or 16 bytes
		// depending on whether this is IPv4 or IPv6 EVPN IP Prefix;
		// disambiguated by the remaining byte count (11 → IPv4, 35 → IPv6).
		remaining := len(data) - offset
		family := addr.FamilyIPv4
		ipBytes := 4
		if remaining >= 16+16+3 {
			family = addr.FamilyIPv6
			ipBytes = 16
		}
		if len(data) < offset+ipBytes*2+3 {
			return nil, errMalformedField("evpn.ip-prefix", "truncated")
		}
		r.IP = addr.NewBgpNet(family, data[offset:offset+ipBytes], prefixLen)
		offset += ipBytes
		r.GatewayIP = addr.NewBgpNet(family, data[offset:offset+ipBytes], family.ByteLen()*8)
		offset += ipBytes
		copy(r.Label[:], data[offset:offset+3])
		return r, nil

	default:
		payload := make([]byte, len(data))
		copy(payload, data)
		return &EVPNRoute{RouteType: rt, Unknown: payload}, nil
	}
}

func encodeEVPNRoute(r *EVPNRoute) []byte {
	if r.Unknown != nil {
		return append([]byte(nil), r.Unknown...)
	}

	var out []byte
	switch r.RouteType {
	case EVPNEthernetAD:
		out = r.RD.Encode(out)
		out = append(out, r.ESI[:]...)
		out = appendUint32(out, r.EthernetTagID)
		out = append(out, r.Label[:]...)

	case EVPNMACIPAdvertisement:
		out = r.RD.Encode(out)
		out = append(out, r.ESI[:]...)
		out = appendUint32(out, r.EthernetTagID)
		out = append(out, 48)
		out = append(out, r.MAC[:]...)
		if r.IP.Addr == nil {
			out = append(out, 0)
		} else {
			out = append(out, byte(r.IP.Length))
			out = append(out, r.IP.Addr[:r.IP.Family.ByteLen()]...)
		}
		out = append(out, r.Label[:]...)
		if r.HasLabel2 {
			out = append(out, r.Label2[:]...)
		}

	case EVPNInclusiveMulticast:
		out = r.RD.Encode(out)
		out = appendUint32(out, r.EthernetTagID)
		out = append(out, byte(r.IP.Length))
		out = append(out, r.IP.Addr[:r.IP.Family.ByteLen()]...)

	case EVPNEthernetSegment:
		out = r.RD.Encode(out)
		out = append(out, r.ESI[:]...)
		out = append(out, byte(r.IP.Length))
		out = append(out, r.IP.Addr[:r.IP.Family.ByteLen()]...)

	case EVPNIPPrefix:
		out = r.RD.Encode(out)
		out = append(out, r.ESI[:]...)
		out = appendUint32(out, r.EthernetTagID)
		out = append(out, byte(r.IP.Length))
		n := r.IP.Family.ByteLen()
		out = append(out, r.IP.Addr[:n]...)
		out = append(out, r.GatewayIP.Addr[:n]...)
		out = append(out, r.Label[:]...)
	}
	return out
}

func ipLenToFamily(bits int) (addr.Family, int, error) {
	switch bits {
	case 32:
		return addr.FamilyIPv4, 4, nil
	case 128:
		return addr.FamilyIPv6, 16, nil
	default:
		return 0, 0, errMalformedField("evpn.ip-length", "must be 32 or 128 bits")
	}
}

func beUint32(b []byte) uint32 {
	v, _ := wire.ReadUint32(b)
	return v
}

func appendUint32(dst []byte, v uint32) []byte {
	return wire.WriteUint32(dst, v)
}

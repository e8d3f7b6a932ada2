package bgp

import (
	"github.com/route-beacon/bgpcodec/addr"
	"github.com/route-beacon/bgpcodec/internal/wire"
)

// NLRIMode carries the two bits of context the NLRI codec needs that
// aren't in the bytes themselves: whether this block is AddPath
// framed, and whether it is a withdraw (informational; labeled
// families accept the withdraw sentinel regardless).
type NLRIMode struct {
	AddPath  bool
	Withdraw bool
}

// NLRI is the decoded form of one reachability entry. Only the fields
// relevant to (AFI, SAFI) are populated: Labels for labeled families,
// RD for VPN families, EVPN for L2VPN/EVPN, Flowspec for Flowspec,
// VPLS for L2VPN/VPLS, MDTGroup for MDT.
type NLRI struct {
	AFI  AFI
	SAFI SAFI

	HasPathID bool
	PathID    uint32

	Prefix addr.BgpNet
	Labels []addr.Label
	RD     *addr.RouteDistinguisher

	EVPN      *EVPNRoute
	VPLS      *VPLSRoute
	Flowspec  []FlowspecComponent
	MDTSource addr.BgpNet
	MDTGroup  addr.BgpNet

	// Opaque holds the raw payload for a self-delimited family whose
	// internal structure the codec does not interpret (MVPN route
	// types beyond wire framing). Preserved for round-trip.
	Opaque     []byte
	OpaqueType uint8
}

type nlriDecodeFunc func(buf []byte, mode NLRIMode) (NLRI, int, error)
type nlriEncodeFunc func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error)

type nlriCodec struct {
	decode nlriDecodeFunc
	encode nlriEncodeFunc
}

var nlriTable = map[AFISAFI]nlriCodec{}

func registerNLRI(afi AFI, safi SAFI, c nlriCodec) {
	nlriTable[AFISAFI{afi, safi}] = c
}

func init() {
	for _, afi := range []AFI{AFIIPv4, AFIIPv6} {
		registerNLRI(afi, SAFIUnicast, genericPrefixCodec(afi, SAFIUnicast, false, false))
		registerNLRI(afi, SAFIMulticast, genericPrefixCodec(afi, SAFIMulticast, false, false))
		registerNLRI(afi, SAFILabeledUnicast, genericPrefixCodec(afi, SAFILabeledUnicast, true, false))
		registerNLRI(afi, SAFIVPNUnicast, genericPrefixCodec(afi, SAFIVPNUnicast, true, true))
		registerNLRI(afi, SAFIVPNMulticast, genericPrefixCodec(afi, SAFIVPNMulticast, true, true))
		registerNLRI(afi, SAFIMVPN, opaqueRouteTypeCodec(afi, SAFIMVPN))
		registerNLRI(afi, SAFIMDT, mdtCodec(afi))
		registerNLRI(afi, SAFIFlowspec, flowspecCodec(afi, SAFIFlowspec))
	}
	registerNLRI(AFIL2VPN, SAFIVPLS, vplsCodec())
	registerNLRI(AFIL2VPN, SAFIEVPN, evpnCodec())
}

func addrFamily(afi AFI) addr.Family {
	if afi == AFIIPv6 {
		return addr.FamilyIPv6
	}
	return addr.FamilyIPv4
}

// DecodeNLRIList decodes every NLRI entry from a byte block for the
// given (AFI, SAFI), returning the list and an error if any entry
// fails (the decoded prefix of the list up to that point is still
// returned).
func DecodeNLRIList(afi AFI, safi SAFI, buf []byte, mode NLRIMode) ([]NLRI, error) {
	codec, ok := nlriTable[AFISAFI{afi, safi}]
	if !ok {
		return nil, errMalformedField("nlri.afi-safi", "unsupported address family")
	}
	var out []NLRI
	offset := 0
	for offset < len(buf) {
		n, consumed, err := codec.decode(buf[offset:], mode)
		if err != nil {
			return out, err
		}
		if consumed <= 0 {
			return out, errMalformedField("nlri", "decoder made no progress")
		}
		out = append(out, n)
		offset += consumed
	}
	return out, nil
}

// EncodeNLRIList appends the wire form of every entry in list to dst.
func EncodeNLRIList(dst []byte, afi AFI, safi SAFI, list []NLRI, mode NLRIMode) ([]byte, error) {
	codec, ok := nlriTable[AFISAFI{afi, safi}]
	if !ok {
		return dst, errMalformedField("nlri.afi-safi", "unsupported address family")
	}
	var err error
	for _, n := range list {
		dst, err = codec.encode(dst, n, mode)
		if err != nil {
			return dst, err
		}
	}
	return dst, nil
}

// genericPrefixCodec builds the decode/encode pair shared by every
// family whose NLRI is just {optional path-id, prefix-length-in-bits,
// optional label stack, optional RD, address bits} — spec §4.3's
// "prefix-length-self-delimitation" rule.
func genericPrefixCodec(afi AFI, safi SAFI, withLabel, withRD bool) nlriCodec {
	family := addrFamily(afi)

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

		if offset >= len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+1, len(buf))
		}
		bitsLen := int(buf[offset])
		offset++

		byteLen := wire.PrefixByteLen(bitsLen)
		if offset+byteLen > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+byteLen, len(buf))
		}
		block := buf[offset : offset+byteLen]
		offset += byteLen

		blockOff := 0
		if withLabel {
			labels, consumed, err := addr.DecodeLabelStack(block[blockOff:])
			if err != nil {
				return NLRI{}, 0, errMalformedField("nlri.label-stack", err.Error())
			}
			n.Labels = labels
			blockOff += consumed
		}
		if withRD {
			if blockOff+8 > len(block) {
				return NLRI{}, 0, errMalformedField("nlri.rd", "truncated")
			}
			rd, err := addr.DecodeRD(block[blockOff : blockOff+8])
			if err != nil {
				return NLRI{}, 0, err
			}
			n.RD = &rd
			blockOff += 8
		}

		addrBits := bitsLen - blockOff*8
		if addrBits < 0 {
			return NLRI{}, 0, errMalformedField("nlri.prefix-length", "shorter than label stack and RD")
		}
		padded, _, err := wire.ReadPrefixBytes(block[blockOff:], addrBits, family.ByteLen())
		if err != nil {
			return NLRI{}, 0, errMalformedField("nlri.prefix-length", err.Error())
		}
		n.Prefix = addr.BgpNet{Family: family, Addr: padded, Length: addrBits}

		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		headerBits := 0
		var block []byte
		if withLabel {
			block = addr.EncodeLabelStack(block, n.Labels)
			headerBits += 24 * len(n.Labels)
		}
		if withRD {
			if n.RD == nil {
				return nil, errMalformedField("nlri.rd", "required but absent")
			}
			block = n.RD.Encode(block)
			headerBits += 64
		}
		block = wire.WritePrefixBytes(block, n.Prefix.Addr, n.Prefix.Length)

		bitsLen := headerBits + n.Prefix.Length
		if bitsLen > 255 {
			return nil, errTooMuchData(255)
		}
		dst = append(dst, byte(bitsLen))
		return append(dst, block...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

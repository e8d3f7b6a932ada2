package bgp

import (
	"github.com/route-beacon/bgpcodec/addr"
	"github.com/route-beacon/bgpcodec/internal/wire"
)

// FlowspecComponentType enumerates the RFC 5575/8955 component types.
// Only Destination/Source Prefix (1, 2) are structurally decoded into
// a BgpNet; every other type is preserved as an opaque operator/value
// sequence (spec §4.4 "Flowspec: structural decode only").
type FlowspecComponentType uint8

const (
	FlowspecDestinationPrefix FlowspecComponentType = 1
	FlowspecSourcePrefix     FlowspecComponentType = 2
)

// FlowspecOp is one operator/value pair from a numeric-comparison
// Flowspec component (RFC 5575 §4.2.1/4.2.2 op-value encodings). The
// raw operator byte and value width are preserved verbatim; the
// numeric meaning of the comparison is not interpreted.
type FlowspecOp struct {
	Op    uint8
	Value []byte // 1, 2, 4, or 8 bytes per the op byte's length field
}

// FlowspecComponent is one component of a Flowspec NLRI. For prefix
// components (type 1, 2) Prefix is populated and Ops is empty; for
// every other type Ops holds the raw operator/value sequence.
type FlowspecComponent struct {
	Type   FlowspecComponentType
	Prefix addr.BgpNet
	Ops    []FlowspecOp
}

const (
	flowspecOpEOL    = 0x80
	flowspecOpLenMask = 0x30
)

func flowspecOpValueLen(op uint8) int {
	switch (op & flowspecOpLenMask) >> 4 {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}

func flowspecCodec(afi AFI, safi SAFI) nlriCodec {
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
		// NLRI length: 1 byte if < 240, else a 2-byte extended form
		// with the top nibble of the high byte fixed at 0xF (RFC 5575 §4).
		var nlriLen int
		if buf[offset] >= 0xF0 {
			if offset+2 > len(buf) {
				return NLRI{}, 0, errInsufficientBuffer(offset+2, len(buf))
			}
			nlriLen = (int(buf[offset]&0x0F) << 8) | int(buf[offset+1])
			offset += 2
		} else {
			nlriLen = int(buf[offset])
			offset++
		}

		if offset+nlriLen > len(buf) {
			return NLRI{}, 0, errInsufficientBuffer(offset+nlriLen, len(buf))
		}
		block := buf[offset : offset+nlriLen]
		offset += nlriLen

		components, err := decodeFlowspecComponents(block, family)
		if err != nil {
			return NLRI{}, 0, err
		}
		n.Flowspec = components
		return n, offset, nil
	}

	encode := func(dst []byte, n NLRI, mode NLRIMode) ([]byte, error) {
		if mode.AddPath {
			dst = wire.WriteUint32(dst, n.PathID)
		}
		block := encodeFlowspecComponents(n.Flowspec)
		if len(block) >= 240 {
			dst = append(dst, byte(0xF0|(len(block)>>8)), byte(len(block)))
		} else {
			dst = append(dst, byte(len(block)))
		}
		return append(dst, block...), nil
	}

	return nlriCodec{decode: decode, encode: encode}
}

func decodeFlowspecComponents(block []byte, family addr.Family) ([]FlowspecComponent, error) {
	var out []FlowspecComponent
	offset := 0
	for offset < len(block) {
		ctype := FlowspecComponentType(block[offset])
		offset++

		switch ctype {
		case FlowspecDestinationPrefix, FlowspecSourcePrefix:
			if offset >= len(block) {
				return nil, errMalformedField("flowspec.prefix", "missing length")
			}
			bitsLen := int(block[offset])
			offset++
			padded, n, err := wire.ReadPrefixBytes(block[offset:], bitsLen, family.ByteLen())
			if err != nil {
				return nil, errMalformedField("flowspec.prefix", err.Error())
			}
			offset += n
			out = append(out, FlowspecComponent{
				Type:   ctype,
				Prefix: addr.BgpNet{Family: family, Addr: padded, Length: bitsLen},
			})

		default:
			var ops []FlowspecOp
			for {
				if offset >= len(block) {
					return nil, errMalformedField("flowspec.op", "truncated operator sequence")
				}
				op := block[offset]
				offset++
				vlen := flowspecOpValueLen(op)
				if offset+vlen > len(block) {
					return nil, errMalformedField("flowspec.op", "truncated operator value")
				}
				value := append([]byte(nil), block[offset:offset+vlen]...)
				offset += vlen
				ops = append(ops, FlowspecOp{Op: op, Value: value})
				if op&flowspecOpEOL != 0 {
					break
				}
			}
			out = append(out, FlowspecComponent{Type: ctype, Ops: ops})
		}
	}
	return out, nil
}

func encodeFlowspecComponents(components []FlowspecComponent) []byte {
	var block []byte
	for _, c := range components {
		block = append(block, byte(c.Type))
		switch c.Type {
		case FlowspecDestinationPrefix, FlowspecSourcePrefix:
			block = append(block, byte(c.Prefix.Length))
			block = wire.WritePrefixBytes(block, c.Prefix.Addr, c.Prefix.Length)
		default:
			for _, op := range c.Ops {
				block = append(block, op.Op)
				block = append(block, op.Value...)
			}
		}
	}
	return block
}

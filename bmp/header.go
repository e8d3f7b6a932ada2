package bmp

import (
	"fmt"
	"net"

	"github.com/route-beacon/bgpcodec/internal/wire"
)

// CommonHeader is the 6-byte BMP common header every message starts
// with (RFC 7854 §4.1).
type CommonHeader struct {
	Version uint8
	Length  uint32
	Type    MessageType
}

// DecodeCommonHeader parses the 6-byte common header from buf[0:6].
func DecodeCommonHeader(buf []byte) (CommonHeader, error) {
	if len(buf) < CommonHeaderLength {
		return CommonHeader{}, fmt.Errorf("bmp: common header truncated (have %d, need %d)", len(buf), CommonHeaderLength)
	}
	version, _ := wire.ReadUint8(buf)
	length, _ := wire.ReadUint32(buf[1:5])
	typ, _ := wire.ReadUint8(buf[5:])
	h := CommonHeader{
		Version: version,
		Length:  length,
		Type:    MessageType(typ),
	}
	if h.Version != BMPVersion {
		return CommonHeader{}, fmt.Errorf("bmp: unsupported version %d (expected %d)", h.Version, BMPVersion)
	}
	if h.Length < CommonHeaderLength {
		return CommonHeader{}, fmt.Errorf("bmp: declared length %d shorter than common header", h.Length)
	}
	return h, nil
}

// EncodeTo appends the wire form of h to dst.
func (h CommonHeader) EncodeTo(dst []byte) []byte {
	dst = wire.WriteUint8(dst, h.Version)
	dst = wire.WriteUint32(dst, h.Length)
	return wire.WriteUint8(dst, byte(h.Type))
}

// PerPeerHeader is the 42-byte per-peer header carried by
// RouteMonitoring, StatisticsReport, PeerDown, and PeerUp (RFC 7854 §4.2).
type PerPeerHeader struct {
	PeerType       PeerType
	Flags          uint8
	Distinguisher  [8]byte
	Address        net.IP // 16 bytes; IPv4-mapped when Flags lacks PeerFlagIPv6
	ASN            uint32
	RouterID       net.IP // 4 bytes
	TimestampSec   uint32
	TimestampMicro uint32
}

// DecodePerPeerHeader parses the 42-byte per-peer header from buf[0:42].
func DecodePerPeerHeader(buf []byte) (PerPeerHeader, error) {
	if len(buf) < PerPeerHeaderLength {
		return PerPeerHeader{}, fmt.Errorf("bmp: per-peer header truncated (have %d, need %d)", len(buf), PerPeerHeaderLength)
	}
	peerType, _ := wire.ReadUint8(buf)
	flags, _ := wire.ReadUint8(buf[1:])
	address, _ := wire.ReadIPv6(buf[10:26])
	asn, _ := wire.ReadUint32(buf[26:30])
	routerID, _ := wire.ReadIPv4(buf[30:34])
	tsSec, _ := wire.ReadUint32(buf[34:38])
	tsMicro, _ := wire.ReadUint32(buf[38:42])

	h := PerPeerHeader{
		PeerType:       PeerType(peerType),
		Flags:          flags,
		Address:        address,
		ASN:            asn,
		RouterID:       routerID,
		TimestampSec:   tsSec,
		TimestampMicro: tsMicro,
	}
	copy(h.Distinguisher[:], buf[2:10])
	return h, nil
}

// EncodeTo appends the 42-byte wire form of h to dst.
func (h PerPeerHeader) EncodeTo(dst []byte) []byte {
	dst = wire.WriteUint8(dst, byte(h.PeerType))
	dst = wire.WriteUint8(dst, h.Flags)
	dst = append(dst, h.Distinguisher[:]...)
	addr := h.Address.To16()
	if addr == nil {
		addr = make(net.IP, 16)
	}
	dst = wire.WriteIP(dst, addr)
	dst = wire.WriteUint32(dst, h.ASN)
	routerID := h.RouterID.To4()
	if routerID == nil {
		routerID = make(net.IP, 4)
	}
	dst = wire.WriteIP(dst, routerID)
	dst = wire.WriteUint32(dst, h.TimestampSec)
	return wire.WriteUint32(dst, h.TimestampMicro)
}

// PeerAddress returns the peer address in its natural form: a 4-byte
// net.IP when the V flag is clear and the address is IPv4-mapped, the
// full 16 bytes otherwise.
func (h PerPeerHeader) PeerAddress() net.IP {
	if h.Flags&PeerFlagIPv6 == 0 {
		if v4 := h.Address.To4(); v4 != nil {
			return v4
		}
	}
	return h.Address
}

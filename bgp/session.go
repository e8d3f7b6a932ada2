package bgp

import (
	"net"

	"github.com/route-beacon/bgpcodec/telemetry"
)

// TransportMode selects the address family the session's transport
// socket uses; it does not by itself enable a multiprotocol AFI —
// that is the MultiProtocol capability's job.
type TransportMode uint8

const (
	TransportIPv4 TransportMode = 4
	TransportIPv6 TransportMode = 6
)

// SessionConfig is the caller-supplied local intent for a session:
// everything needed to build an outbound OPEN message.
type SessionConfig struct {
	LocalASN     uint32
	HoldTime     uint16
	RouterID     net.IP
	Transport    TransportMode
	Capabilities []Capability
}

type addPathKey struct {
	afi  AFI
	safi SAFI
}

// SessionParameters is the side input threaded through UPDATE decode
// and encode (spec §4.6, §9 "session parameters as side input").
// Created from the caller's local intent; updated once from the
// peer's decoded OPEN; treated as immutable afterward.
type SessionParameters struct {
	local SessionConfig
	peer  *SessionConfig

	negotiatedFourOctetASN bool

	// localAddPath / peerAddPath record, per (AFI,SAFI), the
	// direction each side declared capable.
	localAddPath map[addPathKey]AddPathDirection
	peerAddPath  map[addPathKey]AddPathDirection

	Hooks telemetry.Hooks
}

// NewSessionParameters builds a SessionParameters from the caller's
// local intent. The peer side is unset until UpdateFrom is called.
func NewSessionParameters(cfg SessionConfig) *SessionParameters {
	p := &SessionParameters{
		local:        cfg,
		localAddPath: indexAddPath(cfg.Capabilities),
	}
	for _, c := range cfg.Capabilities {
		if c.Code == CapFourOctetASN {
			// Local support alone isn't negotiation, but it is the
			// right default to encode our own OPEN/UPDATE with until
			// a peer OPEN has been observed.
			p.negotiatedFourOctetASN = true
		}
	}
	return p
}

func indexAddPath(caps []Capability) map[addPathKey]AddPathDirection {
	m := make(map[addPathKey]AddPathDirection)
	for _, c := range caps {
		if c.Code != CapAddPath {
			continue
		}
		for _, e := range c.AddPaths {
			m[addPathKey{e.AFI, e.SAFI}] = e.Direction
		}
	}
	return m
}

// UpdateFrom intersects the peer's decoded OPEN capabilities with the
// local configuration, per RFC 7911's set-intersection rule for
// AddPath direction and RFC 6793 for 4-octet ASN support. After this
// call, AddPathEnabled and FourOctetASNEnabled reflect the negotiated
// session, not just local intent.
func (p *SessionParameters) UpdateFrom(peer SessionConfig) {
	p.peer = &peer
	p.peerAddPath = indexAddPath(peer.Capabilities)

	peerFourOctet := false
	for _, c := range peer.Capabilities {
		if c.Code == CapFourOctetASN {
			peerFourOctet = true
		}
	}
	p.negotiatedFourOctetASN = p.negotiatedFourOctetASN && peerFourOctet
}

// FourOctetASNEnabled reports whether AS_PATH and AGGREGATOR should
// be parsed/encoded with a 4-byte ASN width.
func (p *SessionParameters) FourOctetASNEnabled() bool {
	return p.negotiatedFourOctetASN
}

// AddPathEnabled answers whether NLRI for (afi, safi) should be
// framed with a 4-byte path identifier in the given direction.
// AddPathSend asks "should our own encodes include a path id"
// (local-send ∩ peer-receive); AddPathReceive asks "should we expect
// a path id on NLRI decoded from the peer" (peer-send ∩ local-receive).
func (p *SessionParameters) AddPathEnabled(afi AFI, safi SAFI, dir AddPathDirection) bool {
	key := addPathKey{afi, safi}
	local := p.localAddPath[key]
	peer := p.peerAddPath[key]
	switch dir {
	case AddPathSend:
		return local&AddPathSend != 0 && peer&AddPathReceive != 0
	case AddPathReceive:
		return peer&AddPathSend != 0 && local&AddPathReceive != 0
	default:
		return false
	}
}

// OpenMessage builds the outbound OPEN this session's local config
// describes.
func (p *SessionParameters) OpenMessage() *OpenMessage {
	asn16 := uint16(p.local.LocalASN)
	if p.local.LocalASN > 0xFFFF {
		asn16 = asTrans
	}
	return &OpenMessage{
		Version:       OpenVersion,
		ASN:           asn16,
		HoldTime:      p.local.HoldTime,
		RouterID:      p.local.RouterID,
		Capabilities:  p.local.Capabilities,
	}
}

// asTrans is the reserved ASN (RFC 6793 §4) a 4-octet-ASN-capable
// speaker places in the wire ASN field when its true ASN doesn't fit
// in 16 bits; the real value travels in the capability instead.
const asTrans uint16 = 23456

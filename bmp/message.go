package bmp

import (
	"fmt"

	"github.com/route-beacon/bgpcodec/bgp"
)

// RouteMonitoring is the decoded body of a RouteMonitoring message: a
// single encapsulated BGP UPDATE. DefaultedContext is set when no
// cached PeerUp context existed for this peer (spec §4.7): the update
// was decoded with the fallback SessionParameters (2-byte ASN, no
// AddPath framing) rather than the peer's negotiated ones, and ASPath
// or NLRI framing may be wrong if the peer actually negotiated
// something richer.
type RouteMonitoring struct {
	Update           *bgp.UpdateMessage
	DefaultedContext bool
}

// Message is a fully decoded BMP message: the common and per-peer
// headers (the latter absent for Initiation/Termination), plus
// exactly one populated body field selected by Header.Type.
type Message struct {
	Header     CommonHeader
	PeerHeader *PerPeerHeader

	RouteMonitoring *RouteMonitoring
	StatisticsData  []byte // StatisticsReport body, left undecoded (spec §4.7 out of scope)
	PeerDown        *PeerDownNotification
	PeerUp          *PeerUpNotification
	Initiation      *InfoTLVSet
	Termination     *InfoTLVSet
	Mirroring       []byte // RouteMirroring body, left undecoded (spec §4.7 out of scope)
}

// DecodeMessage parses one BMP message from the front of buf and
// returns it along with the number of bytes consumed. cache supplies
// and is updated with per-peer SessionParameters: PeerUp populates an
// entry, PeerDown removes it, RouteMonitoring consults it.
//
// cache may be nil, in which case every RouteMonitoring decodes with
// DefaultedContext set and PeerUp/PeerDown have no effect beyond their
// own parse.
func DecodeMessage(buf []byte, cache *Cache) (*Message, int, error) {
	head, err := DecodeCommonHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	total := int(head.Length)
	if len(buf) < total {
		return nil, 0, fmt.Errorf("bmp: message body truncated (have %d, need %d)", len(buf), total)
	}
	body := buf[CommonHeaderLength:total]

	msg := &Message{Header: head}

	switch head.Type {
	case MessageInitiation:
		set, _, err := DecodeInitiation(body)
		if err != nil {
			return nil, 0, fmt.Errorf("bmp: initiation: %w", err)
		}
		msg.Initiation = set

	case MessageTermination:
		set, _, err := DecodeTermination(body)
		if err != nil {
			return nil, 0, fmt.Errorf("bmp: termination: %w", err)
		}
		msg.Termination = set

	default:
		peerHeader, err := DecodePerPeerHeader(body)
		if err != nil {
			return nil, 0, fmt.Errorf("bmp: %s: %w", head.Type, err)
		}
		msg.PeerHeader = &peerHeader
		rest := body[PerPeerHeaderLength:]

		switch head.Type {
		case MessagePeerUp:
			pu, sp, _, err := DecodePeerUp(rest, peerHeader)
			if err != nil {
				return nil, 0, fmt.Errorf("bmp: peer up: %w", err)
			}
			msg.PeerUp = pu
			if cache != nil {
				cache.Put(PeerKeyFrom(peerHeader), sp)
			}

		case MessagePeerDown:
			pd, _, err := DecodePeerDown(rest)
			if err != nil {
				return nil, 0, fmt.Errorf("bmp: peer down: %w", err)
			}
			msg.PeerDown = pd
			if cache != nil {
				cache.Delete(PeerKeyFrom(peerHeader))
			}

		case MessageRouteMonitoring:
			sp, defaulted := lookupOrDefault(cache, peerHeader)
			adaptive := defaulted
			update, _, err := bgp.DecodeUpdateMessage(rest, sp, adaptive)
			if err != nil {
				return nil, 0, fmt.Errorf("bmp: route monitoring: %w", err)
			}
			msg.RouteMonitoring = &RouteMonitoring{Update: update, DefaultedContext: defaulted}

		case MessageStatisticsReport:
			msg.StatisticsData = append([]byte(nil), rest...)

		case MessageRouteMirroring:
			msg.Mirroring = append([]byte(nil), rest...)

		default:
			return nil, 0, fmt.Errorf("bmp: unknown message type %d", head.Type)
		}
	}

	return msg, total, nil
}

// lookupOrDefault returns the cached SessionParameters for the peer,
// or a zero-value fallback (2-byte ASN, no AddPath) with defaulted set
// to true when no cache or no cached entry exists.
func lookupOrDefault(cache *Cache, peerHeader PerPeerHeader) (*bgp.SessionParameters, bool) {
	if cache != nil {
		if sp, ok := cache.Get(PeerKeyFrom(peerHeader)); ok {
			return sp, false
		}
		cache.Hooks.BMPContextMiss()
	}
	return bgp.NewSessionParameters(bgp.SessionConfig{}), true
}

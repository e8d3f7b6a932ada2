// Package bmp implements the BMP (BGP Monitoring Protocol, RFC 7854
// v3) message codec: common and per-peer header framing, the message
// bodies (StatisticsReport and RouteMirroring are kept as raw bytes,
// the other five are decoded), and the per-peer session-parameters
// cache that lets
// RouteMonitoring decode UPDATE bodies with the right ASN width and
// AddPath framing. Like bgp, it performs no I/O.
package bmp

// MessageType discriminates the seven BMP message kinds (RFC 7854 §4.1).
type MessageType uint8

const (
	MessageRouteMonitoring  MessageType = 0
	MessageStatisticsReport MessageType = 1
	MessagePeerDown         MessageType = 2
	MessagePeerUp           MessageType = 3
	MessageInitiation       MessageType = 4
	MessageTermination      MessageType = 5
	MessageRouteMirroring   MessageType = 6
)

func (t MessageType) String() string {
	switch t {
	case MessageRouteMonitoring:
		return "RouteMonitoring"
	case MessageStatisticsReport:
		return "StatisticsReport"
	case MessagePeerDown:
		return "PeerDown"
	case MessagePeerUp:
		return "PeerUp"
	case MessageInitiation:
		return "Initiation"
	case MessageTermination:
		return "Termination"
	case MessageRouteMirroring:
		return "RouteMirroring"
	default:
		return "Unknown"
	}
}

// PeerType discriminates the per-peer header's peer type field.
type PeerType uint8

const (
	PeerTypeGlobal PeerType = 0
	PeerTypeRD     PeerType = 1
	PeerTypeLocal  PeerType = 2
	PeerTypeLocRIB PeerType = 3 // RFC 9069
)

// Per-peer header flag bits (RFC 7854 §4.2).
const (
	// PeerFlagIPv6 is the V flag: the peer address field holds an IPv6
	// address rather than an IPv4-mapped one.
	PeerFlagIPv6 uint8 = 0x80
	// PeerFlagPostPolicy is the L flag: the carried Adj-RIB-In is
	// post-policy rather than pre-policy.
	PeerFlagPostPolicy uint8 = 0x40
	// PeerFlagLegacyASPath is the A flag: the peer negotiated the
	// legacy 2-byte AS_PATH format rather than four-octet ASNs.
	PeerFlagLegacyASPath uint8 = 0x20
)

// Wire framing sizes (RFC 7854 §4.1, §4.2).
const (
	CommonHeaderLength  = 6
	PerPeerHeaderLength = 42
)

// Information TLV type codes (RFC 7854 §4.4, used by Initiation and
// Termination).
const (
	InfoTypeString  uint16 = 0
	InfoTypeSysDescr uint16 = 1
	InfoTypeSysName uint16 = 2
)

// BMPVersion is the only version this codec accepts (RFC 7854 §4.1).
const BMPVersion uint8 = 3

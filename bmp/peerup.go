package bmp

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/route-beacon/bgpcodec/bgp"
)

const peerUpFixedLength = 16 + 2 + 2 // local address + local port + remote port

// PeerUpNotification is the decoded PeerUp message body (RFC 7854
// §4.10): the transport 4-tuple plus the sent and received OPEN
// messages that negotiated this peering.
type PeerUpNotification struct {
	LocalAddress net.IP
	LocalPort    uint16
	RemotePort   uint16
	SentOpen     *bgp.OpenMessage
	ReceivedOpen *bgp.OpenMessage
	InfoTLVs     []InfoTLV
}

// DecodePeerUp parses a PeerUp body and synthesizes the SessionParameters
// this peering negotiated (spec §4.7): the received OPEN supplies the
// peer's capability set, the sent OPEN supplies local intent, and
// UpdateFrom intersects the two exactly as it would for a live session.
func DecodePeerUp(body []byte, peerHeader PerPeerHeader) (*PeerUpNotification, *bgp.SessionParameters, int, error) {
	if len(body) < peerUpFixedLength {
		return nil, nil, 0, fmt.Errorf("bmp: peer up body truncated (have %d, need %d)", len(body), peerUpFixedLength)
	}
	pu := &PeerUpNotification{
		LocalAddress: net.IP(append([]byte(nil), body[0:16]...)),
		LocalPort:    binary.BigEndian.Uint16(body[16:18]),
		RemotePort:   binary.BigEndian.Uint16(body[18:20]),
	}
	offset := peerUpFixedLength

	if len(body[offset:]) < bgp.HeaderLength {
		return nil, nil, 0, fmt.Errorf("bmp: peer up sent-open header truncated")
	}
	_, n, err := bgp.DecodeMessageHead(body[offset:])
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bmp: peer up sent-open header: %w", err)
	}
	sentTotal := bgp.HeaderLength + n
	if offset+sentTotal > len(body) {
		return nil, nil, 0, fmt.Errorf("bmp: peer up sent-open body truncated")
	}
	sentOpen, _, err := bgp.DecodeOpenMessage(body[offset+bgp.HeaderLength : offset+sentTotal])
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bmp: peer up sent-open: %w", err)
	}
	pu.SentOpen = sentOpen
	offset += sentTotal

	if len(body[offset:]) < bgp.HeaderLength {
		return nil, nil, 0, fmt.Errorf("bmp: peer up received-open header truncated")
	}
	_, n, err = bgp.DecodeMessageHead(body[offset:])
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bmp: peer up received-open header: %w", err)
	}
	recvTotal := bgp.HeaderLength + n
	if offset+recvTotal > len(body) {
		return nil, nil, 0, fmt.Errorf("bmp: peer up received-open body truncated")
	}
	recvOpen, _, err := bgp.DecodeOpenMessage(body[offset+bgp.HeaderLength : offset+recvTotal])
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bmp: peer up received-open: %w", err)
	}
	pu.ReceivedOpen = recvOpen
	offset += recvTotal

	tlvs, err := DecodeInfoTLVs(body[offset:])
	if err != nil {
		return nil, nil, 0, err
	}
	pu.InfoTLVs = tlvs
	offset = len(body)

	transport := bgp.TransportIPv4
	if peerHeader.Flags&PeerFlagIPv6 != 0 {
		transport = bgp.TransportIPv6
	}

	sp := bgp.NewSessionParameters(sentOpen.ToSessionConfig(transport))
	sp.UpdateFrom(recvOpen.ToSessionConfig(transport))

	return pu, sp, offset, nil
}

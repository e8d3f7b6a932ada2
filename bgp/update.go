package bgp

import (
	"encoding/binary"
)

// UpdateMessage is the BGP UPDATE message (spec §3 "UPDATE message"):
// withdrawn IPv4 unicast routes, path attributes, and advertised IPv4
// unicast routes. Reachability for every other (AFI, SAFI) travels
// inside Attributes via MP_REACH_NLRI/MP_UNREACH_NLRI.
type UpdateMessage struct {
	WithdrawnRoutes []NLRI
	Attributes      []Attribute
	NLRI            []NLRI
}

// DecodeUpdateMessage parses an UPDATE body. sp supplies the ASN
// width and AddPath directionality used by the attribute and NLRI
// codecs; adaptiveAggregator selects the BMP PeerUp-captured
// AGGREGATOR width heuristic (spec §4.4, §4.7).
func DecodeUpdateMessage(body []byte, sp *SessionParameters, adaptiveAggregator bool) (*UpdateMessage, int, error) {
	offset := 0

	if offset+2 > len(body) {
		return nil, 0, errInsufficientBuffer(offset+2, len(body))
	}
	withdrawnLen := int(binary.BigEndian.Uint16(body[offset : offset+2]))
	offset += 2
	if offset+withdrawnLen > len(body) {
		return nil, 0, errInsufficientBuffer(offset+withdrawnLen, len(body))
	}
	withdrawnMode := NLRIMode{AddPath: addPathForReceive(sp, AFIIPv4, SAFIUnicast), Withdraw: true}
	withdrawn, err := DecodeNLRIList(AFIIPv4, SAFIUnicast, body[offset:offset+withdrawnLen], withdrawnMode)
	if err != nil {
		return nil, 0, err
	}
	offset += withdrawnLen

	if offset+2 > len(body) {
		return nil, 0, errInsufficientBuffer(offset+2, len(body))
	}
	attrsLen := int(binary.BigEndian.Uint16(body[offset : offset+2]))
	offset += 2
	if offset+attrsLen > len(body) {
		return nil, 0, errInsufficientBuffer(offset+attrsLen, len(body))
	}
	attrs, err := DecodeAttributes(body[offset:offset+attrsLen], sp, adaptiveAggregator)
	if err != nil {
		return nil, 0, err
	}
	offset += attrsLen

	nlriMode := NLRIMode{AddPath: addPathForReceive(sp, AFIIPv4, SAFIUnicast)}
	nlri, err := DecodeNLRIList(AFIIPv4, SAFIUnicast, body[offset:], nlriMode)
	if err != nil {
		return nil, 0, err
	}
	offset = len(body)

	return &UpdateMessage{
		WithdrawnRoutes: withdrawn,
		Attributes:      attrs,
		NLRI:            nlri,
	}, offset, nil
}

// EncodeTo appends the wire form of the UPDATE body to dst.
func (m *UpdateMessage) EncodeTo(dst []byte, sp *SessionParameters) ([]byte, error) {
	withdrawnMode := NLRIMode{AddPath: addPathForReceive(sp, AFIIPv4, SAFIUnicast), Withdraw: true}
	var withdrawn []byte
	var err error
	withdrawn, err = EncodeNLRIList(withdrawn, AFIIPv4, SAFIUnicast, m.WithdrawnRoutes, withdrawnMode)
	if err != nil {
		return nil, err
	}
	if len(withdrawn) > 0xFFFF {
		return nil, errTooMuchData(0xFFFF)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(withdrawn)))
	dst = append(dst, withdrawn...)

	var attrs []byte
	attrs, err = EncodeAttributes(attrs, m.Attributes, sp)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0xFFFF {
		return nil, errTooMuchData(0xFFFF)
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(attrs)))
	dst = append(dst, attrs...)

	nlriMode := NLRIMode{AddPath: addPathForReceive(sp, AFIIPv4, SAFIUnicast)}
	dst, err = EncodeNLRIList(dst, AFIIPv4, SAFIUnicast, m.NLRI, nlriMode)
	if err != nil {
		return nil, err
	}

	return dst, nil
}

package bgp

import "github.com/route-beacon/bgpcodec/internal/wire"

// NotificationMessage is the BGP NOTIFICATION message: a 1-byte error
// code, a 1-byte error subcode, and optional diagnostic data.
type NotificationMessage struct {
	ErrorCode    uint8
	ErrorSubcode uint8
	Data         []byte
}

// DecodeNotificationMessage parses a NOTIFICATION body.
func DecodeNotificationMessage(body []byte) (*NotificationMessage, int, error) {
	if len(body) < 2 {
		return nil, 0, errInsufficientBuffer(2, len(body))
	}
	code, _ := wire.ReadUint8(body)
	subcode, _ := wire.ReadUint8(body[1:])
	return &NotificationMessage{
		ErrorCode:    code,
		ErrorSubcode: subcode,
		Data:         append([]byte(nil), body[2:]...),
	}, len(body), nil
}

// EncodeTo appends the wire form of the NOTIFICATION body to dst.
func (m *NotificationMessage) EncodeTo(dst []byte) []byte {
	dst = wire.WriteUint8(dst, m.ErrorCode)
	dst = wire.WriteUint8(dst, m.ErrorSubcode)
	return append(dst, m.Data...)
}

// KeepaliveMessage is the BGP KEEPALIVE message: an empty body.
type KeepaliveMessage struct{}

// DecodeKeepaliveMessage validates that a KEEPALIVE body is empty.
func DecodeKeepaliveMessage(body []byte) (*KeepaliveMessage, int, error) {
	if len(body) != 0 {
		return nil, 0, errMalformedField("keepalive.body", "must be empty")
	}
	return &KeepaliveMessage{}, 0, nil
}

// EncodeTo appends the (empty) wire form of the KEEPALIVE body to dst.
func (m *KeepaliveMessage) EncodeTo(dst []byte) []byte {
	return dst
}

package bgp

import (
	"encoding/binary"
	"net"
)

// capabilitiesParamType is the Optional Parameter type that carries
// capability TLVs (RFC 5492 §4).
const capabilitiesParamType = 2

// OptionalParameter is a passthrough optional parameter whose type
// the codec does not interpret (everything but type 2); preserved
// verbatim so encode round-trips.
type OptionalParameter struct {
	Type  uint8
	Value []byte
}

// OpenMessage is the BGP OPEN message (spec §3 "OPEN message").
type OpenMessage struct {
	Version      uint8
	ASN          uint16
	HoldTime     uint16
	RouterID     net.IP
	Capabilities []Capability
	OtherParams  []OptionalParameter
}

// DecodeOpenMessage parses an OPEN body (the bytes after the 19-byte
// header). Unknown capability codes are preserved, never fatal
// (spec §4.5 "hard rule for robustness").
func DecodeOpenMessage(body []byte) (*OpenMessage, int, error) {
	if len(body) < 10 {
		return nil, 0, errInsufficientBuffer(10, len(body))
	}
	version := body[0]
	if version != OpenVersion {
		return nil, 0, errUnsupportedVersion(version)
	}

	msg := &OpenMessage{
		Version:  version,
		ASN:      binary.BigEndian.Uint16(body[1:3]),
		HoldTime: binary.BigEndian.Uint16(body[3:5]),
		RouterID: net.IP(append([]byte(nil), body[5:9]...)),
	}

	optLen := int(body[9])
	offset := 10
	if offset+optLen > len(body) {
		return nil, 0, errInsufficientBuffer(offset+optLen, len(body))
	}
	params := body[offset : offset+optLen]
	offset += optLen

	poff := 0
	for poff < len(params) {
		if poff+2 > len(params) {
			return nil, 0, errMalformedField("open.optional-parameters", "parameter header truncated")
		}
		ptype := params[poff]
		plen := int(params[poff+1])
		poff += 2
		if poff+plen > len(params) {
			return nil, 0, errMalformedField("open.optional-parameters", "parameter value truncated")
		}
		pvalue := params[poff : poff+plen]
		poff += plen

		if ptype == capabilitiesParamType {
			coff := 0
			for coff < len(pvalue) {
				cap, n, err := decodeCapability(pvalue[coff:])
				if err != nil {
					return nil, 0, err
				}
				msg.Capabilities = append(msg.Capabilities, cap)
				coff += n
			}
		} else {
			msg.OtherParams = append(msg.OtherParams, OptionalParameter{
				Type:  ptype,
				Value: append([]byte(nil), pvalue...),
			})
		}
	}

	return msg, offset, nil
}

// EncodeTo appends the wire form of the OPEN body to dst and returns
// the bytes written.
func (m *OpenMessage) EncodeTo(dst []byte) []byte {
	dst = append(dst, m.Version)
	var asn, hold [2]byte
	binary.BigEndian.PutUint16(asn[:], m.ASN)
	binary.BigEndian.PutUint16(hold[:], m.HoldTime)
	dst = append(dst, asn[:]...)
	dst = append(dst, hold[:]...)

	routerID := m.RouterID.To4()
	if routerID == nil {
		routerID = make([]byte, 4)
	}
	dst = append(dst, routerID...)

	// Reserve a byte for optional-parameters length; patch it below.
	lenIdx := len(dst)
	dst = append(dst, 0)

	paramsStart := len(dst)

	if len(m.Capabilities) > 0 {
		var capBytes []byte
		for _, c := range m.Capabilities {
			capBytes = c.encode(capBytes)
		}
		dst = append(dst, capabilitiesParamType, byte(len(capBytes)))
		dst = append(dst, capBytes...)
	}

	for _, op := range m.OtherParams {
		dst = append(dst, op.Type, byte(len(op.Value)))
		dst = append(dst, op.Value...)
	}

	dst[lenIdx] = byte(len(dst) - paramsStart)
	return dst
}

// FindCapability returns the first capability of the given code, if
// any is present.
func (m *OpenMessage) FindCapability(code CapabilityCode) (Capability, bool) {
	for _, c := range m.Capabilities {
		if c.Code == code {
			return c, true
		}
	}
	return Capability{}, false
}

// ToSessionConfig synthesizes a SessionConfig describing what this
// OPEN negotiated, for feeding into SessionParameters.UpdateFrom.
// asn resolves AS_TRANS against the 4-octet-ASN capability if present.
func (m *OpenMessage) ToSessionConfig(transport TransportMode) SessionConfig {
	asn := uint32(m.ASN)
	if c, ok := m.FindCapability(CapFourOctetASN); ok {
		asn = c.ASN
	}
	return SessionConfig{
		LocalASN:     asn,
		HoldTime:     m.HoldTime,
		RouterID:     m.RouterID,
		Transport:    transport,
		Capabilities: m.Capabilities,
	}
}

package bgp

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/route-beacon/bgpcodec/addr"
)

func fourByteSession() *SessionParameters {
	return NewSessionParameters(SessionConfig{
		LocalASN: 64496,
		Capabilities: []Capability{
			{Code: CapFourOctetASN, ASN: 64496},
		},
	})
}

func TestDecodeAttributes_ASPathWidthFollowsNegotiation(t *testing.T) {
	seg := []byte{byte(SegmentSequence), 2, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x01, 0x00, 0x00}
	attr := buildPathAttr(0xC0, AttrASPath, seg)

	attrs, err := DecodeAttributes(attr, fourByteSession(), false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if len(attrs) != 1 || len(attrs[0].ASPath) != 1 {
		t.Fatalf("expected 1 AS_PATH segment, got %+v", attrs)
	}
	asns := attrs[0].ASPath[0].ASNs
	if len(asns) != 2 || asns[0] != 0xFFFFFFFF || asns[1] != 0x00010000 {
		t.Fatalf("unexpected ASN decode: %x", asns)
	}
}

func TestDecodeAttributes_ASPathLengthMismatchFails(t *testing.T) {
	// count=2 but only 3 bytes of 2-byte ASNs follow (needs 4).
	seg := []byte{byte(SegmentSequence), 2, 0x00, 0x01, 0x00}
	attr := buildPathAttr(0xC0, AttrASPath, seg)

	_, err := DecodeAttributes(attr, twoByteSession(), false)
	if err == nil {
		t.Fatal("expected MalformedField for inconsistent AS_PATH segment length")
	}
}

func TestDecodeAttributes_AggregatorAdaptiveWidth(t *testing.T) {
	// 6-byte value: 2-byte ASN + 4-byte IP.
	value := []byte{0xFC, 0x00, 192, 0, 2, 1}
	attr := buildPathAttr(0xC0, AttrAggregator, value)

	attrs, err := DecodeAttributes(attr, fourByteSession(), true)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if attrs[0].Aggregator.ASN != 0xFC00 {
		t.Fatalf("expected ASN 0xFC00, got %x", attrs[0].Aggregator.ASN)
	}
	if !attrs[0].Aggregator.IP.Equal(net.IPv4(192, 0, 2, 1)) {
		t.Fatalf("expected 192.0.2.1, got %v", attrs[0].Aggregator.IP)
	}
}

func TestDecodeAttributes_UnknownTypePassthrough(t *testing.T) {
	attr := buildPathAttr(0xC0, AttrType(200), []byte{1, 2, 3})

	attrs, err := DecodeAttributes(attr, twoByteSession(), false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if len(attrs[0].Unknown) != 3 {
		t.Fatalf("expected 3-byte unknown payload, got %v", attrs[0].Unknown)
	}
}

func TestAttributes_ExtendedLengthEncoding(t *testing.T) {
	communities := make([]uint32, 100) // 400 bytes, forces extended length
	for i := range communities {
		communities[i] = uint32(i)
	}
	attrs := []Attribute{{Flags: 0xC0, Type: AttrCommunities, Communities: communities}}

	encoded, err := EncodeAttributes(nil, attrs, twoByteSession())
	if err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}
	if encoded[0]&AttrFlagExtendedLength == 0 {
		t.Fatal("expected extended-length flag to be set for a 400-byte value")
	}
	length := binary.BigEndian.Uint16(encoded[2:4])
	if int(length) != 400 {
		t.Fatalf("expected length 400, got %d", length)
	}

	decoded, err := DecodeAttributes(encoded, twoByteSession(), false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	if len(decoded[0].Communities) != 100 {
		t.Fatalf("expected 100 communities round-tripped, got %d", len(decoded[0].Communities))
	}
}

func TestAttributes_MPReachNLRIRoundTrip(t *testing.T) {
	sp := twoByteSession()
	mp := &MPReachNLRI{
		AFI:     AFIIPv6,
		SAFI:    SAFIUnicast,
		NextHop: net.ParseIP("2001:db8::1").To16(),
		NLRI: []NLRI{
			{AFI: AFIIPv6, SAFI: SAFIUnicast, Prefix: addr.NewBgpNet(addr.FamilyIPv6, net.ParseIP("2001:db8:1::").To16(), 48)},
		},
	}
	attrs := []Attribute{{Flags: 0x80, Type: AttrMPReachNLRI, MPReach: mp}}

	encoded, err := EncodeAttributes(nil, attrs, sp)
	if err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}
	decoded, err := DecodeAttributes(encoded, sp, false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	got := decoded[0].MPReach
	if got == nil || got.AFI != AFIIPv6 {
		t.Fatalf("expected MP_REACH_NLRI AFI IPv6, got %+v", got)
	}
	if len(got.NLRI) != 1 || got.NLRI[0].Prefix.String() != "2001:db8:1::/48" {
		t.Fatalf("NLRI mismatch: %+v", got.NLRI)
	}
}

func TestAttributes_MPUnreachNLRIRoundTrip(t *testing.T) {
	sp := twoByteSession()
	mp := &MPUnreachNLRI{
		AFI:  AFIIPv4,
		SAFI: SAFIVPNUnicast,
		NLRI: []NLRI{},
	}
	rd := addr.NewRDAS2(64496, 1)
	mp.NLRI = append(mp.NLRI, NLRI{
		AFI:    AFIIPv4,
		SAFI:   SAFIVPNUnicast,
		Labels: []addr.Label{addr.WithdrawLabel()},
		RD:     &rd,
		Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(10, 0, 0, 0).To4(), 24),
	})
	attrs := []Attribute{{Flags: 0x80, Type: AttrMPUnreachNLRI, MPUnreach: mp}}

	encoded, err := EncodeAttributes(nil, attrs, sp)
	if err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}
	decoded, err := DecodeAttributes(encoded, sp, false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	got := decoded[0].MPUnreach
	if got == nil || len(got.NLRI) != 1 {
		t.Fatalf("expected 1 withdrawn NLRI, got %+v", got)
	}
	if !got.NLRI[0].Labels[0].IsWithdrawSentinel() {
		t.Fatalf("expected withdraw sentinel label, got %+v", got.NLRI[0].Labels)
	}
}

func TestAttributes_AttrSetNesting(t *testing.T) {
	sp := twoByteSession()
	inner := []Attribute{{Flags: 0x40, Type: AttrOrigin, Origin: OriginEGP}}
	attrs := []Attribute{{
		Flags:   0xC0,
		Type:    AttrAttrSet,
		AttrSet: &AttrSetValue{OriginatingAS: 64510, Attributes: inner},
	}}

	encoded, err := EncodeAttributes(nil, attrs, sp)
	if err != nil {
		t.Fatalf("EncodeAttributes: %v", err)
	}
	decoded, err := DecodeAttributes(encoded, sp, false)
	if err != nil {
		t.Fatalf("DecodeAttributes: %v", err)
	}
	got := decoded[0].AttrSet
	if got == nil || got.OriginatingAS != 64510 {
		t.Fatalf("expected OriginatingAS 64510, got %+v", got)
	}
	if len(got.Attributes) != 1 || got.Attributes[0].Origin != OriginEGP {
		t.Fatalf("expected nested ORIGIN=EGP, got %+v", got.Attributes)
	}
}

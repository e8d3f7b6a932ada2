package bgp

import (
	"bytes"
	"net"
	"testing"

	"github.com/route-beacon/bgpcodec/addr"
)

func TestNLRI_UnicastRoundTrip(t *testing.T) {
	list := []NLRI{
		{AFI: AFIIPv4, SAFI: SAFIUnicast, Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(10, 1, 2, 0).To4(), 24)},
		{AFI: AFIIPv4, SAFI: SAFIUnicast, Prefix: addr.NewBgpNet(addr.FamilyIPv4, nil, 0)},
	}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIUnicast, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIUnicast, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(decoded))
	}
	if decoded[0].Prefix.String() != "10.1.2.0/24" {
		t.Fatalf("expected 10.1.2.0/24, got %s", decoded[0].Prefix.String())
	}
	if decoded[1].Prefix.Length != 0 {
		t.Fatalf("expected default route, got length %d", decoded[1].Prefix.Length)
	}
}

func TestNLRI_AddPathFraming(t *testing.T) {
	list := []NLRI{
		{AFI: AFIIPv4, SAFI: SAFIUnicast, HasPathID: true, PathID: 42, Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(10, 0, 0, 0).To4(), 8)},
	}
	mode := NLRIMode{AddPath: true}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIUnicast, list, mode)
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIUnicast, encoded, mode)
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if !decoded[0].HasPathID || decoded[0].PathID != 42 {
		t.Fatalf("expected path id 42, got %+v", decoded[0])
	}
}

func TestNLRI_LabeledUnicastWithdrawSentinel(t *testing.T) {
	list := []NLRI{
		{
			AFI:    AFIIPv4,
			SAFI:   SAFILabeledUnicast,
			Labels: []addr.Label{addr.WithdrawLabel()},
			Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(192, 0, 2, 0).To4(), 24),
		},
	}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFILabeledUnicast, list, NLRIMode{Withdraw: true})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFILabeledUnicast, encoded, NLRIMode{Withdraw: true})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if len(decoded[0].Labels) != 1 || !decoded[0].Labels[0].IsWithdrawSentinel() {
		t.Fatalf("expected withdraw sentinel label, got %+v", decoded[0].Labels)
	}
	if decoded[0].Prefix.String() != "192.0.2.0/24" {
		t.Fatalf("expected 192.0.2.0/24, got %s", decoded[0].Prefix.String())
	}
}

func TestNLRI_VPNUnicastRoundTrip(t *testing.T) {
	rd := addr.NewRDAS2(64496, 100)
	list := []NLRI{
		{
			AFI:    AFIIPv4,
			SAFI:   SAFIVPNUnicast,
			Labels: []addr.Label{addr.NewLabel(1000, 0, true)},
			RD:     &rd,
			Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(203, 0, 113, 0).To4(), 24),
		},
	}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIVPNUnicast, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIVPNUnicast, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if decoded[0].RD == nil || !decoded[0].RD.Equal(rd) {
		t.Fatalf("RD round-trip mismatch: %+v", decoded[0].RD)
	}
	if decoded[0].Labels[0].Value() != 1000 {
		t.Fatalf("expected label value 1000, got %d", decoded[0].Labels[0].Value())
	}
}

func TestNLRI_PrefixLengthExceedsFamilyWidth(t *testing.T) {
	_, err := DecodeNLRIList(AFIIPv4, SAFIUnicast, []byte{33, 1, 2, 3, 4, 5}, NLRIMode{})
	if err == nil {
		t.Fatal("expected MalformedField for prefix length exceeding address width")
	}
	cerr, ok := err.(*CodecError)
	if !ok || cerr.Kind != ErrorMalformedField {
		t.Fatalf("expected ErrorMalformedField, got %v", err)
	}
}

func TestNLRI_EVPNMACIPRoundTrip(t *testing.T) {
	rd := addr.NewRDAS2(64496, 1)
	route := &EVPNRoute{
		RouteType:     EVPNMACIPAdvertisement,
		RD:            rd,
		EthernetTagID: 0,
		HasMAC:        true,
		MAC:           addr.MAC{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		IP:            addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(10, 0, 0, 1).To4(), 32),
		Label:         addr.NewLabel(500, 0, true),
	}
	list := []NLRI{{AFI: AFIL2VPN, SAFI: SAFIEVPN, EVPN: route}}
	encoded, err := EncodeNLRIList(nil, AFIL2VPN, SAFIEVPN, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIL2VPN, SAFIEVPN, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	got := decoded[0].EVPN
	if got == nil || !got.MAC.Equal(route.MAC) {
		t.Fatalf("MAC round-trip mismatch: %+v", got)
	}
	if got.IP.String() != "10.0.0.1/32" {
		t.Fatalf("expected 10.0.0.1/32, got %s", got.IP.String())
	}
	if got.Label.Value() != 500 {
		t.Fatalf("expected label value 500, got %d", got.Label.Value())
	}
}

func TestNLRI_EVPNUnknownRouteTypePassthrough(t *testing.T) {
	raw := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	list := []NLRI{{AFI: AFIL2VPN, SAFI: SAFIEVPN, EVPN: &EVPNRoute{RouteType: 99, Unknown: raw}}}
	encoded, err := EncodeNLRIList(nil, AFIL2VPN, SAFIEVPN, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIL2VPN, SAFIEVPN, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if !bytes.Equal(decoded[0].EVPN.Unknown, raw) {
		t.Fatalf("expected passthrough payload %x, got %x", raw, decoded[0].EVPN.Unknown)
	}
}

func TestNLRI_VPLSRoundTrip(t *testing.T) {
	rd := addr.NewRDAS2(64496, 7)
	route := &VPLSRoute{RD: rd, VEID: 5, VEBlockOffset: 1, VEBlockSize: 10, Label: addr.NewLabel(200, 0, true)}
	list := []NLRI{{AFI: AFIL2VPN, SAFI: SAFIVPLS, VPLS: route}}
	encoded, err := EncodeNLRIList(nil, AFIL2VPN, SAFIVPLS, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIL2VPN, SAFIVPLS, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if decoded[0].VPLS.VEID != 5 || decoded[0].VPLS.VEBlockSize != 10 {
		t.Fatalf("VPLS round-trip mismatch: %+v", decoded[0].VPLS)
	}
}

func TestNLRI_MDTRoundTrip(t *testing.T) {
	rd := addr.NewRDAS2(64496, 9)
	list := []NLRI{{
		AFI:       AFIIPv4,
		SAFI:      SAFIMDT,
		RD:        &rd,
		MDTSource: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(10, 0, 0, 1).To4(), 32),
		MDTGroup:  addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(232, 0, 0, 1).To4(), 32),
	}}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIMDT, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIMDT, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if decoded[0].MDTGroup.String() != "232.0.0.1/32" {
		t.Fatalf("expected group 232.0.0.1/32, got %s", decoded[0].MDTGroup.String())
	}
}

func TestNLRI_MVPNOpaquePassthrough(t *testing.T) {
	list := []NLRI{{AFI: AFIIPv4, SAFI: SAFIMVPN, OpaqueType: 3, Opaque: []byte{1, 2, 3, 4}}}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIMVPN, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIMVPN, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	if decoded[0].OpaqueType != 3 || !bytes.Equal(decoded[0].Opaque, []byte{1, 2, 3, 4}) {
		t.Fatalf("MVPN passthrough mismatch: %+v", decoded[0])
	}
}

func TestNLRI_FlowspecPrefixComponentRoundTrip(t *testing.T) {
	components := []FlowspecComponent{
		{Type: FlowspecDestinationPrefix, Prefix: addr.NewBgpNet(addr.FamilyIPv4, net.IPv4(203, 0, 113, 0).To4(), 24)},
		{Type: 3, Ops: []FlowspecOp{{Op: 0x81, Value: []byte{6}}}}, // protocol == TCP, EOL
	}
	list := []NLRI{{AFI: AFIIPv4, SAFI: SAFIFlowspec, Flowspec: components}}
	encoded, err := EncodeNLRIList(nil, AFIIPv4, SAFIFlowspec, list, NLRIMode{})
	if err != nil {
		t.Fatalf("EncodeNLRIList: %v", err)
	}
	decoded, err := DecodeNLRIList(AFIIPv4, SAFIFlowspec, encoded, NLRIMode{})
	if err != nil {
		t.Fatalf("DecodeNLRIList: %v", err)
	}
	got := decoded[0].Flowspec
	if len(got) != 2 {
		t.Fatalf("expected 2 components, got %d", len(got))
	}
	if got[0].Prefix.String() != "203.0.113.0/24" {
		t.Fatalf("expected 203.0.113.0/24, got %s", got[0].Prefix.String())
	}
	if len(got[1].Ops) != 1 || got[1].Ops[0].Value[0] != 6 {
		t.Fatalf("operator component mismatch: %+v", got[1])
	}
}

func TestNLRI_UnsupportedAFISAFI(t *testing.T) {
	_, err := DecodeNLRIList(AFI(9999), SAFI(9), nil, NLRIMode{})
	if err == nil {
		t.Fatal("expected error for unsupported (AFI, SAFI)")
	}
}

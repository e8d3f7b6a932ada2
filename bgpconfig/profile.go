// Package bgpconfig loads a session profile from YAML plus an
// environment overlay and converts it into the bgp.SessionConfig DTO
// that bgp.NewSessionParameters consumes. It is the only package in
// this module that touches a filesystem or environment variable; the
// codec core (bgp, bmp, internal/wire, addr) never imports
// it and remains pure.
package bgpconfig

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/route-beacon/bgpcodec/bgp"
)

// Profile is the top-level loaded document.
type Profile struct {
	Service ServiceProfile `koanf:"service"`
	Session SessionProfile `koanf:"session"`
}

// ServiceProfile carries the process-level settings a caller's own
// bootstrap code typically wants alongside the session config.
type ServiceProfile struct {
	LogLevel string `koanf:"log_level"`
}

// SessionProfile is the YAML-facing shape of a bgp.SessionConfig:
// scalar fields map directly, and Capabilities is a list of short
// strings (e.g. "4octet-asn", "mp-ipv6-unicast", "addpath:ipv4-unicast:both")
// expanded into bgp.Capability values by SessionConfig.
type SessionProfile struct {
	LocalASN      uint32   `koanf:"local_asn"`
	HoldTime      uint16   `koanf:"hold_time"`
	RouterID      string   `koanf:"router_id"`
	TransportMode string   `koanf:"transport_mode"`
	Capabilities  []string `koanf:"capabilities"`
}

// Load reads path (if non-empty) as YAML, then overlays environment
// variables prefixed BGPCODEC_ (double underscore separates nesting:
// BGPCODEC_SESSION__LOCAL_ASN -> session.local_asn), applies defaults,
// and validates the result.
func Load(path string) (*Profile, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("bgpconfig: loading file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("BGPCODEC_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "BGPCODEC_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil); err != nil {
		return nil, fmt.Errorf("bgpcodec: loading env overlay: %w", err)
	}

	p := &Profile{
		Service: ServiceProfile{LogLevel: "info"},
		Session: SessionProfile{
			HoldTime:      180,
			TransportMode: "ipv4",
		},
	}

	if err := k.Unmarshal("", p); err != nil {
		return nil, fmt.Errorf("bgpcodec: unmarshaling profile: %w", err)
	}

	if len(p.Session.Capabilities) == 1 && strings.Contains(p.Session.Capabilities[0], ",") {
		p.Session.Capabilities = strings.Split(p.Session.Capabilities[0], ",")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Validate checks the fields a SessionConfig conversion depends on.
func (p *Profile) Validate() error {
	if p.Session.LocalASN == 0 {
		return fmt.Errorf("bgpconfig: session.local_asn is required")
	}
	if p.Session.HoldTime == 0 {
		return fmt.Errorf("bgpconfig: session.hold_time must be > 0")
	}
	if p.Session.RouterID == "" {
		return fmt.Errorf("bgpconfig: session.router_id is required")
	}
	if net.ParseIP(p.Session.RouterID) == nil {
		return fmt.Errorf("bgpconfig: session.router_id %q is not a valid IP address", p.Session.RouterID)
	}
	switch p.Session.TransportMode {
	case "ipv4", "ipv6":
	default:
		return fmt.Errorf("bgpconfig: session.transport_mode must be ipv4 or ipv6, got %q", p.Session.TransportMode)
	}
	for _, c := range p.Session.Capabilities {
		if _, err := parseCapability(c); err != nil {
			return fmt.Errorf("bgpconfig: session.capabilities: %w", err)
		}
	}
	return nil
}

// SessionConfig converts the loaded profile into the typed DTO
// bgp.NewSessionParameters consumes.
func (p *Profile) SessionConfig() (bgp.SessionConfig, error) {
	transport := bgp.TransportIPv4
	if p.Session.TransportMode == "ipv6" {
		transport = bgp.TransportIPv6
	}

	caps := make([]bgp.Capability, 0, len(p.Session.Capabilities))
	for _, c := range p.Session.Capabilities {
		parsed, err := parseCapability(c)
		if err != nil {
			return bgp.SessionConfig{}, err
		}
		if parsed.Code == bgp.CapFourOctetASN {
			parsed.ASN = p.Session.LocalASN
		}
		caps = append(caps, parsed)
	}

	return bgp.SessionConfig{
		LocalASN:     p.Session.LocalASN,
		HoldTime:     p.Session.HoldTime,
		RouterID:     net.ParseIP(p.Session.RouterID),
		Transport:    transport,
		Capabilities: caps,
	}, nil
}

// parseCapability interprets one short capability string:
//
//	"4octet-asn"                         -> CapFourOctetASN (local ASN)
//	"route-refresh"                      -> CapRouteRefresh
//	"enhanced-route-refresh"             -> CapEnhancedRouteRefresh
//	"mp-<afi>-<safi>"                    -> CapMultiprotocol
//	"addpath:<afi>-<safi>:<direction>"   -> CapAddPath (direction: send, receive, both)
func parseCapability(s string) (bgp.Capability, error) {
	switch {
	case s == "4octet-asn":
		return bgp.Capability{Code: bgp.CapFourOctetASN}, nil
	case s == "route-refresh":
		return bgp.Capability{Code: bgp.CapRouteRefresh}, nil
	case s == "enhanced-route-refresh":
		return bgp.Capability{Code: bgp.CapEnhancedRouteRefresh}, nil
	case strings.HasPrefix(s, "mp-"):
		afi, safi, err := parseAFISAFI(strings.TrimPrefix(s, "mp-"))
		if err != nil {
			return bgp.Capability{}, err
		}
		return bgp.Capability{Code: bgp.CapMultiprotocol, MPAFI: afi, MPSAFI: safi}, nil
	case strings.HasPrefix(s, "addpath:"):
		parts := strings.Split(strings.TrimPrefix(s, "addpath:"), ":")
		if len(parts) != 2 {
			return bgp.Capability{}, fmt.Errorf("malformed addpath capability %q (want addpath:<afi>-<safi>:<direction>)", s)
		}
		afi, safi, err := parseAFISAFI(parts[0])
		if err != nil {
			return bgp.Capability{}, err
		}
		dir, err := parseAddPathDirection(parts[1])
		if err != nil {
			return bgp.Capability{}, err
		}
		return bgp.Capability{
			Code:     bgp.CapAddPath,
			AddPaths: []bgp.AddPathEntry{{AFI: afi, SAFI: safi, Direction: dir}},
		}, nil
	default:
		return bgp.Capability{}, fmt.Errorf("unrecognized capability %q", s)
	}
}

func parseAFISAFI(s string) (bgp.AFI, bgp.SAFI, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed afi-safi %q", s)
	}
	afi, err := parseAFI(parts[0])
	if err != nil {
		return 0, 0, err
	}
	safi, err := parseSAFI(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return afi, safi, nil
}

func parseAFI(s string) (bgp.AFI, error) {
	switch s {
	case "ipv4":
		return bgp.AFIIPv4, nil
	case "ipv6":
		return bgp.AFIIPv6, nil
	case "l2vpn":
		return bgp.AFIL2VPN, nil
	default:
		if n, err := strconv.ParseUint(s, 10, 16); err == nil {
			return bgp.AFI(n), nil
		}
		return 0, fmt.Errorf("unrecognized afi %q", s)
	}
}

func parseSAFI(s string) (bgp.SAFI, error) {
	switch s {
	case "unicast":
		return bgp.SAFIUnicast, nil
	case "multicast":
		return bgp.SAFIMulticast, nil
	case "labeled-unicast":
		return bgp.SAFILabeledUnicast, nil
	case "mvpn":
		return bgp.SAFIMVPN, nil
	case "vpls":
		return bgp.SAFIVPLS, nil
	case "mdt":
		return bgp.SAFIMDT, nil
	case "evpn":
		return bgp.SAFIEVPN, nil
	case "vpn-unicast":
		return bgp.SAFIVPNUnicast, nil
	case "vpn-multicast":
		return bgp.SAFIVPNMulticast, nil
	case "flowspec":
		return bgp.SAFIFlowspec, nil
	default:
		if n, err := strconv.ParseUint(s, 10, 8); err == nil {
			return bgp.SAFI(n), nil
		}
		return 0, fmt.Errorf("unrecognized safi %q", s)
	}
}

func parseAddPathDirection(s string) (bgp.AddPathDirection, error) {
	switch s {
	case "send":
		return bgp.AddPathSend, nil
	case "receive":
		return bgp.AddPathReceive, nil
	case "both":
		return bgp.AddPathBoth, nil
	default:
		return 0, fmt.Errorf("unrecognized addpath direction %q", s)
	}
}

// Package telemetry provides the optional diagnostics facade threaded
// through bgp.SessionParameters and bmp.Cache: structured logging via
// zap and decode-outcome counters via the Prometheus client. The zero
// value, Hooks{}, is a valid no-op — nothing in bgp or bmp requires a
// non-zero Hooks to function.
package telemetry

import (
	"strconv"

	"go.uber.org/zap"
)

// Hooks bundles the optional logger and metrics a caller may attach
// to a codec session. Fields are nil-checked throughout; a zero value
// performs no logging and no counting.
type Hooks struct {
	Log     *zap.Logger
	Metrics *Counters
}

// Infof logs at info level if a logger is attached.
func (h Hooks) Infof(msg string, fields ...zap.Field) {
	if h.Log != nil {
		h.Log.Info(msg, fields...)
	}
}

// Warnf logs at warn level if a logger is attached.
func (h Hooks) Warnf(msg string, fields ...zap.Field) {
	if h.Log != nil {
		h.Log.Warn(msg, fields...)
	}
}

// UnknownAttribute records a path-attribute type code the codec did
// not recognize and preserved opaquely.
func (h Hooks) UnknownAttribute(typeCode uint8) {
	if h.Metrics != nil {
		h.Metrics.UnknownAttributes.WithLabelValues(strconv.FormatUint(uint64(typeCode), 10)).Inc()
	}
	h.Warnf("bgpcodec: unknown path attribute", zap.Uint8("type", typeCode))
}

// UnknownCapability records a capability code the codec did not
// recognize and preserved opaquely.
func (h Hooks) UnknownCapability(code uint8) {
	if h.Metrics != nil {
		h.Metrics.UnknownCapabilities.WithLabelValues(strconv.FormatUint(uint64(code), 10)).Inc()
	}
	h.Warnf("bgpcodec: unknown capability", zap.Uint8("code", code))
}

// UnknownEVPNRouteType records an EVPN route type the codec did not
// recognize and preserved opaquely.
func (h Hooks) UnknownEVPNRouteType(routeType uint8) {
	if h.Metrics != nil {
		h.Metrics.UnknownEVPNRouteTypes.WithLabelValues(strconv.FormatUint(uint64(routeType), 10)).Inc()
	}
	h.Warnf("bgpcodec: unknown evpn route type", zap.Uint8("route_type", routeType))
}

// DecodeError records a fatal or recoverable decode failure at a
// named stage ("header", "open", "update-attrs", "update-nlri", "bmp").
func (h Hooks) DecodeError(stage, reason string) {
	if h.Metrics != nil {
		h.Metrics.DecodeErrors.WithLabelValues(stage, reason).Inc()
	}
}

// BMPContextMiss records a RouteMonitoring decode that found no
// cached PeerUp context and fell back to conservative defaults.
func (h Hooks) BMPContextMiss() {
	if h.Metrics != nil {
		h.Metrics.BMPContextMisses.Inc()
	}
	h.Warnf("bgpcodec: bmp route monitoring decoded without peer context")
}

// AddPathNLRI records a decoded AddPath-framed NLRI block for a given
// AFI/SAFI pair.
func (h Hooks) AddPathNLRI(afi, safi uint16) {
	if h.Metrics != nil {
		h.Metrics.AddPathNLRITotal.WithLabelValues(strconv.FormatUint(uint64(afi), 10), strconv.FormatUint(uint64(safi), 10)).Inc()
	}
}

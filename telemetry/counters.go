package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Counters bundles the Prometheus instruments the codec increments on
// notable (never fatal) decode outcomes, named the way the teacher
// repo names its own instruments: "bgpcodec_<concern>_total".
type Counters struct {
	UnknownAttributes     *prometheus.CounterVec
	UnknownCapabilities    *prometheus.CounterVec
	UnknownEVPNRouteTypes  *prometheus.CounterVec
	DecodeErrors           *prometheus.CounterVec
	BMPContextMisses       prometheus.Counter
	AddPathNLRITotal       *prometheus.CounterVec
}

// NewCounters constructs a fresh Counters set. Register() must be
// called before use if the caller wants them exposed on a registry.
func NewCounters() *Counters {
	return &Counters{
		UnknownAttributes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bgpcodec_unknown_attributes_total",
				Help: "Path attribute type codes decoded as opaque unknowns.",
			},
			[]string{"type"},
		),
		UnknownCapabilities: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bgpcodec_unknown_capabilities_total",
				Help: "OPEN capability codes decoded as opaque unknowns.",
			},
			[]string{"code"},
		),
		UnknownEVPNRouteTypes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bgpcodec_unknown_evpn_route_types_total",
				Help: "EVPN NLRI route types decoded as opaque unknowns.",
			},
			[]string{"route_type"},
		),
		DecodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bgpcodec_decode_errors_total",
				Help: "Decode failures by stage and reason.",
			},
			[]string{"stage", "reason"},
		),
		BMPContextMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "bgpcodec_bmp_context_misses_total",
				Help: "RouteMonitoring messages decoded without a cached PeerUp context.",
			},
		),
		AddPathNLRITotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bgpcodec_addpath_nlri_total",
				Help: "NLRI blocks decoded with AddPath framing, by AFI/SAFI.",
			},
			[]string{"afi", "safi"},
		),
	}
}

// Register registers every instrument in c with reg.
func (c *Counters) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.UnknownAttributes,
		c.UnknownCapabilities,
		c.UnknownEVPNRouteTypes,
		c.DecodeErrors,
		c.BMPContextMisses,
		c.AddPathNLRITotal,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

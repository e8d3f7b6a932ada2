package bmp

import (
	"sync"

	"github.com/route-beacon/bgpcodec/bgp"
	"github.com/route-beacon/bgpcodec/telemetry"
)

// PeerKey identifies a BMP peer for the context cache (spec §3 "BMP
// context cache"): peer type, peer distinguisher, peer address, peer
// ASN, and router ID together disambiguate peers sharing an address
// across different peer distinguishers (RD-keyed VRF peers, Loc-RIB).
type PeerKey struct {
	PeerType      PeerType
	Distinguisher [8]byte
	Address       [16]byte
	ASN           uint32
	RouterID      [4]byte
}

// PeerKeyFrom builds a PeerKey from a decoded per-peer header.
func PeerKeyFrom(h PerPeerHeader) PeerKey {
	k := PeerKey{PeerType: h.PeerType, Distinguisher: h.Distinguisher, ASN: h.ASN}
	copy(k.Address[:], h.Address.To16())
	copy(k.RouterID[:], h.RouterID.To4())
	return k
}

// Cache maps a PeerKey to the session parameters captured from that
// peer's PeerUpNotification. It is the only stateful element of the
// library (spec §5): single-writer (PeerUp/PeerDown feeding messages
// in arrival order), multi-reader (RouteMonitoring decode). Only a
// Cache from NewSyncCache enforces that discipline with a lock;
// NewCache returns an unsynchronized map for callers who serialize
// access themselves.
type Cache struct {
	mu      *sync.RWMutex
	entries map[PeerKey]*bgp.SessionParameters

	Hooks telemetry.Hooks
}

// NewCache returns a Cache with no internal locking: safe only when
// the caller serializes all access (e.g. a single decode goroutine).
func NewCache() *Cache {
	return &Cache{entries: make(map[PeerKey]*bgp.SessionParameters)}
}

// NewSyncCache returns a Cache guarded by a sync.RWMutex, safe for the
// single-writer/multi-reader discipline spec §5 describes.
func NewSyncCache() *Cache {
	return &Cache{mu: &sync.RWMutex{}, entries: make(map[PeerKey]*bgp.SessionParameters)}
}

// Put records the session parameters for key, replacing any existing
// entry (called on PeerUp).
func (c *Cache) Put(key PeerKey, sp *bgp.SessionParameters) {
	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	c.entries[key] = sp
}

// Get returns the session parameters for key, if present.
func (c *Cache) Get(key PeerKey) (*bgp.SessionParameters, bool) {
	if c.mu != nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	sp, ok := c.entries[key]
	return sp, ok
}

// Delete removes key's entry (called on PeerDown, or explicitly by a
// caller ending a peer's lifecycle).
func (c *Cache) Delete(key PeerKey) {
	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	delete(c.entries, key)
}

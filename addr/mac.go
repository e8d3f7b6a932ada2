package addr

import "fmt"

// MAC is a 6-octet Ethernet MAC address, as carried in EVPN MAC/IP
// Advertisement NLRI.
type MAC [6]byte

func (m MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// Equal reports structural equality.
func (m MAC) Equal(o MAC) bool {
	return m == o
}

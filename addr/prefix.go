// Package addr provides the address-family value types shared by the
// bgp and bmp packages: IPv4/IPv6 network prefixes, MAC addresses,
// route distinguishers, and MPLS label stacks. Comparison is
// structural; String() follows conventional notations.
package addr

import (
	"fmt"
	"net"

	"github.com/route-beacon/bgpcodec/internal/wire"
)

// Family distinguishes the address width a BgpNet carries.
type Family uint8

const (
	FamilyIPv4 Family = 4
	FamilyIPv6 Family = 6
)

// ByteLen returns the wire address width in bytes for the family.
func (f Family) ByteLen() int {
	if f == FamilyIPv6 {
		return 16
	}
	return 4
}

// BgpNet is a network prefix: either an IPv4 or IPv6 address plus a
// prefix length in bits. The address is always stored zero-padded to
// the family's full width, regardless of how many bits the prefix
// length declares are significant.
type BgpNet struct {
	Family Family
	Addr   net.IP
	Length int // prefix length in bits
}

// NewBgpNet builds a BgpNet, zero-padding addr to the family width via
// the same ceil(length/8)-trailing-bytes rule the wire codec uses to
// read a prefix off the wire: only the first ceil(length/8) bytes of
// addr are kept and the rest of the address is zero; a short
// or over-length addr/length pairing falls back to a plain zero-pad
// rather than failing, since NewBgpNet has no error return.
func NewBgpNet(family Family, addr net.IP, length int) BgpNet {
	padded, _, err := wire.ReadPrefixBytes(addr, length, family.ByteLen())
	if err != nil {
		padded = make([]byte, family.ByteLen())
		copy(padded, addr)
	}
	return BgpNet{Family: family, Addr: padded, Length: length}
}

func (n BgpNet) String() string {
	if n.Addr == nil {
		return fmt.Sprintf("<nil>/%d", n.Length)
	}
	return fmt.Sprintf("%s/%d", n.Addr.String(), n.Length)
}

// Equal reports structural equality: same family, same length, and
// identical address bytes (including the zero-padded tail).
func (n BgpNet) Equal(o BgpNet) bool {
	if n.Family != o.Family || n.Length != o.Length {
		return false
	}
	return n.Addr.Equal(o.Addr)
}

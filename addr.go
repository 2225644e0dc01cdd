package sockets

import (
	"strconv"

	"github.com/mgerhold/sockets/pkg/sys"
)

// AddressFamily selects the IP protocol version of an endpoint.
// AddressFamilyUnspecified is only valid when dialing, it lets the resolver
// choose; accepted and resolved addresses are always concrete.
type AddressFamily uint8

const (
	AddressFamilyUnspecified AddressFamily = iota
	AddressFamilyIpv4
	AddressFamilyIpv6
)

func (f AddressFamily) String() string {
	switch f {
	case AddressFamilyIpv4:
		return "ipv4"
	case AddressFamilyIpv6:
		return "ipv6"
	default:
		return "unspecified"
	}
}

func (f AddressFamily) sysFamily() int {
	switch f {
	case AddressFamilyIpv4:
		return sys.AFInet
	case AddressFamilyIpv6:
		return sys.AFInet6
	default:
		return sys.AFUnspec
	}
}

// Address describes one endpoint of a connection.
type Address struct {
	Family AddressFamily
	Host   string
	Port   uint16
}

// String renders the canonical form: "addr:port" for IPv4, "[addr]:port" for
// IPv6, "<unspecified>" otherwise.
func (a Address) String() string {
	switch a.Family {
	case AddressFamilyIpv4:
		return a.Host + ":" + strconv.Itoa(int(a.Port))
	case AddressFamilyIpv6:
		return "[" + a.Host + "]:" + strconv.Itoa(int(a.Port))
	default:
		return "<unspecified>"
	}
}

func addressFromRaw(raw sys.RawAddr) (addr Address) {
	switch raw.Family {
	case sys.AFInet:
		addr.Family = AddressFamilyIpv4
	case sys.AFInet6:
		addr.Family = AddressFamilyIpv6
	default:
		addr.Family = AddressFamilyUnspecified
		return
	}
	addr.Host = raw.IP
	addr.Port = raw.Port
	return
}

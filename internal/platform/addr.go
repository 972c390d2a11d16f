package platform

import (
	"net"
	"net/netip"
)

func ipNetToPrefix(n *net.IPNet) (netip.Prefix, bool) {
	if n == nil {
		return netip.Prefix{}, false
	}

	addr, ok := ipToAddr(n.IP)
	if !ok {
		return netip.Prefix{}, false
	}

	ones, _ := n.Mask.Size()
	return netip.PrefixFrom(addr, ones), true
}

func prefixToIPNet(p netip.Prefix) *net.IPNet {
	return &net.IPNet{
		IP:   p.Addr().AsSlice(),
		Mask: net.CIDRMask(p.Bits(), 32),
	}
}

func ipToAddr(ip net.IP) (netip.Addr, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return netip.Addr{}, false
	}

	return netip.AddrFrom4([4]byte(v4)), true
}

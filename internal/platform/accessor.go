package platform

import (
	"context"
	"net/netip"
	"sync"

	"github.com/rs/zerolog"
)

var (
	acc     Accessor
	accOnce sync.Once
)

// InterfaceInfo is the routing-relevant state of a single network interface.
type InterfaceInfo struct {
	Index       int
	Alias       string
	Metric      int
	Connected   bool
	IPv4        bool
	DHCPEnabled bool
}

// Accessor exposes the OS network configuration primitives.
//
// All reads are independent queries; the OS may change interface state
// between two calls and no call provides atomicity across the set.
type Accessor interface {
	// DefaultRouteInterfaces returns the indices of interfaces that own a
	// route for the default (0.0.0.0/0) destination. May contain duplicates.
	DefaultRouteInterfaces(ctx context.Context) ([]int, error)

	// InterfaceInfo returns routing metadata for a single interface.
	InterfaceInfo(ctx context.Context, index int) (InterfaceInfo, error)

	// Address returns the interface's assigned IPv4 address and prefix
	// length. The zero Prefix means no address is assigned.
	Address(ctx context.Context, index int) (netip.Prefix, error)

	// Gateway returns the next hop of the interface's default route.
	// The zero Addr means the interface has no default route.
	Gateway(ctx context.Context, index int) (netip.Addr, error)

	// DNSServers returns the DNS servers configured for the interface.
	DNSServers(ctx context.Context, alias string) ([]netip.Addr, error)

	// DNSSuffix returns the connection-specific DNS suffix, empty if none.
	DNSSuffix(ctx context.Context, alias string) (string, error)

	// RemoveAddress removes all IPv4 address assignments from the interface.
	RemoveAddress(ctx context.Context, index int) error

	// RemoveDefaultRoute removes the interface's default route, if any.
	RemoveDefaultRoute(ctx context.Context, index int) error

	// AddAddress assigns an IPv4 address to the interface and installs a
	// default route through gw. An invalid gw skips route installation.
	AddAddress(ctx context.Context, index int, prefix netip.Prefix, gw netip.Addr) error

	// SetDNSServers replaces the interface's DNS server list.
	// An empty list clears it.
	SetDNSServers(ctx context.Context, alias string, servers []netip.Addr) error

	// SetDNSSuffix replaces the connection-specific DNS suffix.
	// An empty suffix clears it.
	SetDNSSuffix(ctx context.Context, alias string, suffix string) error

	// EnableDHCP switches the interface to DHCP-managed addressing.
	EnableDHCP(ctx context.Context, index int) error

	// ReleaseLease releases the interface's current DHCP lease, if any.
	ReleaseLease(ctx context.Context, index int) error

	// RenewLease acquires a fresh DHCP lease and applies it.
	RenewLease(ctx context.Context, index int) error
}

// GetAccessor returns the global platform network accessor.
func GetAccessor(logger zerolog.Logger) Accessor {
	accOnce.Do(func() {
		acc = provideSystemAccessor(logger)
	})

	return acc
}

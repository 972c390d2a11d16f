package platform

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
	"github.com/rs/zerolog"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const (
	resolvectlCmd = "resolvectl"

	defaultLeaseTime = time.Hour
)

type linuxAccessor struct {
	log       zerolog.Logger
	cmdRunner CommandRunner

	mu         sync.Mutex
	dhcpClient *nclient4.Client
	lease      *nclient4.Lease
}

func newLinuxAccessor(logger zerolog.Logger, runner CommandRunner) *linuxAccessor {
	return &linuxAccessor{
		log:       logger.With().Str("context", "netlink").Logger(),
		cmdRunner: runner,
	}
}

func (a *linuxAccessor) DefaultRouteInterfaces(_ context.Context) ([]int, error) {
	routes, err := defaultRoutes()
	if err != nil {
		return nil, err
	}

	indices := make([]int, 0, len(routes))
	for _, r := range routes {
		indices = append(indices, r.LinkIndex)
	}

	return indices, nil
}

func (a *linuxAccessor) InterfaceInfo(_ context.Context, index int) (InterfaceInfo, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("failed to query interface %d: %w", index, err)
	}

	attrs := link.Attrs()
	info := InterfaceInfo{
		Index:     index,
		Alias:     attrs.Name,
		Connected: isLinkUp(attrs),
	}

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("failed to list addresses of %q: %w", attrs.Name, err)
	}

	info.IPv4 = len(addrs) > 0
	for _, addr := range addrs {
		// Leased addresses carry finite lifetimes, static ones are permanent.
		if addr.Flags&unix.IFA_F_PERMANENT == 0 {
			info.DHCPEnabled = true
			break
		}
	}

	routes, err := defaultRoutes()
	if err != nil {
		return InterfaceInfo{}, err
	}

	metric := -1
	for _, r := range routes {
		if r.LinkIndex != index {
			continue
		}
		if metric < 0 || r.Priority < metric {
			metric = r.Priority
		}
	}
	if metric >= 0 {
		info.Metric = metric
	}

	return info, nil
}

func (a *linuxAccessor) Address(_ context.Context, index int) (netip.Prefix, error) {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return netip.Prefix{}, err
	}

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return netip.Prefix{}, err
	}

	for _, addr := range addrs {
		if p, ok := ipNetToPrefix(addr.IPNet); ok {
			return p, nil
		}
	}

	return netip.Prefix{}, nil
}

func (a *linuxAccessor) Gateway(_ context.Context, index int) (netip.Addr, error) {
	routes, err := defaultRoutes()
	if err != nil {
		return netip.Addr{}, err
	}

	for _, r := range routes {
		if r.LinkIndex != index {
			continue
		}
		if gw, ok := ipToAddr(r.Gw); ok {
			return gw, nil
		}
	}

	return netip.Addr{}, nil
}

func (a *linuxAccessor) DNSServers(ctx context.Context, alias string) ([]netip.Addr, error) {
	out, err := a.cmdRunner.RunCommandOutput(ctx, resolvectlCmd, "dns", alias)
	if err != nil {
		return nil, fmt.Errorf("failed to query DNS servers of %q: %w", alias, err)
	}

	var servers []netip.Addr
	for _, field := range strings.Fields(trimLinkPrefix(out)) {
		addr, err := netip.ParseAddr(field)
		if err != nil || !addr.Is4() {
			continue
		}
		servers = append(servers, addr)
	}

	return servers, nil
}

func (a *linuxAccessor) DNSSuffix(ctx context.Context, alias string) (string, error) {
	out, err := a.cmdRunner.RunCommandOutput(ctx, resolvectlCmd, "domain", alias)
	if err != nil {
		return "", fmt.Errorf("failed to query DNS suffix of %q: %w", alias, err)
	}

	fields := strings.Fields(trimLinkPrefix(out))
	if len(fields) == 0 {
		return "", nil
	}

	return fields[0], nil
}

func (a *linuxAccessor) RemoveAddress(_ context.Context, index int) error {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return err
	}

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return err
	}

	for _, addr := range addrs {
		addr := addr
		a.log.Debug().Str("addr", addr.IPNet.String()).Msg("removing address")
		if err := netlink.AddrDel(link, &addr); err != nil {
			return fmt.Errorf("failed to remove address %s: %w", addr.IPNet, err)
		}
	}

	return nil
}

func (a *linuxAccessor) RemoveDefaultRoute(_ context.Context, index int) error {
	routes, err := defaultRoutes()
	if err != nil {
		return err
	}

	for _, r := range routes {
		if r.LinkIndex != index {
			continue
		}
		r := r
		a.log.Debug().Int("ifindex", index).Msg("removing default route")
		if err := netlink.RouteDel(&r); err != nil {
			return fmt.Errorf("failed to remove default route: %w", err)
		}
	}

	return nil
}

func (a *linuxAccessor) AddAddress(_ context.Context, index int, prefix netip.Prefix, gw netip.Addr) error {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return err
	}

	addr := netlink.Addr{IPNet: prefixToIPNet(prefix)}
	if err := netlink.AddrAdd(link, &addr); err != nil {
		return fmt.Errorf("failed to assign address %s: %w", prefix, err)
	}

	if !gw.IsValid() {
		return nil
	}

	route := netlink.Route{
		LinkIndex: index,
		Dst:       defaultDst(),
		Gw:        gw.AsSlice(),
	}
	if err := netlink.RouteAdd(&route); err != nil {
		return fmt.Errorf("failed to install default route via %s: %w", gw, err)
	}

	return nil
}

func (a *linuxAccessor) SetDNSServers(ctx context.Context, alias string, servers []netip.Addr) error {
	args := []string{"dns", alias}
	for _, s := range servers {
		args = append(args, s.String())
	}
	if len(servers) == 0 {
		args = append(args, "")
	}

	return a.cmdRunner.RunCommand(ctx, resolvectlCmd, args...)
}

func (a *linuxAccessor) SetDNSSuffix(ctx context.Context, alias string, suffix string) error {
	if suffix == "" {
		return a.cmdRunner.RunCommand(ctx, resolvectlCmd, "domain", alias, "")
	}

	return a.cmdRunner.RunCommand(ctx, resolvectlCmd, "domain", alias, suffix)
}

func (a *linuxAccessor) EnableDHCP(_ context.Context, index int) error {
	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dhcpClient != nil {
		return nil
	}

	client, err := nclient4.New(link.Attrs().Name)
	if err != nil {
		return fmt.Errorf("failed to start DHCP client on %q: %w", link.Attrs().Name, err)
	}

	a.dhcpClient = client
	return nil
}

func (a *linuxAccessor) ReleaseLease(_ context.Context, index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dhcpClient == nil || a.lease == nil {
		a.log.Debug().Int("ifindex", index).Msg("no active lease to release")
		return nil
	}

	if err := a.dhcpClient.Release(a.lease); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}

	a.lease = nil
	return nil
}

func (a *linuxAccessor) RenewLease(ctx context.Context, index int) error {
	a.mu.Lock()
	client := a.dhcpClient
	a.mu.Unlock()
	if client == nil {
		return fmt.Errorf("DHCP is not enabled on interface %d", index)
	}

	lease, err := client.Request(ctx)
	if err != nil {
		return fmt.Errorf("DHCP exchange failed: %w", err)
	}

	a.mu.Lock()
	a.lease = lease
	a.mu.Unlock()

	return a.applyLease(ctx, index, lease)
}

// applyLease installs the addressing and DNS settings carried by a freshly
// acknowledged lease.
func (a *linuxAccessor) applyLease(ctx context.Context, index int, lease *nclient4.Lease) error {
	ack := lease.ACK

	link, err := netlink.LinkByIndex(index)
	if err != nil {
		return err
	}

	if err := a.RemoveAddress(ctx, index); err != nil {
		return err
	}

	leaseTime := ack.IPAddressLeaseTime(defaultLeaseTime)
	addr := netlink.Addr{
		IPNet: &net.IPNet{
			IP:   ack.YourIPAddr,
			Mask: ack.SubnetMask(),
		},
		ValidLft:    int(leaseTime.Seconds()),
		PreferedLft: int(leaseTime.Seconds()),
	}

	a.log.Info().
		Str("addr", addr.IPNet.String()).
		Dur("lease_time", leaseTime).
		Msg("applying DHCP lease")

	if err := netlink.AddrAdd(link, &addr); err != nil {
		return fmt.Errorf("failed to apply leased address %s: %w", addr.IPNet, err)
	}

	if routers := ack.Router(); len(routers) > 0 {
		route := netlink.Route{
			LinkIndex: index,
			Dst:       defaultDst(),
			Gw:        routers[0],
		}
		if err := netlink.RouteAdd(&route); err != nil {
			return fmt.Errorf("failed to install leased default route: %w", err)
		}
	}

	var servers []netip.Addr
	for _, ip := range ack.DNS() {
		if s, ok := ipToAddr(ip); ok {
			servers = append(servers, s)
		}
	}
	if len(servers) > 0 {
		if err := a.SetDNSServers(ctx, link.Attrs().Name, servers); err != nil {
			return err
		}
	}

	if domain := ack.DomainName(); domain != "" {
		if err := a.SetDNSSuffix(ctx, link.Attrs().Name, domain); err != nil {
			return err
		}
	}

	return nil
}

func defaultRoutes() ([]netlink.Route, error) {
	routes, err := netlink.RouteListFiltered(netlink.FAMILY_V4, &netlink.Route{Dst: nil}, netlink.RT_FILTER_DST)
	if err != nil {
		return nil, fmt.Errorf("failed to query routing table: %w", err)
	}

	return routes, nil
}

func isLinkUp(attrs *netlink.LinkAttrs) bool {
	if attrs.OperState == netlink.OperUp {
		return true
	}

	// Some virtual links never report oper state.
	return attrs.OperState == netlink.OperUnknown && attrs.Flags&net.FlagUp != 0
}

// trimLinkPrefix strips the "Link N (name):" prefix resolvectl prepends to
// per-link values.
func trimLinkPrefix(out string) string {
	if i := strings.Index(out, ":"); i >= 0 {
		return out[i+1:]
	}

	return out
}

func defaultDst() *net.IPNet {
	return &net.IPNet{IP: net.IPv4zero, Mask: net.CIDRMask(0, 32)}
}

func provideSystemAccessor(logger zerolog.Logger) Accessor {
	return newLinuxAccessor(logger, GetCommandRunner(logger))
}

package platform

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/jackpal/gateway"
	"github.com/rs/zerolog"
)

const (
	ifconfigCmd     = "ifconfig"
	routeCmd        = "route"
	ipconfigCmd     = "ipconfig"
	networksetupCmd = "networksetup"

	// networksetup uses this literal to clear DNS settings.
	emptySetting = "Empty"

	// networksetup answers reads with this sentence when nothing is set.
	noneSetPrefix = "There aren't any"
)

type darwinAccessor struct {
	log       zerolog.Logger
	cmdRunner CommandRunner
}

func newDarwinAccessor(logger zerolog.Logger, runner CommandRunner) darwinAccessor {
	return darwinAccessor{
		log:       logger.With().Str("context", "netmgr").Logger(),
		cmdRunner: runner,
	}
}

func (a darwinAccessor) DefaultRouteInterfaces(_ context.Context) ([]int, error) {
	ifIP, err := gateway.DiscoverInterface()
	if err != nil {
		return nil, fmt.Errorf("failed to discover default route interface: %w", err)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipNet.IP.Equal(ifIP) {
				return []int{iface.Index}, nil
			}
		}
	}

	return nil, nil
}

func (a darwinAccessor) InterfaceInfo(ctx context.Context, index int) (InterfaceInfo, error) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return InterfaceInfo{}, fmt.Errorf("failed to query interface %d: %w", index, err)
	}

	info := InterfaceInfo{
		Index:     index,
		Alias:     iface.Name,
		Connected: iface.Flags&net.FlagUp != 0,
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return InterfaceInfo{}, err
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
			info.IPv4 = true
			break
		}
	}

	// A populated DHCP packet means the address came from a lease.
	out, err := a.cmdRunner.RunCommandOutput(ctx, ipconfigCmd, "getpacket", iface.Name)
	if err == nil && out != "" {
		info.DHCPEnabled = true
	}

	return info, nil
}

func (a darwinAccessor) Address(_ context.Context, index int) (netip.Prefix, error) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return netip.Prefix{}, err
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return netip.Prefix{}, err
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if p, ok := ipNetToPrefix(ipNet); ok {
			return p, nil
		}
	}

	return netip.Prefix{}, nil
}

func (a darwinAccessor) Gateway(_ context.Context, _ int) (netip.Addr, error) {
	gw, err := gateway.DiscoverGateway()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("failed to discover gateway: %w", err)
	}

	addr, ok := ipToAddr(gw)
	if !ok {
		return netip.Addr{}, nil
	}

	return addr, nil
}

func (a darwinAccessor) DNSServers(ctx context.Context, alias string) ([]netip.Addr, error) {
	out, err := a.cmdRunner.RunCommandOutput(ctx, networksetupCmd, "-getdnsservers", alias)
	if err != nil {
		return nil, fmt.Errorf("failed to query DNS servers of %q: %w", alias, err)
	}

	var servers []netip.Addr
	for _, field := range splitLines(out) {
		addr, err := netip.ParseAddr(field)
		if err != nil || !addr.Is4() {
			continue
		}
		servers = append(servers, addr)
	}

	return servers, nil
}

func (a darwinAccessor) DNSSuffix(ctx context.Context, alias string) (string, error) {
	out, err := a.cmdRunner.RunCommandOutput(ctx, networksetupCmd, "-getsearchdomains", alias)
	if err != nil {
		return "", fmt.Errorf("failed to query DNS suffix of %q: %w", alias, err)
	}

	lines := splitLines(out)
	if len(lines) == 0 {
		return "", nil
	}

	if strings.HasPrefix(lines[0], noneSetPrefix) {
		return "", nil
	}

	return lines[0], nil
}

func (a darwinAccessor) RemoveAddress(ctx context.Context, index int) error {
	prefix, err := a.Address(ctx, index)
	if err != nil {
		return err
	}
	if !prefix.IsValid() {
		return nil
	}

	alias, err := aliasByIndex(index)
	if err != nil {
		return err
	}

	return a.cmdRunner.RunCommand(
		ctx, ifconfigCmd,
		alias, "inet", prefix.Addr().String(), "delete",
	)
}

func (a darwinAccessor) RemoveDefaultRoute(ctx context.Context, _ int) error {
	return a.cmdRunner.RunCommand(
		ctx, routeCmd, "-q", "-n", "delete",
		"-inet", "default",
	)
}

func (a darwinAccessor) AddAddress(ctx context.Context, index int, prefix netip.Prefix, gw netip.Addr) error {
	alias, err := aliasByIndex(index)
	if err != nil {
		return err
	}

	err = a.cmdRunner.RunCommand(
		ctx, ifconfigCmd,
		alias, "inet", prefix.String(),
	)
	if err != nil {
		return err
	}

	if !gw.IsValid() {
		return nil
	}

	return a.cmdRunner.RunCommand(
		ctx, routeCmd, "-q", "-n", "add",
		"-inet", "default", gw.String(),
	)
}

func (a darwinAccessor) SetDNSServers(ctx context.Context, alias string, servers []netip.Addr) error {
	args := []string{"-setdnsservers", alias}
	if len(servers) == 0 {
		args = append(args, emptySetting)
	}
	for _, s := range servers {
		args = append(args, s.String())
	}

	return a.cmdRunner.RunCommand(ctx, networksetupCmd, args...)
}

func (a darwinAccessor) SetDNSSuffix(ctx context.Context, alias string, suffix string) error {
	if suffix == "" {
		suffix = emptySetting
	}

	return a.cmdRunner.RunCommand(ctx, networksetupCmd, "-setsearchdomains", alias, suffix)
}

func (a darwinAccessor) EnableDHCP(ctx context.Context, index int) error {
	alias, err := aliasByIndex(index)
	if err != nil {
		return err
	}

	return a.cmdRunner.RunCommand(ctx, ipconfigCmd, "set", alias, "DHCP")
}

func (a darwinAccessor) ReleaseLease(ctx context.Context, index int) error {
	alias, err := aliasByIndex(index)
	if err != nil {
		return err
	}

	return a.cmdRunner.RunCommand(ctx, ipconfigCmd, "set", alias, "NONE")
}

func (a darwinAccessor) RenewLease(ctx context.Context, index int) error {
	alias, err := aliasByIndex(index)
	if err != nil {
		return err
	}

	return a.cmdRunner.RunCommand(ctx, ipconfigCmd, "set", alias, "DHCP")
}

func aliasByIndex(index int) (string, error) {
	iface, err := net.InterfaceByIndex(index)
	if err != nil {
		return "", fmt.Errorf("failed to query interface %d: %w", index, err)
	}

	return iface.Name, nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

func provideSystemAccessor(logger zerolog.Logger) Accessor {
	return newDarwinAccessor(logger, GetCommandRunner(logger))
}

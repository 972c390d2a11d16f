package netcfg

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/tylerdotrar/netbluf/internal/platform"
)

// transitionStep is one ordered mutation against the platform. Steps are
// not transactional: a failure mid-sequence leaves the interface partially
// configured and the error is surfaced verbatim, with no rollback.
type transitionStep struct {
	name string
	run  func(context.Context) error
}

func runTransition(ctx context.Context, steps []transitionStep) error {
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

// ApplyStatic replaces the interface's configuration with the supplied
// overrides merged over its current snapshot, then returns the re-read
// post-change state.
//
// A platform failure after the removal step leaves the interface without
// IPv4 addressing until a subsequent successful run.
func ApplyStatic(ctx context.Context, acc platform.Accessor, gate platform.PrivilegeGate, index int, ov Override) (Snapshot, error) {
	if !gate.Elevated() {
		return Snapshot{}, ErrPrivilegeRequired
	}
	if ov.Empty() {
		return Snapshot{}, ErrNoOverrides
	}

	cur, err := ReadSnapshot(ctx, acc, index)
	if err != nil {
		return Snapshot{}, err
	}

	target := ov.Merge(cur)
	if !target.IP.IsValid() {
		return Snapshot{}, fmt.Errorf("interface %q has no IPv4 address and none was supplied", cur.Alias)
	}
	if target.PrefixLength < 0 {
		return Snapshot{}, fmt.Errorf("interface %q has no prefix length and none was supplied", cur.Alias)
	}
	if target.PrefixLength > 32 {
		return Snapshot{}, fmt.Errorf("prefix length %d is out of range (0-32)", target.PrefixLength)
	}

	prefix := netipPrefix(target)
	servers := dnsList(target)

	steps := []transitionStep{
		{"remove address", func(ctx context.Context) error {
			return acc.RemoveAddress(ctx, index)
		}},
		{"remove default route", func(ctx context.Context) error {
			return acc.RemoveDefaultRoute(ctx, index)
		}},
		{"assign address", func(ctx context.Context) error {
			return acc.AddAddress(ctx, index, prefix, target.Gateway)
		}},
		{"set DNS servers", func(ctx context.Context) error {
			return acc.SetDNSServers(ctx, target.Alias, servers)
		}},
	}
	if target.DNSSuffix != "" {
		steps = append(steps, transitionStep{"set DNS suffix", func(ctx context.Context) error {
			return acc.SetDNSSuffix(ctx, target.Alias, target.DNSSuffix)
		}})
	}

	if err := runTransition(ctx, steps); err != nil {
		return Snapshot{}, err
	}

	return ReadSnapshot(ctx, acc, index)
}

func netipPrefix(s Snapshot) netip.Prefix {
	return netip.PrefixFrom(s.IP, s.PrefixLength)
}

func dnsList(s Snapshot) []netip.Addr {
	var servers []netip.Addr
	if s.DNSPrimary.IsValid() {
		servers = append(servers, s.DNSPrimary)
	}
	if s.DNSSecondary.IsValid() {
		servers = append(servers, s.DNSSecondary)
	}

	return servers
}

// ApplyDHCP hands the interface back to DHCP and forces a release/renew
// cycle, then returns the re-read post-change state.
//
// DHCP is enabled strictly before release/renew; a renew against an
// interface still in static mode is meaningless.
func ApplyDHCP(ctx context.Context, acc platform.Accessor, gate platform.PrivilegeGate, index int) (Snapshot, error) {
	if !gate.Elevated() {
		return Snapshot{}, ErrPrivilegeRequired
	}

	info, err := acc.InterfaceInfo(ctx, index)
	if err != nil {
		return Snapshot{}, err
	}

	steps := []transitionStep{
		{"remove default route", func(ctx context.Context) error {
			return acc.RemoveDefaultRoute(ctx, index)
		}},
		{"clear DNS suffix", func(ctx context.Context) error {
			return acc.SetDNSSuffix(ctx, info.Alias, "")
		}},
		{"clear DNS servers", func(ctx context.Context) error {
			return acc.SetDNSServers(ctx, info.Alias, nil)
		}},
		{"enable DHCP", func(ctx context.Context) error {
			return acc.EnableDHCP(ctx, index)
		}},
		{"release lease", func(ctx context.Context) error {
			return acc.ReleaseLease(ctx, index)
		}},
		{"renew lease", func(ctx context.Context) error {
			return acc.RenewLease(ctx, index)
		}},
	}

	if err := runTransition(ctx, steps); err != nil {
		return Snapshot{}, err
	}

	return ReadSnapshot(ctx, acc, index)
}

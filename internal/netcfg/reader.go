package netcfg

import (
	"context"
	"fmt"

	"github.com/tylerdotrar/netbluf/internal/platform"
)

// ReadSnapshot assembles the current state of a resolved interface.
//
// Each field is an independent platform query; the OS may change interface
// state between them and the snapshot makes no atomicity claim.
func ReadSnapshot(ctx context.Context, acc platform.Accessor, index int) (Snapshot, error) {
	info, err := acc.InterfaceInfo(ctx, index)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read interface state: %w", err)
	}

	snap := Snapshot{
		Alias:        info.Alias,
		Index:        info.Index,
		Mode:         ModeStatic,
		PrefixLength: -1,
	}
	if info.DHCPEnabled {
		snap.Mode = ModeDHCP
	}

	prefix, err := acc.Address(ctx, index)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read interface address: %w", err)
	}
	if prefix.IsValid() {
		snap.IP = prefix.Addr()
		snap.PrefixLength = prefix.Bits()
	}

	gw, err := acc.Gateway(ctx, index)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read gateway: %w", err)
	}
	snap.Gateway = gw

	servers, err := acc.DNSServers(ctx, info.Alias)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read DNS servers: %w", err)
	}
	if len(servers) > 0 {
		snap.DNSPrimary = servers[0]
	}
	if len(servers) > 1 {
		snap.DNSSecondary = servers[1]
	}

	suffix, err := acc.DNSSuffix(ctx, info.Alias)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read DNS suffix: %w", err)
	}
	snap.DNSSuffix = suffix

	snap.measure()
	return snap, nil
}

package main

import (
	"context"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tylerdotrar/netbluf/internal/config"
	"github.com/tylerdotrar/netbluf/internal/netcfg"
	"github.com/tylerdotrar/netbluf/internal/platform"
)

// countingAccessor tallies platform reads and writes so dispatch tests can
// assert which paths touch the platform at all.
type countingAccessor struct {
	routeIfaces []int
	reads       int
	writes      int
}

func (c *countingAccessor) DefaultRouteInterfaces(context.Context) ([]int, error) {
	c.reads++
	return c.routeIfaces, nil
}

func (c *countingAccessor) InterfaceInfo(_ context.Context, index int) (platform.InterfaceInfo, error) {
	c.reads++
	return platform.InterfaceInfo{Index: index, Alias: "eth0", Connected: true, IPv4: true}, nil
}

func (c *countingAccessor) Address(context.Context, int) (netip.Prefix, error) {
	c.reads++
	return netip.Prefix{}, nil
}

func (c *countingAccessor) Gateway(context.Context, int) (netip.Addr, error) {
	c.reads++
	return netip.Addr{}, nil
}

func (c *countingAccessor) DNSServers(context.Context, string) ([]netip.Addr, error) {
	c.reads++
	return nil, nil
}

func (c *countingAccessor) DNSSuffix(context.Context, string) (string, error) {
	c.reads++
	return "", nil
}

func (c *countingAccessor) RemoveAddress(context.Context, int) error {
	c.writes++
	return nil
}

func (c *countingAccessor) RemoveDefaultRoute(context.Context, int) error {
	c.writes++
	return nil
}

func (c *countingAccessor) AddAddress(context.Context, int, netip.Prefix, netip.Addr) error {
	c.writes++
	return nil
}

func (c *countingAccessor) SetDNSServers(context.Context, string, []netip.Addr) error {
	c.writes++
	return nil
}

func (c *countingAccessor) SetDNSSuffix(context.Context, string, string) error {
	c.writes++
	return nil
}

func (c *countingAccessor) EnableDHCP(context.Context, int) error {
	c.writes++
	return nil
}

func (c *countingAccessor) ReleaseLease(context.Context, int) error {
	c.writes++
	return nil
}

func (c *countingAccessor) RenewLease(context.Context, int) error {
	c.writes++
	return nil
}

type fakeGate bool

func (g fakeGate) Elevated() bool {
	return bool(g)
}

func TestExecute_emptyOverridesMakeNoPlatformCalls(t *testing.T) {
	acc := &countingAccessor{routeIfaces: []int{4}}
	cfg := &config.Config{Static: true, CIDR: -1}

	_, _, err := execute(context.Background(), zerolog.Nop(), acc, fakeGate(true), cfg)
	require.ErrorIs(t, err, netcfg.ErrNoOverrides)
	require.Zero(t, acc.reads, "input errors must surface before any platform query")
	require.Zero(t, acc.writes)
}

func TestExecute_invalidOverridesMakeNoPlatformCalls(t *testing.T) {
	acc := &countingAccessor{routeIfaces: []int{4}}
	cfg := &config.Config{Static: true, CIDR: -1, IPAddress: "not-an-ip"}

	_, _, err := execute(context.Background(), zerolog.Nop(), acc, fakeGate(true), cfg)
	require.ErrorContains(t, err, "--ip-address")
	require.Zero(t, acc.reads)
	require.Zero(t, acc.writes)
}

func TestExecute_inputErrorWinsOverMissingRoute(t *testing.T) {
	// No default route at all: the input error must still be the one
	// reported, not NoRouteFound.
	acc := &countingAccessor{}
	cfg := &config.Config{Static: true, CIDR: -1}

	_, _, err := execute(context.Background(), zerolog.Nop(), acc, fakeGate(true), cfg)
	require.ErrorIs(t, err, netcfg.ErrNoOverrides)
}

func TestExecute_unelevatedMutationMakesNoWrites(t *testing.T) {
	acc := &countingAccessor{routeIfaces: []int{4}}
	cfg := &config.Config{Static: true, CIDR: -1, Gateway: "10.0.0.254"}

	_, ok, err := execute(context.Background(), zerolog.Nop(), acc, fakeGate(false), cfg)
	require.NoError(t, err)
	require.False(t, ok, "advisory path must not produce a snapshot")
	require.Zero(t, acc.writes)
}

func TestExecute_statusProducesSnapshot(t *testing.T) {
	acc := &countingAccessor{routeIfaces: []int{4}}
	cfg := &config.Config{CIDR: -1}

	snap, ok, err := execute(context.Background(), zerolog.Nop(), acc, fakeGate(false), cfg)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "eth0", snap.Alias)
	require.Zero(t, acc.writes)
}

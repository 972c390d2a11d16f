package netcfg

import (
	"context"
	"net/netip"

	"github.com/tylerdotrar/netbluf/internal/platform"
)

// fakeAccessor is an in-memory platform accessor. Write operations mutate
// its state so post-change snapshots reflect what was applied, and every
// mutation is recorded in order for call-sequence assertions.
type fakeAccessor struct {
	routeIfaces []int
	infos       map[int]platform.InterfaceInfo
	addrs       map[int]netip.Prefix
	gateways    map[int]netip.Addr
	dns         map[string][]netip.Addr
	suffixes    map[string]string

	writes      []string
	infoQueries int

	failOn  string
	failErr error
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{
		infos:    map[int]platform.InterfaceInfo{},
		addrs:    map[int]netip.Prefix{},
		gateways: map[int]netip.Addr{},
		dns:      map[string][]netip.Addr{},
		suffixes: map[string]string{},
	}
}

func (f *fakeAccessor) record(op string) error {
	f.writes = append(f.writes, op)
	if op == f.failOn {
		return f.failErr
	}

	return nil
}

func (f *fakeAccessor) DefaultRouteInterfaces(context.Context) ([]int, error) {
	return f.routeIfaces, nil
}

func (f *fakeAccessor) InterfaceInfo(_ context.Context, index int) (platform.InterfaceInfo, error) {
	f.infoQueries++
	return f.infos[index], nil
}

func (f *fakeAccessor) Address(_ context.Context, index int) (netip.Prefix, error) {
	return f.addrs[index], nil
}

func (f *fakeAccessor) Gateway(_ context.Context, index int) (netip.Addr, error) {
	return f.gateways[index], nil
}

func (f *fakeAccessor) DNSServers(_ context.Context, alias string) ([]netip.Addr, error) {
	return f.dns[alias], nil
}

func (f *fakeAccessor) DNSSuffix(_ context.Context, alias string) (string, error) {
	return f.suffixes[alias], nil
}

func (f *fakeAccessor) RemoveAddress(_ context.Context, index int) error {
	if err := f.record("RemoveAddress"); err != nil {
		return err
	}

	delete(f.addrs, index)
	return nil
}

func (f *fakeAccessor) RemoveDefaultRoute(_ context.Context, index int) error {
	if err := f.record("RemoveDefaultRoute"); err != nil {
		return err
	}

	delete(f.gateways, index)
	return nil
}

func (f *fakeAccessor) AddAddress(_ context.Context, index int, prefix netip.Prefix, gw netip.Addr) error {
	if err := f.record("AddAddress"); err != nil {
		return err
	}

	f.addrs[index] = prefix
	if gw.IsValid() {
		f.gateways[index] = gw
	}
	return nil
}

func (f *fakeAccessor) SetDNSServers(_ context.Context, alias string, servers []netip.Addr) error {
	if err := f.record("SetDNSServers"); err != nil {
		return err
	}

	f.dns[alias] = servers
	return nil
}

func (f *fakeAccessor) SetDNSSuffix(_ context.Context, alias string, suffix string) error {
	if err := f.record("SetDNSSuffix"); err != nil {
		return err
	}

	f.suffixes[alias] = suffix
	return nil
}

func (f *fakeAccessor) EnableDHCP(_ context.Context, index int) error {
	if err := f.record("EnableDHCP"); err != nil {
		return err
	}

	info := f.infos[index]
	info.DHCPEnabled = true
	f.infos[index] = info
	return nil
}

func (f *fakeAccessor) ReleaseLease(context.Context, int) error {
	return f.record("ReleaseLease")
}

func (f *fakeAccessor) RenewLease(context.Context, int) error {
	return f.record("RenewLease")
}

type fakeGate bool

func (g fakeGate) Elevated() bool {
	return bool(g)
}

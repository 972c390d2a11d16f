package netcfg

import "net/netip"

// Mode tells how an interface obtains its IPv4 configuration.
type Mode int

const (
	ModeDHCP Mode = iota
	ModeStatic
)

func (m Mode) String() string {
	if m == ModeDHCP {
		return "DHCP"
	}

	return "Static"
}

// Snapshot is the observed state of the default interface at a point in
// time. Reads behind it are not atomic, so a snapshot taken while the
// interface is being reconfigured may be internally inconsistent.
//
// The zero netip.Addr marks an unset optional field; an empty string is
// never used for that purpose.
type Snapshot struct {
	Alias        string
	Index        int
	Mode         Mode
	IP           netip.Addr
	PrefixLength int
	Gateway      netip.Addr
	DNSPrimary   netip.Addr
	DNSSecondary netip.Addr
	DNSSuffix    string

	valueWidth int
}

// Override is the user-supplied subset of configurable fields. Unset
// address fields are the zero netip.Addr; prefix length and suffix use
// pointers so "not specified" stays distinct from "set to zero/empty".
type Override struct {
	IP           netip.Addr
	Gateway      netip.Addr
	PrefixLength *int
	DNSPrimary   netip.Addr
	DNSSecondary netip.Addr
	DNSSuffix    *string
}

// Empty reports whether no override field is set.
func (o Override) Empty() bool {
	return !o.IP.IsValid() &&
		!o.Gateway.IsValid() &&
		o.PrefixLength == nil &&
		!o.DNSPrimary.IsValid() &&
		!o.DNSSecondary.IsValid() &&
		o.DNSSuffix == nil
}

// Merge builds the target configuration: each set override field wins,
// every other field keeps the current snapshot's value. A field the caller
// did not mention is never cleared.
func (o Override) Merge(cur Snapshot) Snapshot {
	target := cur
	target.Mode = ModeStatic

	if o.IP.IsValid() {
		target.IP = o.IP
	}
	if o.Gateway.IsValid() {
		target.Gateway = o.Gateway
	}
	if o.PrefixLength != nil {
		target.PrefixLength = *o.PrefixLength
	}
	if o.DNSPrimary.IsValid() {
		target.DNSPrimary = o.DNSPrimary
	}
	if o.DNSSecondary.IsValid() {
		target.DNSSecondary = o.DNSSecondary
	}
	if o.DNSSuffix != nil {
		target.DNSSuffix = *o.DNSSuffix
	}

	return target
}

package netcfg

import "errors"

var (
	// ErrNoRouteFound means no usable default route interface survived
	// resolution.
	ErrNoRouteFound = errors.New("no default route interface found")

	// ErrPrivilegeRequired means a mutation was attempted without
	// elevated rights.
	ErrPrivilegeRequired = errors.New("elevated privileges required to modify network configuration")

	// ErrNoOverrides means a static configuration was requested with
	// zero override fields.
	ErrNoOverrides = errors.New("no configuration overrides specified")
)

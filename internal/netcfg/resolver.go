package netcfg

import (
	"context"

	"github.com/hashicorp/go-set"
	"github.com/tylerdotrar/netbluf/internal/platform"
)

// Resolve picks the single interface currently used to reach the default
// route.
//
// A lone candidate wins outright without any metric or state query. With
// several candidates only connected IPv4 interfaces are considered and the
// one with the lowest metric wins; equal metrics are broken by the lowest
// interface index so resolution stays deterministic.
//
// The default route can change between invocations, so the result must not
// be cached.
func Resolve(ctx context.Context, acc platform.Accessor) (int, error) {
	indices, err := acc.DefaultRouteInterfaces(ctx)
	if err != nil {
		return 0, err
	}

	candidates := set.From(indices)
	if candidates.Size() == 0 {
		return 0, ErrNoRouteFound
	}
	if candidates.Size() == 1 {
		return candidates.Slice()[0], nil
	}

	best := -1
	bestMetric := 0
	for _, index := range candidates.Slice() {
		info, err := acc.InterfaceInfo(ctx, index)
		if err != nil {
			return 0, err
		}

		if !info.Connected || !info.IPv4 {
			continue
		}

		switch {
		case best < 0:
		case info.Metric < bestMetric:
		case info.Metric == bestMetric && index < best:
		default:
			continue
		}

		best = index
		bestMetric = info.Metric
	}

	if best < 0 {
		return 0, ErrNoRouteFound
	}

	return best, nil
}

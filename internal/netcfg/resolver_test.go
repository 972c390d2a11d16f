package netcfg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tylerdotrar/netbluf/internal/platform"
)

func TestResolve(t *testing.T) {
	cases := map[string]struct {
		routeIfaces []int
		infos       map[int]platform.InterfaceInfo
		expect      int
		expectError error
	}{
		"should return a lone candidate outright": {
			routeIfaces: []int{7},
			expect:      7,
		},
		"should deduplicate candidates before counting them": {
			routeIfaces: []int{7, 7, 7},
			expect:      7,
		},
		"should pick the lowest metric among connected candidates": {
			routeIfaces: []int{5, 8, 12},
			infos: map[int]platform.InterfaceInfo{
				5:  {Index: 5, Metric: 35, Connected: true, IPv4: true},
				8:  {Index: 8, Metric: 10, Connected: true, IPv4: true},
				12: {Index: 12, Metric: 25, Connected: true, IPv4: true},
			},
			expect: 8,
		},
		"should never pick a disconnected interface": {
			routeIfaces: []int{5, 8},
			infos: map[int]platform.InterfaceInfo{
				5: {Index: 5, Metric: 35, Connected: true, IPv4: true},
				8: {Index: 8, Metric: 10, Connected: false, IPv4: true},
			},
			expect: 5,
		},
		"should never pick a non-IPv4 interface": {
			routeIfaces: []int{5, 8},
			infos: map[int]platform.InterfaceInfo{
				5: {Index: 5, Metric: 35, Connected: true, IPv4: true},
				8: {Index: 8, Metric: 10, Connected: true, IPv4: false},
			},
			expect: 5,
		},
		"should break metric ties by lowest index": {
			routeIfaces: []int{12, 3, 9},
			infos: map[int]platform.InterfaceInfo{
				3:  {Index: 3, Metric: 10, Connected: true, IPv4: true},
				9:  {Index: 9, Metric: 10, Connected: true, IPv4: true},
				12: {Index: 12, Metric: 10, Connected: true, IPv4: true},
			},
			expect: 3,
		},
		"should fail when every candidate is filtered out": {
			routeIfaces: []int{5, 8},
			infos: map[int]platform.InterfaceInfo{
				5: {Index: 5, Metric: 35, Connected: false, IPv4: true},
				8: {Index: 8, Metric: 10, Connected: true, IPv4: false},
			},
			expectError: ErrNoRouteFound,
		},
		"should fail when no interface owns a default route": {
			expectError: ErrNoRouteFound,
		},
	}

	for n, c := range cases {
		t.Run(n, func(t *testing.T) {
			acc := newFakeAccessor()
			acc.routeIfaces = c.routeIfaces
			for k, v := range c.infos {
				acc.infos[k] = v
			}

			got, err := Resolve(context.Background(), acc)
			if c.expectError != nil {
				require.ErrorIs(t, err, c.expectError)
				return
			}

			require.NoError(t, err)
			require.Equal(t, c.expect, got)
		})
	}
}

func TestResolve_singleCandidateSkipsMetricQuery(t *testing.T) {
	acc := newFakeAccessor()
	acc.routeIfaces = []int{7}

	got, err := Resolve(context.Background(), acc)
	require.NoError(t, err)
	require.Equal(t, 7, got)
	require.Zero(t, acc.infoQueries, "lone candidate must win without metric or state queries")
}

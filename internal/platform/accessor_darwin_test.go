package platform

import (
	"context"
	"net/netip"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type cannedRunner struct {
	output string
}

func (r cannedRunner) RunCommand(context.Context, string, ...string) error {
	return nil
}

func (r cannedRunner) RunCommandOutput(context.Context, string, ...string) (string, error) {
	return r.output, nil
}

func TestDarwinAccessor_DNSSuffix(t *testing.T) {
	cases := map[string]struct {
		output string
		expect string
	}{
		"should return the configured search domain": {
			output: "corp.example",
			expect: "corp.example",
		},
		"should treat the no-domains sentence as unset": {
			output: "There aren't any Search Domains set on Wi-Fi.",
			expect: "",
		},
		"should treat empty output as unset": {
			output: "",
			expect: "",
		},
	}

	for n, c := range cases {
		t.Run(n, func(t *testing.T) {
			acc := newDarwinAccessor(zerolog.Nop(), cannedRunner{output: c.output})

			got, err := acc.DNSSuffix(context.Background(), "Wi-Fi")
			require.NoError(t, err)
			require.Equal(t, c.expect, got)
		})
	}
}

func TestDarwinAccessor_DNSServersSkipsSentinelText(t *testing.T) {
	acc := newDarwinAccessor(zerolog.Nop(), cannedRunner{
		output: "There aren't any DNS Servers set on Wi-Fi.",
	})

	servers, err := acc.DNSServers(context.Background(), "Wi-Fi")
	require.NoError(t, err)
	require.Empty(t, servers)

	acc = newDarwinAccessor(zerolog.Nop(), cannedRunner{output: "8.8.8.8\n1.1.1.1\n"})
	servers, err = acc.DNSServers(context.Background(), "Wi-Fi")
	require.NoError(t, err)
	require.Equal(t, []netip.Addr{
		netip.MustParseAddr("8.8.8.8"),
		netip.MustParseAddr("1.1.1.1"),
	}, servers)
}

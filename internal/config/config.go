package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigdotenv"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/hashicorp/go-multierror"
	"github.com/tylerdotrar/netbluf/internal/netcfg"
)

// Command is the action selected by the mode flags.
type Command int

const (
	CommandStatus Command = iota
	CommandStatic
	CommandDHCP
)

type Config struct {
	Static bool `env:"STATIC" flag:"static" usage:"Apply static configuration built from the supplied overrides"`
	Set    bool `env:"SET" flag:"set" usage:"Alias of --static"`
	DHCP   bool `env:"DHCP" flag:"dhcp" usage:"Re-acquire interface configuration via DHCP"`
	Renew  bool `env:"RENEW" flag:"renew" usage:"Alias of --dhcp"`

	IPAddress string `env:"IP_ADDRESS" flag:"ip-address" usage:"Static IPv4 address"`
	Gateway   string `env:"GATEWAY" flag:"gateway" usage:"Default gateway address"`
	CIDR      int    `env:"CIDR" flag:"cidr" default:"-1" usage:"Prefix length in bits (0-32)"`
	DNS       string `env:"DNS" flag:"dns" usage:"Preferred DNS server"`
	AltDNS    string `env:"ALT_DNS" flag:"alt-dns" usage:"Alternate DNS server"`
	Suffix    string `env:"SUFFIX" flag:"suffix" usage:"Connection-specific DNS suffix"`

	Log LogConfig
}

// Command returns the selected action. DHCP wins when both mode flags are
// given; its renew cycle makes any static overrides moot.
func (cfg *Config) Command() Command {
	switch {
	case cfg.DHCP || cfg.Renew:
		return CommandDHCP
	case cfg.Static || cfg.Set:
		return CommandStatic
	default:
		return CommandStatus
	}
}

// Overrides assembles and validates the static configuration overrides.
// All invalid flags are reported together.
func (cfg *Config) Overrides() (netcfg.Override, error) {
	var (
		ov   netcfg.Override
		errs error
	)

	parseAddr := func(flag, value string) netip.Addr {
		if value == "" {
			return netip.Addr{}
		}

		addr, err := netip.ParseAddr(value)
		if err != nil || !addr.Is4() {
			errs = multierror.Append(errs, fmt.Errorf("--%s: %q is not a valid IPv4 address", flag, value))
			return netip.Addr{}
		}

		return addr
	}

	ov.IP = parseAddr("ip-address", cfg.IPAddress)
	ov.Gateway = parseAddr("gateway", cfg.Gateway)
	ov.DNSPrimary = parseAddr("dns", cfg.DNS)
	ov.DNSSecondary = parseAddr("alt-dns", cfg.AltDNS)

	if cfg.CIDR >= 0 {
		if cfg.CIDR > 32 {
			errs = multierror.Append(errs, fmt.Errorf("--cidr: %d is out of range (0-32)", cfg.CIDR))
		} else {
			cidr := cfg.CIDR
			ov.PrefixLength = &cidr
		}
	}

	if cfg.Suffix != "" {
		suffix := cfg.Suffix
		ov.DNSSuffix = &suffix
	}

	return ov, errs
}

// Load parses configuration from flags, environment and an optional
// config file. Flag names are matched case-insensitively.
func Load(args []string) (*Config, error) {
	cfg := new(Config)

	loader := aconfig.LoaderFor(cfg, aconfig.Config{
		EnvPrefix:          "NETBLUF",
		Args:               normalizeArgs(args),
		AllowUnknownFields: false,
		AllowUnknownEnvs:   true,
		AllowUnknownFlags:  false,
		FlagDelimiter:      "-",
		DontGenerateTags:   false,
		FailOnFileNotFound: false,
		FileFlag:           "config",
		FileDecoders: map[string]aconfig.FileDecoder{
			".conf": aconfigtoml.New(),
			".env":  aconfigdotenv.New(),
		},
	})

	if err := loader.Load(); err != nil {
		if isHelpError(err) {
			os.Exit(1)
		}

		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// normalizeArgs lower-cases flag names so aliases match regardless of case.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			out[i] = arg
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		name = strings.ToLower(name)
		if hasValue {
			out[i] = name + "=" + value
			continue
		}

		out[i] = name
	}

	return out
}

func isHelpError(err error) bool {
	if err == nil {
		return false
	}

	if u := errors.Unwrap(err); u != nil {
		err = u
	}

	return strings.HasSuffix(err.Error(), "help requested")
}

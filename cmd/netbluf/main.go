package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tylerdotrar/netbluf/internal/config"
	"github.com/tylerdotrar/netbluf/internal/netcfg"
	"github.com/tylerdotrar/netbluf/internal/platform"
)

// Printed when a mutation is requested without elevated rights.
// Not a failure: the invocation performs no action and exits cleanly.
const privilegeAdvisory = "netbluf: modifying network configuration requires elevated privileges; re-run as root"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger, closer, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
	}

	defer closer.Close()
	log.Logger = logger
	if err := run(logger, cfg); err != nil {
		_ = closer.Close()
		logger.Fatal().Err(err).Msg("netbluf failed")
	}
}

func run(logger zerolog.Logger, cfg *config.Config) error {
	ctx, cancel := config.NewApplicationContext()
	defer cancel()

	snap, ok, err := execute(ctx, logger, platform.GetAccessor(logger), platform.GetPrivilegeGate(), cfg)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(os.Stderr, privilegeAdvisory)
		return nil
	}

	fmt.Print(netcfg.Render(snap))
	return nil
}

// execute resolves the default interface and performs the selected command.
// The returned bool reports whether a snapshot was produced; false with a
// nil error means the privilege advisory applies.
func execute(ctx context.Context, logger zerolog.Logger, acc platform.Accessor, gate platform.PrivilegeGate, cfg *config.Config) (netcfg.Snapshot, bool, error) {
	command := cfg.Command()

	// User-input errors must surface before any platform query.
	var overrides netcfg.Override
	if command == config.CommandStatic {
		var err error
		overrides, err = cfg.Overrides()
		if err != nil {
			return netcfg.Snapshot{}, false, err
		}
		if overrides.Empty() {
			return netcfg.Snapshot{}, false, netcfg.ErrNoOverrides
		}
	}

	index, err := netcfg.Resolve(ctx, acc)
	if err != nil {
		return netcfg.Snapshot{}, false, err
	}

	logger.Debug().Int("ifindex", index).Msg("resolved default interface")

	if command != config.CommandStatus && !gate.Elevated() {
		return netcfg.Snapshot{}, false, nil
	}

	var snap netcfg.Snapshot
	switch command {
	case config.CommandDHCP:
		snap, err = netcfg.ApplyDHCP(ctx, acc, gate, index)
	case config.CommandStatic:
		snap, err = netcfg.ApplyStatic(ctx, acc, gate, index, overrides)
	default:
		snap, err = netcfg.ReadSnapshot(ctx, acc, index)
	}

	if err != nil {
		return netcfg.Snapshot{}, false, err
	}

	return snap, true, nil
}

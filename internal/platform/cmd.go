package platform

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	cmdRunner CommandRunner
	cmdOnce   sync.Once

	_, isCmdDryRun = os.LookupEnv("NETBLUF_DRY_RUN")
)

// CommandRunner executes external configuration commands.
type CommandRunner interface {
	RunCommand(ctx context.Context, name string, args ...string) error

	// RunCommandOutput runs a command and returns its trimmed stdout.
	RunCommandOutput(ctx context.Context, name string, args ...string) (string, error)
}

type noopCommandRunner struct {
	log zerolog.Logger
}

func (s noopCommandRunner) RunCommand(ctx context.Context, name string, args ...string) error {
	s.log.Debug().
		Str("cmd", name).
		Strs("cmdline", append([]string{name}, args...)).
		Msgf("running command: '%s %s'", name, args)
	return nil
}

func (s noopCommandRunner) RunCommandOutput(ctx context.Context, name string, args ...string) (string, error) {
	return "", s.RunCommand(ctx, name, args...)
}

type systemCommandRunner struct {
	log zerolog.Logger
}

func (r systemCommandRunner) RunCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout := r.log.With().
		Str("cmd", name).
		Strs("cmdline", cmd.Args).
		Str("type", "stdout").
		Str(zerolog.LevelFieldName, zerolog.DebugLevel.String()).
		Logger()

	stderr := r.log.With().
		Str(zerolog.LevelFieldName, zerolog.ErrorLevel.String()).
		Str("cmd", name).
		Strs("cmdline", cmd.Args).
		Str("type", "stderr").
		Logger()

	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

func (r systemCommandRunner) RunCommandOutput(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout bytes.Buffer
	stderr := r.log.With().
		Str(zerolog.LevelFieldName, zerolog.ErrorLevel.String()).
		Str("cmd", name).
		Strs("cmdline", cmd.Args).
		Str("type", "stderr").
		Logger()

	cmd.Stdout = &stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}

	return strings.TrimSpace(stdout.String()), nil
}

// GetCommandRunner returns global command runner.
func GetCommandRunner(logger zerolog.Logger) CommandRunner {
	cmdOnce.Do(func() {
		if isCmdDryRun {
			cmdRunner = noopCommandRunner{log: logger}
			return
		}
		cmdRunner = systemCommandRunner{log: logger}
	})

	return cmdRunner
}

package config

import (
	"context"
	"os/signal"
	"syscall"
)

// NewApplicationContext returns the execution context for one invocation.
//
// The context is cancelled when the process receives a termination signal,
// which aborts any in-flight platform call.
func NewApplicationContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
}

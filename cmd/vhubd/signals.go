package main

import (
	"context"
	"os/signal"
	"syscall"
)

// newShutdownContext returns a context canceled on SIGINT or SIGTERM, along
// with its stop func.
func newShutdownContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

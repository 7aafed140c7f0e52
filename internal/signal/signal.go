package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyContext derives a context from parent that is cancelled on the first
// SIGINT or SIGTERM. Call stop to release the signal handler.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

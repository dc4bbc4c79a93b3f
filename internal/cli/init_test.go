package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"spendtrack/internal/log"
)

func TestGracefulShutdownCancelsBeforeCleanup(t *testing.T) {
	// Hold our own SIGTERM subscription so the default action can never
	// kill the test process before the shutdown goroutine registers.
	guard := make(chan os.Signal, 1)
	signal.Notify(guard, syscall.SIGTERM)
	defer signal.Stop(guard)

	logger := log.New(log.DefaultConfig())
	cleanupSawCancel := make(chan bool, 1)

	var ctx context.Context
	var done <-chan struct{}
	ctx, done = GracefulShutdown(logger, time.Second, func() {
		// Consumers blocked on the context must already be unblocking
		// when cleanup tears their connections down.
		cleanupSawCancel <- ctx.Err() != nil
	})

	// The shutdown goroutine registers its handler asynchronously; resend
	// until it observes the signal.
	deadline := time.After(10 * time.Second)
	var sawCancel bool
waiting:
	for {
		if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
			t.Fatalf("sending SIGTERM: %v", err)
		}
		select {
		case sawCancel = <-cleanupSawCancel:
			break waiting
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("shutdown sequence never ran")
		}
	}

	if !sawCancel {
		t.Error("cleanup ran before the shutdown context was cancelled")
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("done channel never closed")
	}
	if ctx.Err() == nil {
		t.Error("shutdown context still live after done closed")
	}
}

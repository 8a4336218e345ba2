package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabledInstallsNoop(t *testing.T) {
	cfg := Config{Enabled: false, ServiceName: "vhub-test"}

	provider, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestProviderShutdownOnNoopIsSafe(t *testing.T) {
	provider := &Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProviderShutdownOnCanceledContextIsSafe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &Provider{}
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProviderConcurrentShutdownDoesNotPanic(t *testing.T) {
	provider := &Provider{}

	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = provider.Shutdown(ctx)
			done <- struct{}{}
		}()
	}

	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for concurrent shutdown")
		}
	}
}

func TestTracerReturnsUsableTracer(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: false, ServiceName: "vhub-test"})
	require.NoError(t, err)

	tracer := Tracer("vhub-test-tracer")
	require.NotNil(t, tracer)

	ctx, span := tracer.Start(context.Background(), "test-span")
	require.NotNil(t, span)
	span.End()

	assert.NotNil(t, ctx)
}

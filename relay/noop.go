package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoopHooks implements Hooks with no external provider: association and
// best-relay lookups always miss, and GenStreamID mints a local uuid so
// get-stream can still complete end to end in a deployment with no relay
// store configured (spec §6 "each is best-effort ... may be a no-op").
type NoopHooks struct{}

func (NoopHooks) AddDevName(_ context.Context, _ string) error { return nil }

func (NoopHooks) GetAssociatedDarwin(_ context.Context, _, _ string) (string, string, bool, error) {
	return "", "", false, nil
}

func (NoopHooks) GetBestDarwin(_ context.Context) (string, string, bool, error) {
	return "", "", false, nil
}

func (NoopHooks) GenStreamID(_ context.Context, _ time.Duration) (string, error) {
	return uuid.NewString(), nil
}

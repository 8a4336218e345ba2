package relay

import (
	"context"
	"time"
)

// Hooks is the external metadata-cache surface spec.md §6 names: best-effort
// calls that may be a no-op if no provider is registered. The register and
// get-stream handlers are the only callers (spec §4.3.1, §4.3.2).
type Hooks interface {
	// AddDevName records serial as known to the external cache on a
	// successful register. Best-effort; a failure is logged, not propagated.
	AddDevName(ctx context.Context, serial string) error

	// GetAssociatedDarwin returns the relay address already bound to
	// (serial, channel), if any persistent association exists.
	GetAssociatedDarwin(ctx context.Context, serial, channel string) (ip, port string, ok bool, err error)

	// GetBestDarwin returns the address of the least-loaded relay known to
	// the cache, if any relay is registered at all.
	GetBestDarwin(ctx context.Context) (ip, port string, ok bool, err error)

	// GenStreamID mints a fresh playback token, valid for timeout.
	GenStreamID(ctx context.Context, timeout time.Duration) (string, error)
}

package registry

import "sync/atomic"

// Handle is a scoped lookup-hold on a Device returned by Resolve. Release is
// idempotent and safe to call from any control path, including error paths —
// callers should defer it immediately after a successful Resolve.
type Handle struct {
	device   Device
	released atomic.Bool
}

// Device returns the resolved device. Valid until Release is called.
func (h *Handle) Device() Device {
	return h.device
}

// Release drops the lookup-hold. Safe to call more than once; only the
// first call has an effect.
func (h *Handle) Release() {
	if h.released.CompareAndSwap(false, true) {
		h.device.LookupRelease()
	}
}

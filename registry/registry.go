package registry

import (
	"sync"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
)

// Device is the minimal surface the registry needs from a session: enough
// to register it, list it, kill it on conflict, and keep it alive while
// someone else is dereferencing it via Resolve.
type Device interface {
	Serial() string
	Info() protocol.DeviceInfo
	// Kill signals the device's session to terminate on its next
	// scheduling tick. Must be safe to call from another goroutine and
	// safe to call more than once.
	Kill()
	// LookupHold/LookupRelease track the registry's own lookup-hold:
	// "someone is currently dereferencing you." Independent of any
	// holder_count the session keeps for the pending-response map (spec §9).
	LookupHold()
	LookupRelease()
}

// Listener observes registry membership changes, used by the live
// registry-change feed (events package) to push notifications without
// requiring clients to poll the device-list endpoint.
type Listener interface {
	DeviceOnline(serial string)
	DeviceOffline(serial string)
	DeviceEvicted(serial string)
}

// Registry is the process-wide serial -> Device table.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Device

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{devices: make(map[string]Device)}
}

// AddListener registers l to receive future membership change notifications.
// Not retroactive: l does not learn about devices already registered.
func (r *Registry) AddListener(l Listener) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()
	r.listeners = append(r.listeners, l)
}

func (r *Registry) notify(fn func(Listener)) {
	r.listenersMu.RLock()
	defer r.listenersMu.RUnlock()
	for _, l := range r.listeners {
		fn(l)
	}
}

// Register inserts d under serial. On conflict with an existing occupant,
// the incumbent is sent a kill signal and Register returns a conflict error
// (spec §4.3.1); the incumbent removes itself from the table on its own
// teardown, it is not removed here. The caller (the register handler) does
// not need to do anything further with the incumbent.
func (r *Registry) Register(serial string, d Device) error {
	r.mu.Lock()
	existing, conflict := r.devices[serial]
	if !conflict {
		r.devices[serial] = d
	}
	r.mu.Unlock()

	if conflict {
		existing.Kill()
		r.notify(func(l Listener) { l.DeviceEvicted(serial) })
		return errors.WrapInvalid(errors.ErrConflict, "registry", "Register", "serial "+serial+" already registered")
	}

	r.notify(func(l Listener) { l.DeviceOnline(serial) })
	return nil
}

// Resolve looks up serial and, on hit, increments the target's lookup-hold
// and returns a Handle whose Release decrements it. The bool is false if no
// device is registered under serial.
func (r *Registry) Resolve(serial string) (*Handle, bool) {
	r.mu.RLock()
	d, ok := r.devices[serial]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	d.LookupHold()
	return &Handle{device: d}, true
}

// Remove deletes serial from the table, but only if d is still the current
// occupant — a device that lost a registration conflict and is tearing down
// late must not evict whatever newer device replaced it.
func (r *Registry) Remove(serial string, d Device) {
	r.mu.Lock()
	cur, ok := r.devices[serial]
	removed := ok && cur == d
	if removed {
		delete(r.devices, serial)
	}
	r.mu.Unlock()

	if removed {
		r.notify(func(l Listener) { l.DeviceOffline(serial) })
	}
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Snapshot returns a point-in-time copy of all registered devices' Info,
// for the device-list and channel-list handlers (spec §4.3.6/§4.3.7) to
// range over without holding the registry mutex during serialization.
func (r *Registry) Snapshot() []protocol.DeviceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.DeviceInfo, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d.Info())
	}
	return out
}

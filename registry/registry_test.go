package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/vhub/protocol"
)

type fakeDevice struct {
	serial string
	killed atomic.Bool
	holds  atomic.Int32
}

func newFakeDevice(serial string) *fakeDevice {
	return &fakeDevice{serial: serial}
}

func (f *fakeDevice) Serial() string { return f.serial }
func (f *fakeDevice) Info() protocol.DeviceInfo {
	return protocol.DeviceInfo{Serial: f.serial, AppType: protocol.AppTypeCamera}
}
func (f *fakeDevice) Kill()          { f.killed.Store(true) }
func (f *fakeDevice) LookupHold()    { f.holds.Add(1) }
func (f *fakeDevice) LookupRelease() { f.holds.Add(-1) }

func TestRegisterSucceedsForNewSerial(t *testing.T) {
	r := New()
	d := newFakeDevice("CAM001")

	require.NoError(t, r.Register("CAM001", d))
	assert.Equal(t, 1, r.Len())
}

func TestRegisterConflictKillsIncumbent(t *testing.T) {
	r := New()
	a := newFakeDevice("CAM001")
	b := newFakeDevice("CAM001")

	require.NoError(t, r.Register("CAM001", a))
	err := r.Register("CAM001", b)

	require.Error(t, err)
	assert.True(t, a.killed.Load(), "incumbent should receive a kill signal")
	assert.False(t, b.killed.Load(), "challenger should not be killed")
	assert.Equal(t, 1, r.Len(), "incumbent stays in the table until it tears itself down")
}

func TestRemoveOnlyEvictsCurrentOccupant(t *testing.T) {
	r := New()
	a := newFakeDevice("CAM001")
	b := newFakeDevice("CAM001")

	require.NoError(t, r.Register("CAM001", a))
	_ = r.Register("CAM001", b) // b loses, a stays registered

	// a tears down late and tries to remove itself; must not evict b... but a
	// is still the occupant here since b's Register call did not win.
	r.Remove("CAM001", a)
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.Register("CAM001", b))
	// a (long gone) tries to remove itself again — must be a no-op now.
	r.Remove("CAM001", a)
	assert.Equal(t, 1, r.Len(), "stale removal must not evict the new occupant")
}

func TestResolveHoldsAndHandleReleaseUnholds(t *testing.T) {
	r := New()
	d := newFakeDevice("CAM001")
	require.NoError(t, r.Register("CAM001", d))

	handle, ok := r.Resolve("CAM001")
	require.True(t, ok)
	assert.Equal(t, int32(1), d.holds.Load())

	handle.Release()
	assert.Equal(t, int32(0), d.holds.Load())

	// Release is idempotent.
	handle.Release()
	assert.Equal(t, int32(0), d.holds.Load())
}

func TestResolveMissingReturnsFalse(t *testing.T) {
	r := New()
	_, ok := r.Resolve("CAM999")
	assert.False(t, ok)
}

func TestSnapshotReturnsAllDeviceInfo(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("CAM001", newFakeDevice("CAM001")))
	require.NoError(t, r.Register("CAM002", newFakeDevice("CAM002")))

	snap := r.Snapshot()
	assert.Len(t, snap, 2)
}

func TestConcurrentRegistrationOfSameSerialExactlyOneWins(t *testing.T) {
	r := New()
	const n = 20
	devices := make([]*fakeDevice, n)
	for i := range devices {
		devices[i] = newFakeDevice("CAM001")
	}

	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Register("CAM001", devices[i])
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one registration should win the serial")
	assert.Equal(t, 1, r.Len())
}

func TestListenerReceivesOnlineOfflineEvicted(t *testing.T) {
	r := New()
	var online, offline, evicted []string
	var mu sync.Mutex
	r.AddListener(recordingListener{
		online:  func(s string) { mu.Lock(); online = append(online, s); mu.Unlock() },
		offline: func(s string) { mu.Lock(); offline = append(offline, s); mu.Unlock() },
		evicted: func(s string) { mu.Lock(); evicted = append(evicted, s); mu.Unlock() },
	})

	a := newFakeDevice("CAM001")
	b := newFakeDevice("CAM001")
	require.NoError(t, r.Register("CAM001", a))
	_ = r.Register("CAM001", b)
	r.Remove("CAM001", a)

	assert.Equal(t, []string{"CAM001"}, online)
	assert.Equal(t, []string{"CAM001"}, evicted)
	assert.Equal(t, []string{"CAM001"}, offline)
}

type recordingListener struct {
	online, offline, evicted func(string)
}

func (r recordingListener) DeviceOnline(serial string)  { r.online(serial) }
func (r recordingListener) DeviceOffline(serial string) { r.offline(serial) }
func (r recordingListener) DeviceEvicted(serial string) { r.evicted(serial) }

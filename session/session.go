package session

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/mediahub/vhub/protocol"
)

// Classification is what a session has proven itself to be, decided once a
// DS_REGISTER_REQ or an authenticated client request is seen (spec §4.3.1).
// A session that never sends one stays Unclassified until it times out.
type Classification int

const (
	Unclassified Classification = iota
	Camera
	NVR
	Client
)

func (c Classification) String() string {
	switch c {
	case Camera:
		return "camera"
	case NVR:
		return "nvr"
	case Client:
		return "client"
	default:
		return "unclassified"
	}
}

// IsDevice reports whether the classification belongs on the device link
// rather than the client link.
func (c Classification) IsDevice() bool {
	return c == Camera || c == NVR
}

// WaitSlot is the cooperative poll-wait state for a client session blocked
// on CS_GET_STREAM_REQ's phase B: waiting for the addressed device's
// DS_PUSH_STREAM_ACK to land in the device's pending map (spec §4.3.2).
type WaitSlot struct {
	Waiting bool
	// Replied is set by the push-stream-ack handler the instant it writes a
	// match into this slot. ResponseCode alone cannot carry "no reply yet"
	// because this hub's own wire table gives success the value 0 (spec §7),
	// the same value spec §3 describes as the slot's not-replied sentinel.
	Replied      bool
	ResponseCode int
	// PushCSeq is the device-side CSeq this wait was keyed on at Phase A.
	// MatchedCSeq is what the device actually echoed back; the two are
	// compared as a belt-and-suspenders staleness check even though the
	// device's pending map already keys entries by CSeq uniquely (spec §3).
	PushCSeq     int
	MatchedCSeq  int
	ClientCSeq   int
	TimeoutTicks int
	RelayIP      string
	RelayPort    string
	StreamID     string
	Protocol     string
	// Span covers the whole brokered wait, from Phase A's push-stream-req
	// send to whichever poll tick in Phase B observes a reply or a timeout.
	// Left nil when tracing is disabled (a noop span either way).
	Span trace.Span
}

// PendingEntry correlates a device-addressed CSeq with the client session
// waiting on its reply (spec §4.3.2, §9). It lives in the pending map of the
// session the request was sent *to* — the device — keyed by the CSeq the hub
// assigned to that outgoing request.
type PendingEntry struct {
	Kind       protocol.MessageType
	Client     *Session
	ClientCSeq int
}

// Session is one accepted connection, either a device (camera/NVR) or a
// human client. Every field below mu is only ever touched while mu is held,
// including by goroutines other than the one running Run — cross-session
// writes (a device-ack handler updating a client's WaitSlot) go through
// UpdateWait/PendingTake precisely so they take the target's own mutex
// rather than relying on happens-before from the scheduler, the way the
// source's single cooperative thread could.
type Session struct {
	id   string
	conn net.Conn

	logger *slog.Logger

	writeMu sync.Mutex

	mu             sync.Mutex
	classification Classification
	authenticated  bool
	info           protocol.DeviceInfo
	wait           *WaitSlot
	pending        map[int]PendingEntry
	cseq           int

	alive        atomic.Bool
	holderCount  atomic.Int32
	lookupHold   atomic.Int32
	lastActivity atomic.Int64

	killCh   chan struct{}
	killOnce sync.Once

	idleTimeout time.Duration
}

// New wraps conn as a fresh, unclassified session. idleTimeout is applied as
// a read deadline before every request; zero disables it.
func New(id string, conn net.Conn, idleTimeout time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		id:          id,
		conn:        conn,
		logger:      logger.With("session", id),
		pending:     make(map[int]PendingEntry),
		killCh:      make(chan struct{}),
		idleTimeout: idleTimeout,
	}
	s.alive.Store(true)
	s.touch()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Classification() Classification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classification
}

func (s *Session) SetClassification(c Classification) {
	s.mu.Lock()
	s.classification = c
	s.mu.Unlock()
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	s.authenticated = v
	s.mu.Unlock()
}

// Info returns a copy of the device's current identity/channel snapshot.
// Satisfies registry.Device.
func (s *Session) Info() protocol.DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Session) SetInfo(info protocol.DeviceInfo) {
	s.mu.Lock()
	s.info = info
	s.mu.Unlock()
}

// Serial satisfies registry.Device.
func (s *Session) Serial() string {
	return s.Info().Serial
}

// Kill marks the session dead and unblocks its Run loop's poll-wait, if any.
// Safe to call more than once and from any goroutine. Satisfies
// registry.Device.
func (s *Session) Kill() {
	s.killOnce.Do(func() {
		s.alive.Store(false)
		close(s.killCh)
	})
}

// Alive reports whether the session has not been killed and has not torn
// itself down after a read error or idle timeout.
func (s *Session) Alive() bool {
	return s.alive.Load()
}

// LookupHold/LookupRelease track the registry's "someone is currently
// dereferencing this device" count. Distinct from HolderCount, which tracks
// pending-response entries that reference this session as a client.
// Satisfies registry.Device.
func (s *Session) LookupHold()    { s.lookupHold.Add(1) }
func (s *Session) LookupRelease() { s.lookupHold.Add(-1) }

func (s *Session) LookupHoldCount() int32 { return s.lookupHold.Load() }

// AddHolder/ReleaseHolder track how many pending-response entries on other
// sessions reference this session as the client to notify (spec §9). A
// session must not be destroyed while HolderCount is nonzero.
func (s *Session) AddHolder() int32 {
	return s.holderCount.Add(1)
}

func (s *Session) ReleaseHolder() int32 {
	return s.holderCount.Add(-1)
}

func (s *Session) HolderCount() int32 {
	return s.holderCount.Load()
}

// Destroyable reports whether the session has no reason left to be kept
// around: it is no longer alive, and nothing still references it as a
// pending-response target.
func (s *Session) Destroyable() bool {
	return !s.Alive() && s.HolderCount() == 0
}

func (s *Session) touch() {
	s.lastActivity.Store(time.Now().UnixNano())
}

// IdleFor returns how long it has been since the session last completed a
// request.
func (s *Session) IdleFor() time.Duration {
	last := s.lastActivity.Load()
	return time.Since(time.Unix(0, last))
}

// NextCSeq allocates the next CSeq this session will use for a
// hub-originated request (SD_PUSH_STREAM_REQ, SD_STREAM_STOP_REQ).
func (s *Session) NextCSeq() int {
	s.mu.Lock()
	s.cseq++
	v := s.cseq
	s.mu.Unlock()
	return v
}

// Wait returns a copy of the session's current WaitSlot, or nil if it is not
// waiting on anything.
func (s *Session) Wait() *WaitSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wait == nil {
		return nil
	}
	cp := *s.wait
	return &cp
}

// SetWait installs a new WaitSlot, replacing any previous one.
func (s *Session) SetWait(w *WaitSlot) {
	s.mu.Lock()
	s.wait = w
	s.mu.Unlock()
}

// ClearWait drops the session's WaitSlot.
func (s *Session) ClearWait() {
	s.mu.Lock()
	s.wait = nil
	s.mu.Unlock()
}

// UpdateWait runs fn against the session's WaitSlot under its own mutex, a
// no-op if there is none installed. Used by the device-ack handler to post a
// match into a client session it does not otherwise own.
func (s *Session) UpdateWait(fn func(*WaitSlot)) {
	s.mu.Lock()
	if s.wait != nil {
		fn(s.wait)
	}
	s.mu.Unlock()
}

// PendingInsert records that cseq, assigned to a request sent to this
// (device) session, will be answered on behalf of client. Adds a holder on
// client so it cannot be torn down while the device's reply is outstanding.
func (s *Session) PendingInsert(cseq int, entry PendingEntry) {
	entry.Client.AddHolder()
	s.mu.Lock()
	s.pending[cseq] = entry
	s.mu.Unlock()
}

// PendingTake removes and returns the pending entry for cseq, releasing the
// holder it placed on the client. ok is false if no entry is registered.
func (s *Session) PendingTake(cseq int) (PendingEntry, bool) {
	s.mu.Lock()
	entry, ok := s.pending[cseq]
	if ok {
		delete(s.pending, cseq)
	}
	s.mu.Unlock()
	if ok {
		entry.Client.ReleaseHolder()
	}
	return entry, ok
}

// PendingLen reports how many responses this session's pending map is still
// waiting on.
func (s *Session) PendingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// PendingDrain clears every outstanding pending entry, releasing each
// entry's holder. Called once on teardown so waiting clients are never
// leaked just because the device they were waiting on disappeared.
func (s *Session) PendingDrain() {
	s.mu.Lock()
	entries := s.pending
	s.pending = make(map[int]PendingEntry)
	s.mu.Unlock()

	for _, entry := range entries {
		entry.Client.ReleaseHolder()
	}
}

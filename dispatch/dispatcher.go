package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/registry"
	"github.com/mediahub/vhub/relay"
	"github.com/mediahub/vhub/session"
	"github.com/mediahub/vhub/snapshot"
)

// Dispatcher implements session.Handler, routing every decoded envelope to
// one of the nine handlers of spec.md §4.3. It holds every process-wide
// collaborator the handlers need: the device registry, the external
// relay-metadata hooks, the snapshot store, and the auth config.
type Dispatcher struct {
	registry   *registry.Registry
	hooks      relay.Hooks
	snapshots  *snapshot.Store
	authHashes map[string]string
	logger     *slog.Logger

	getStreamTimeout time.Duration
	pollInterval     time.Duration
}

// New constructs a Dispatcher. authHashes maps a device serial to the
// bcrypt hash of its expected register token (SPEC_FULL.md §4); a serial
// with no entry registers without a token check.
func New(reg *registry.Registry, hooks relay.Hooks, snaps *snapshot.Store, authHashes map[string]string, getStreamTimeout, pollInterval time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry:         reg,
		hooks:            hooks,
		snapshots:        snaps,
		authHashes:       authHashes,
		logger:           logger,
		getStreamTimeout: getStreamTimeout,
		pollInterval:     pollInterval,
	}
}

// Dispatch satisfies session.Handler. It is the single total match spec.md
// §9's "Protocol dispatch" design note asks for.
func (d *Dispatcher) Dispatch(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	switch env.MessageType() {
	case protocol.MsgDSRegisterReq:
		return d.handleRegister(ctx, s, env)
	case protocol.MsgCSGetStreamReq:
		return d.handleGetStream(ctx, s, env)
	case protocol.MsgDSPushStreamAck:
		return d.handlePushStreamAck(ctx, s, env)
	case protocol.MsgCSFreeStreamReq:
		return d.handleFreeStream(ctx, s, env)
	case protocol.MsgDSStreamStopAck:
		return d.handleStopAck(ctx, s, env)
	case protocol.MsgCSDeviceListReq:
		return d.handleDeviceList(ctx, s, env)
	case protocol.MsgCSDeviceInfoReq:
		return d.handleDeviceInfo(ctx, s, env)
	case protocol.MsgDSPostSnapReq:
		return d.handlePostSnap(ctx, s, env)
	default:
		return d.handleUnimplemented(ctx, s, env)
	}
}

// asSession type-asserts a registry.Device handle back to the concrete
// session type — the registry only ever holds *session.Session values in
// this process, per the "concrete type, not a second interface" design
// decision recorded in DESIGN.md.
func asSession(dev registry.Device) (*session.Session, bool) {
	sess, ok := dev.(*session.Session)
	return sess, ok
}

// httpStatusFor mirrors session's own statusFor: the wire ErrorNum table
// already doubles as real HTTP status codes (spec §7), except success,
// which is wire-0 but HTTP-200.
func httpStatusFor(code int) int {
	if code == protocol.ErrorSuccessOK {
		return http.StatusOK
	}
	return code
}

// errorResultMsg builds a Result carrying an error reply whose message
// type is the ack paired with the request's own type (spec §7: "the
// response type corresponding to the request type"), overriding the
// envelope's default error string when msg is non-empty.
func errorResultMsg(env protocol.Envelope, err error, msg string) session.Result {
	ack, _ := protocol.AckFor(env.MessageType())
	code := protocol.CodeFor(err)
	if msg == "" {
		msg = protocol.ErrorString(code)
	}
	resp := protocol.NewResponse(ack, env.CSeq(), code, msg)
	return session.Result{Envelope: resp, Ready: true, StatusCode: httpStatusFor(code)}
}

func errorResult(env protocol.Envelope, err error) session.Result {
	return errorResultMsg(env, err, "")
}

func okResult(env protocol.Envelope, ack protocol.MessageType) protocol.Envelope {
	return protocol.NewResponse(ack, env.CSeq(), protocol.ErrorSuccessOK, "OK")
}

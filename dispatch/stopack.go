package dispatch

import (
	"context"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handleStopAck implements spec.md §4.3.5: the device's acknowledgement
// that it has stopped pushing a stream. Nothing correlates on it; the reply
// is a plain OK envelope of the same message type, which only closes out
// the request/response cycle the transport loop expects.
func (d *Dispatcher) handleStopAck(_ context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	if !s.Authenticated() {
		return errorResult(env, errors.WrapInvalid(errors.ErrUnauthenticated, "dispatch", "handleStopAck", "device not authenticated")), nil
	}

	d.logger.Debug("stream-stop-ack", "session", s.ID(), "serial", s.Serial())
	resp := okResult(env, protocol.MsgDSStreamStopAck)
	return session.Result{Envelope: resp, Ready: true}, nil
}

package dispatch

import (
	"context"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handlePushStreamAck implements spec.md §4.3.3: the return path that makes
// get-stream's correlation engine work. s here is the device session that
// sent the ack.
func (d *Dispatcher) handlePushStreamAck(_ context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	if !s.Authenticated() {
		return errorResult(env, errors.WrapInvalid(errors.ErrUnauthenticated, "dispatch", "handlePushStreamAck", "device not authenticated")), nil
	}

	cseq := env.CSeq()
	entry, ok := s.PendingTake(cseq)
	if !ok {
		// The device echoed a CSeq we never issued — ignore (spec §4.3.3).
		d.logger.Debug("push-stream-ack for unknown cseq", "session", s.ID(), "cseq", cseq)
	} else if entry.Kind == protocol.MsgCSGetStreamReq {
		body := env.EasyDarwin.Body
		errCode := env.EasyDarwin.Header.ErrorNum
		entry.Client.UpdateWait(func(w *session.WaitSlot) {
			w.RelayIP = body.EasyDarwinServerAddr
			w.RelayPort = body.EasyDarwinServerPort
			w.StreamID = body.Reserve
			w.ResponseCode = errCode
			w.MatchedCSeq = cseq
			w.Replied = true
		})
	}
	// entry.Kind other than MsgCSGetStreamReq: no-op, preserved verbatim
	// per spec §9 open question (b).

	resp := okResult(env, protocol.MsgDSPushStreamAck)
	return session.Result{Envelope: resp, Ready: true}, nil
}

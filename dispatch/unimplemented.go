package dispatch

import (
	"context"
	"net/http"

	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handleUnimplemented implements spec.md §4.3.9: any message type the
// dispatcher has no handler for gets HTTP 501 and the session marked not
// alive (CloseConn triggers session.Run's own defer that clears alive).
func (d *Dispatcher) handleUnimplemented(_ context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	d.logger.Warn("unimplemented message type", "session", s.ID(), "message_type", env.MessageType())
	resp := protocol.NewResponse(protocol.MsgSCException, env.CSeq(), protocol.ErrorServerNotImplemented, protocol.ErrorString(protocol.ErrorServerNotImplemented))
	return session.Result{Envelope: resp, Ready: true, StatusCode: http.StatusNotImplemented, CloseConn: true}, nil
}

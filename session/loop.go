package session

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"time"

	verrors "github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
)

// Result is what a Handler returns for one dispatch attempt. Ready false
// means the handler is still waiting on a device's reply and wants to be
// called again after one poll quantum — the Go-native equivalent of the
// source's "ForceSameThread and return a wait quantum" (spec §4.3.2).
type Result struct {
	Envelope protocol.Envelope
	Ready    bool
	// StatusCode is the literal HTTP status line to write, for handlers that
	// must say something the envelope's own ErrorNum can't express on its
	// own — 408 while a get-stream wait is still pending (spec §4.3.2), 501
	// for a message type with no handler (spec §4.3.9). Zero means "derive
	// it from the envelope's ErrorNum", which is correct for every ordinary
	// success/error reply.
	StatusCode int
	CloseConn  bool
}

// Handler dispatches one decoded envelope for a session and produces a
// Result. Implemented by the dispatch package; kept as an interface here so
// session never imports it back (dispatch imports session, not the other
// way around).
type Handler interface {
	Dispatch(ctx context.Context, s *Session, env protocol.Envelope) (Result, error)
}

// Run reads framed HTTP requests off the connection until it is killed, the
// connection errors out, or the context is canceled, dispatching each one
// through h. pollInterval is the cooperative wait quantum for handlers that
// report Ready=false.
func (s *Session) Run(ctx context.Context, h Handler, pollInterval time.Duration) {
	defer s.conn.Close()
	defer s.alive.Store(false)

	reader := bufio.NewReader(s.conn)

	for {
		if !s.Alive() {
			return
		}

		if s.idleTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.idleTimeout))
		}

	req, err := http.ReadRequest(reader)
		if err != nil {
			s.logger.Debug("connection closed", "error", err)
			return
		}
		s.touch()

		if !s.handleOneRequest(ctx, h, req, pollInterval) {
			return
		}
	}
}

// handleOneRequest reads, validates, dispatches and answers one request. It
// returns false when the session should stop reading further requests.
func (s *Session) handleOneRequest(ctx context.Context, h Handler, req *http.Request, pollInterval time.Duration) bool {
	if kind, query, ok := restRoute(req); ok {
		_ = req.Body.Close()
		env := synthesizeREST(kind, query, s.NextCSeq())
		return s.runToCompletion(ctx, pollInterval, func(ctx context.Context) (Result, error) {
			return h.Dispatch(ctx, s, env)
		})
	}

	body, err := readBody(req)
	_ = req.Body.Close()
	if err != nil {
		code := protocol.CodeFor(err)
		_ = s.writeResponse(protocol.NewResponse(protocol.MsgSCException, 0, code, err.Error()), statusFor(code), false)
		return true
	}

	if err := protocol.ValidateEnvelope(body); err != nil {
		code := protocol.CodeFor(err)
		_ = s.writeResponse(protocol.NewResponse(protocol.MsgSCException, 0, code, err.Error()), statusFor(code), false)
		return true
	}

	env, err := protocol.Decode(body)
	if err != nil {
		wrapped := verrors.WrapInvalid(verrors.ErrBadArgument, "session", "handleOneRequest", "malformed envelope")
		code := protocol.CodeFor(wrapped)
		_ = s.writeResponse(protocol.NewResponse(protocol.MsgSCException, 0, code, wrapped.Error()), statusFor(code), false)
		return true
	}

	return s.runToCompletion(ctx, pollInterval, func(ctx context.Context) (Result, error) {
		return h.Dispatch(ctx, s, env)
	})
}

// runToCompletion repeatedly calls fn until it reports Ready, re-invoking it
// on every poll tick while it reports not-ready, writing the final response
// once it settles. It never blocks past the session being killed or ctx
// being canceled.
func (s *Session) runToCompletion(ctx context.Context, pollInterval time.Duration, fn func(context.Context) (Result, error)) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := fn(ctx)
		if err != nil {
			code := protocol.CodeFor(err)
			_ = s.writeResponse(protocol.NewResponse(protocol.MsgSCException, 0, code, err.Error()), statusFor(code), errors.Is(err, verrors.ErrSessionNotAlive))
			return !errors.Is(err, verrors.ErrSessionNotAlive)
		}

		if result.Ready {
			status := result.StatusCode
			if status == 0 {
				status = statusFor(result.Envelope.EasyDarwin.Header.ErrorNum)
			}
			if werr := s.writeResponse(result.Envelope, status, result.CloseConn); werr != nil {
				return false
			}
			return !result.CloseConn
		}

		select {
		case <-ticker.C:
			continue
		case <-s.killCh:
			return false
		case <-ctx.Done():
			return false
		}
	}
}

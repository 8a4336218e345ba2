package dispatch

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
	"github.com/mediahub/vhub/telemetry"
)

// handleGetStream implements spec.md §4.3.2's two-phase cooperative wait.
// The same envelope is re-dispatched by session.runToCompletion on every
// poll tick while the client's WaitSlot reports waiting=true (spec §9
// "Cooperative poll-wait": handlers must be idempotent with respect to
// wait_slot.waiting — only the first entry sends to the device).
func (d *Dispatcher) handleGetStream(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	if w := s.Wait(); w != nil && w.Waiting {
		return d.continueGetStream(ctx, s, env)
	}
	return d.startGetStream(ctx, s, env)
}

func buildPlaybackURL(ip, port, serial, channel, token string) string {
	return fmt.Sprintf("rtsp://%s:%s/%s/%s.sdp?token=%s", ip, port, serial, channel, token)
}

// startGetStream is Phase A: the first entry for this request.
func (d *Dispatcher) startGetStream(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	body := env.EasyDarwin.Body
	if body.Serial == "" || body.Protocol == "" {
		return errorResult(env, errors.WrapInvalid(errors.ErrBadArgument, "dispatch", "startGetStream", "serial and protocol required")), nil
	}
	channel := body.Channel
	if channel == "" {
		channel = "0"
	}

	_, span := telemetry.Tracer("dispatch").Start(ctx, "get_stream.wait")
	span.SetAttributes(attribute.String("serial", body.Serial), attribute.String("channel", channel))
	fail := func(err error) (session.Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return errorResult(env, err), nil
	}

	handle, ok := d.registry.Resolve(body.Serial)
	if !ok {
		return fail(errors.WrapInvalid(errors.ErrDeviceNotFound, "dispatch", "startGetStream", "serial "+body.Serial))
	}
	defer handle.Release()

	device, ok := asSession(handle.Device())
	if !ok {
		return fail(errors.WrapFatal(errors.ErrInternal, "dispatch", "startGetStream", "registry device is not a *session.Session"))
	}

	if ip, port, assoc, err := d.hooks.GetAssociatedDarwin(ctx, body.Serial, channel); err != nil {
		d.logger.Warn("GetAssociatedDarwin hook failed", "serial", body.Serial, "error", err)
	} else if assoc {
		token, err := d.hooks.GenStreamID(ctx, d.getStreamTimeout)
		if err != nil {
			return fail(errors.WrapTransient(errors.ErrInternal, "dispatch", "startGetStream", "GenStreamID: "+err.Error()))
		}
		resp := okResult(env, protocol.MsgSCGetStreamAck)
		resp.EasyDarwin.Body.URL = buildPlaybackURL(ip, port, body.Serial, channel, token)
		resp.EasyDarwin.Body.Protocol = body.Protocol
		span.SetStatus(codes.Ok, "")
		span.End()
		return session.Result{Envelope: resp, Ready: true}, nil
	}

	bestIP, bestPort, ok, err := d.hooks.GetBestDarwin(ctx)
	if err != nil {
		return fail(errors.WrapTransient(errors.ErrInternal, "dispatch", "startGetStream", "GetBestDarwin: "+err.Error()))
	}
	if !ok {
		return fail(errors.WrapInvalid(errors.ErrRelayNotFound, "dispatch", "startGetStream", "no relay available"))
	}

	// Token minted now becomes the stream-id hint carried on the push
	// request so the device knows which id to report back on its ack; a
	// fresh one is minted again in Phase B for the URL actually handed to
	// the client (spec §4.3.2 Phase A and Phase B both mint a token).
	pushToken, err := d.hooks.GenStreamID(ctx, d.getStreamTimeout)
	if err != nil {
		return fail(errors.WrapTransient(errors.ErrInternal, "dispatch", "startGetStream", "GenStreamID: "+err.Error()))
	}

	pushCSeq := device.NextCSeq()
	push := protocol.NewRequest(protocol.MsgSDPushStreamReq, pushCSeq)
	push.EasyDarwin.Body.Serial = body.Serial
	push.EasyDarwin.Body.Channel = channel
	push.EasyDarwin.Body.Protocol = body.Protocol
	push.EasyDarwin.Body.Reserve = pushToken
	push.EasyDarwin.Body.EasyDarwinServerAddr = bestIP
	push.EasyDarwin.Body.EasyDarwinServerPort = bestPort

	device.PendingInsert(pushCSeq, session.PendingEntry{
		Kind:       protocol.MsgCSGetStreamReq,
		Client:     s,
		ClientCSeq: env.CSeq(),
	})

	if err := device.Send(push); err != nil {
		device.PendingTake(pushCSeq)
		return fail(errors.WrapTransient(errors.ErrInternal, "dispatch", "startGetStream", "send push-stream-req: "+err.Error()))
	}

	s.SetWait(&session.WaitSlot{
		Waiting:    true,
		PushCSeq:   pushCSeq,
		ClientCSeq: env.CSeq(),
		Protocol:   body.Protocol,
		Span:       span,
	})

	return session.Result{Ready: false}, nil
}

// continueGetStream is Phase B: a poll-tick re-entry while waiting=true.
func (d *Dispatcher) continueGetStream(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	maxTicks := 1
	if d.pollInterval > 0 && d.getStreamTimeout > 0 {
		maxTicks = int(d.getStreamTimeout / d.pollInterval)
		if maxTicks < 1 {
			maxTicks = 1
		}
	}

	var (
		timedOut  bool
		stale     bool
		replied   bool
		code      int
		relayIP   string
		relayPort string
		proto     string
		span      = s.Wait().Span
	)

	s.UpdateWait(func(w *session.WaitSlot) {
		if !w.Replied {
			w.TimeoutTicks++
			if w.TimeoutTicks > maxTicks {
				timedOut = true
				w.Waiting = false
			}
			return
		}
		if w.MatchedCSeq != w.PushCSeq {
			// Stale reply from a prior aborted attempt (spec §4.3.2 Phase B).
			stale = true
			w.Replied = false
			w.TimeoutTicks++
			return
		}
		replied = true
		code = w.ResponseCode
		relayIP = w.RelayIP
		relayPort = w.RelayPort
		proto = w.Protocol
		w.Waiting = false
	})

	if timedOut {
		s.ClearWait()
		if span != nil {
			span.SetStatus(codes.Error, "request_timeout")
			span.End()
		}
		resp := protocol.NewResponse(protocol.MsgSCGetStreamAck, env.CSeq(), protocol.ErrorRequestTimeout, protocol.ErrorString(protocol.ErrorRequestTimeout))
		return session.Result{Envelope: resp, Ready: true, StatusCode: http.StatusRequestTimeout}, nil
	}

	if stale || !replied {
		return session.Result{Ready: false}, nil
	}

	s.ClearWait()

	if code != protocol.ErrorSuccessOK {
		if span != nil {
			span.SetStatus(codes.Error, protocol.ErrorString(code))
			span.End()
		}
		resp := protocol.NewResponse(protocol.MsgSCGetStreamAck, env.CSeq(), code, protocol.ErrorString(code))
		return session.Result{Envelope: resp, Ready: true, StatusCode: httpStatusFor(code)}, nil
	}

	body := env.EasyDarwin.Body
	channel := body.Channel
	if channel == "" {
		channel = "0"
	}

	token, err := d.hooks.GenStreamID(ctx, d.getStreamTimeout)
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
		}
		return errorResult(env, errors.WrapTransient(errors.ErrInternal, "dispatch", "continueGetStream", "GenStreamID: "+err.Error())), nil
	}

	resp := okResult(env, protocol.MsgSCGetStreamAck)
	resp.EasyDarwin.Body.URL = buildPlaybackURL(relayIP, relayPort, body.Serial, channel, token)
	resp.EasyDarwin.Body.Protocol = proto
	if span != nil {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
	return session.Result{Envelope: resp, Ready: true}, nil
}

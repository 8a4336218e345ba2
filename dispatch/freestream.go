package dispatch

import (
	"context"
	"strings"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// parseSerialChannel reads a device address out of a free-stream request
// body: either a compound "serial/channel" string in Reserve, or Serial and
// Channel given separately. Channel defaults to "0" when absent either way.
func parseSerialChannel(body protocol.Body) (serial, channel string) {
	serial, channel = body.Serial, body.Channel
	if serial == "" && body.Reserve != "" {
		if s, c, ok := strings.Cut(body.Reserve, "/"); ok {
			serial, channel = s, c
		} else {
			serial = body.Reserve
		}
	}
	if channel == "" {
		channel = "0"
	}
	return serial, channel
}

// handleFreeStream implements spec.md §4.3.4. The client's release of a
// stream it is no longer watching is best-effort toward the device: once the
// device is resolved, the hub tells it to stop pushing and replies to the
// client immediately, regardless of whether the device is even still
// reachable. A serial that resolves to no registered device is rejected, as
// the original ExecNetMsgCSFreeStreamReq does.
func (d *Dispatcher) handleFreeStream(_ context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	serial, channel := parseSerialChannel(env.EasyDarwin.Body)

	if serial == "" {
		return errorResult(env, errors.WrapInvalid(errors.ErrAttrAbsent, "dispatch", "handleFreeStream", "serial required")), nil
	}

	handle, ok := d.registry.Resolve(serial)
	if !ok {
		return errorResult(env, errors.WrapInvalid(errors.ErrDeviceNotFound, "dispatch", "handleFreeStream", "serial "+serial)), nil
	}
	defer handle.Release()

	if device, ok := asSession(handle.Device()); ok {
		stop := protocol.NewRequest(protocol.MsgSDStreamStopReq, device.NextCSeq())
		stop.EasyDarwin.Body.Serial = serial
		stop.EasyDarwin.Body.Channel = channel
		if err := device.Send(stop); err != nil {
			d.logger.Warn("stream-stop-req send failed", "serial", serial, "channel", channel, "error", err)
		}
	}

	resp := okResult(env, protocol.MsgSCFreeStreamAck)
	return session.Result{Envelope: resp, Ready: true}, nil
}

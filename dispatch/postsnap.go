package dispatch

import (
	"context"
	"encoding/base64"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
	"github.com/mediahub/vhub/snapshot"
)

// handlePostSnap implements spec.md §4.3.8. s is the device session itself —
// the upload arrives on the device's own connection.
func (d *Dispatcher) handlePostSnap(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	if !s.Authenticated() {
		return errorResult(env, errors.WrapInvalid(errors.ErrUnauthenticated, "dispatch", "handlePostSnap", "device not authenticated")), nil
	}

	body := env.EasyDarwin.Body
	if body.Serial == "" || body.Image == "" {
		return errorResult(env, errors.WrapInvalid(errors.ErrAttrAbsent, "dispatch", "handlePostSnap", "serial and image required")), nil
	}
	channel := body.Channel
	if channel == "" {
		channel = "0"
	}

	data, err := base64.StdEncoding.DecodeString(body.Image)
	if err != nil {
		return errorResult(env, errors.WrapInvalid(errors.ErrBadArgument, "dispatch", "handlePostSnap", "image is not valid base64")), nil
	}

	t := snapshot.ParseTime(body.Time)
	webPath, err := d.snapshots.Write(ctx, body.Serial, channel, data, body.Type, t)
	if err != nil {
		return errorResult(env, err), nil
	}

	info := s.Info()
	if info.IsCamera() {
		info.SnapURL = webPath
	} else {
		if info.Channels == nil {
			info.Channels = make(map[string]protocol.ChannelInfo)
		}
		ch := info.Channels[channel]
		ch.Channel = channel
		ch.SnapURL = webPath
		info.Channels[channel] = ch
	}
	s.SetInfo(info)

	resp := okResult(env, protocol.MsgSDPostSnapAck)
	resp.EasyDarwin.Body.SnapURL = webPath
	return session.Result{Envelope: resp, Ready: true}, nil
}

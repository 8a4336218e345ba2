package dispatch

import (
	"context"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handleDeviceInfo implements spec.md §4.3.7: a camera replies with its
// single snap_url, an NVR with its channel_count and full channel list.
func (d *Dispatcher) handleDeviceInfo(_ context.Context, _ *session.Session, env protocol.Envelope) (session.Result, error) {
	body := env.EasyDarwin.Body
	if body.Serial == "" {
		return errorResult(env, errors.WrapInvalid(errors.ErrAttrAbsent, "dispatch", "handleDeviceInfo", "serial required")), nil
	}

	handle, ok := d.registry.Resolve(body.Serial)
	if !ok {
		return errorResult(env, errors.WrapInvalid(errors.ErrDeviceNotFound, "dispatch", "handleDeviceInfo", "serial "+body.Serial)), nil
	}
	defer handle.Release()

	info := handle.Device().Info()
	resp := okResult(env, protocol.MsgSCDeviceInfoAck)
	resp.EasyDarwin.Body.Serial = info.Serial
	if info.IsCamera() {
		resp.EasyDarwin.Body.SnapURL = info.SnapURL
		return session.Result{Envelope: resp, Ready: true}, nil
	}

	resp.EasyDarwin.Body.ChannelCount = info.ChannelCount
	channels := make([]protocol.ChannelInfo, 0, len(info.Channels))
	for _, ch := range info.Channels {
		channels = append(channels, ch)
	}
	resp.EasyDarwin.Body.Channels = channels
	return session.Result{Envelope: resp, Ready: true}, nil
}

package dispatch

import (
	"context"

	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handleDeviceList implements spec.md §4.3.6. Filters the registry snapshot
// by app_type and terminal_type when the request supplies either.
func (d *Dispatcher) handleDeviceList(_ context.Context, _ *session.Session, env protocol.Envelope) (session.Result, error) {
	body := env.EasyDarwin.Body
	snapshot := d.registry.Snapshot()

	devices := make([]protocol.DeviceSummary, 0, len(snapshot))
	for _, info := range snapshot {
		if body.AppType != "" && info.AppType != body.AppType {
			continue
		}
		if body.TerminalType != "" && info.TerminalType != body.TerminalType {
			continue
		}
		devices = append(devices, protocol.DeviceSummary{
			Serial:       info.Serial,
			Name:         info.Name,
			Tag:          info.Tag,
			AppType:      info.AppType,
			TerminalType: info.TerminalType,
			SnapURL:      info.SnapURL,
		})
	}

	resp := okResult(env, protocol.MsgSCDeviceListAck)
	resp.EasyDarwin.Body.Devices = devices
	resp.EasyDarwin.Body.DeviceCount = len(devices)
	return session.Result{Envelope: resp, Ready: true}, nil
}

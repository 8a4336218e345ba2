package dispatch

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/mediahub/vhub/errors"
	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

// handleRegister implements spec.md §4.3.1.
func (d *Dispatcher) handleRegister(ctx context.Context, s *session.Session, env protocol.Envelope) (session.Result, error) {
	body := env.EasyDarwin.Body

	if body.AppType != protocol.AppTypeCamera && body.AppType != protocol.AppTypeNVR {
		return errorResult(env, errors.WrapInvalid(errors.ErrBadArgument, "dispatch", "handleRegister", "app_type must be camera or nvr")), nil
	}
	if body.Serial == "" {
		return errorResult(env, errors.WrapInvalid(errors.ErrAttrAbsent, "dispatch", "handleRegister", "serial required")), nil
	}

	// Supplemented feature (SPEC_FULL.md §4): verify a device-presented
	// token against a configured bcrypt hash, the original's commented-out,
	// never-implemented check. A serial with no configured hash registers
	// as before.
	if hash, ok := d.authHashes[body.Serial]; ok {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Token)); err != nil {
			return errorResult(env, errors.WrapInvalid(errors.ErrUnauthenticated, "dispatch", "handleRegister", "token mismatch")), nil
		}
	}

	classification := session.Camera
	if body.AppType == protocol.AppTypeNVR {
		classification = session.NVR
	}
	s.SetClassification(classification)
	s.SetInfo(protocol.DeviceInfo{
		Serial:       body.Serial,
		Name:         body.Name,
		Tag:          body.Tag,
		AppType:      body.AppType,
		TerminalType: body.TerminalType,
	})

	if err := d.registry.Register(body.Serial, s); err != nil {
		// Conflict: registry.Register already signalled the incumbent to
		// kill. The new device is told to retry (spec §9 open question a —
		// no added retry budget; documented in DESIGN.md).
		return errorResultMsg(env, err, "name already exists"), nil
	}

	s.SetAuthenticated(true)
	if err := d.hooks.AddDevName(ctx, body.Serial); err != nil {
		d.logger.Warn("AddDevName hook failed", "serial", body.Serial, "error", err)
	}
	d.logger.Info("device registered", "serial", body.Serial, "app_type", body.AppType)

	resp := okResult(env, protocol.MsgSDRegisterAck)
	resp.EasyDarwin.Body.Serial = body.Serial
	resp.EasyDarwin.Body.SessionID = s.ID()
	return session.Result{Envelope: resp, Ready: true}, nil
}

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediahub/vhub/protocol"
	"github.com/mediahub/vhub/session"
)

func TestHandleRegisterSucceeds(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})
	s, conn := newTestSession("dev1")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgDSRegisterReq, 1)
	req.EasyDarwin.Body.Serial = "CAM001"
	req.EasyDarwin.Body.AppType = protocol.AppTypeCamera
	req.EasyDarwin.Body.Name = "front door"

	result, err := d.handleRegister(backgroundCtx(), s, req)
	require.NoError(t, err)
	assert.True(t, result.Ready)
	assert.Equal(t, protocol.ErrorSuccessOK, result.Envelope.EasyDarwin.Header.ErrorNum)
	assert.Equal(t, "CAM001", result.Envelope.EasyDarwin.Body.Serial)
	assert.True(t, s.Authenticated())
	assert.Equal(t, session.Camera, s.Classification())

	handle, ok := d.registry.Resolve("CAM001")
	require.True(t, ok)
	defer handle.Release()
	assert.Equal(t, []string{"CAM001"}, d.hooks.(*fakeHooks).addDevNames)
}

func TestHandleRegisterRejectsMissingSerial(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})
	s, conn := newTestSession("dev2")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgDSRegisterReq, 1)
	req.EasyDarwin.Body.AppType = protocol.AppTypeCamera

	result, err := d.handleRegister(backgroundCtx(), s, req)
	require.NoError(t, err)
	assert.NotEqual(t, protocol.ErrorSuccessOK, result.Envelope.EasyDarwin.Header.ErrorNum)
	assert.False(t, s.Authenticated())
}

func TestHandleRegisterRejectsBadToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	d := New(newTestDispatcher(&fakeHooks{}).registry, &fakeHooks{}, nil,
		map[string]string{"CAM002": string(hash)}, 0, 0, nil)
	s, conn := newTestSession("dev3")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgDSRegisterReq, 1)
	req.EasyDarwin.Body.Serial = "CAM002"
	req.EasyDarwin.Body.AppType = protocol.AppTypeCamera
	req.EasyDarwin.Body.Token = "wrong"

	result, err := d.handleRegister(backgroundCtx(), s, req)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrorClientUnauthorized, result.Envelope.EasyDarwin.Header.ErrorNum)
	assert.False(t, s.Authenticated())
}

func TestHandleRegisterConflictEvictsIncumbent(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})

	first, conn1 := newTestSession("dev-a")
	defer conn1.Close()
	req := protocol.NewRequest(protocol.MsgDSRegisterReq, 1)
	req.EasyDarwin.Body.Serial = "CAM003"
	req.EasyDarwin.Body.AppType = protocol.AppTypeCamera
	_, err := d.handleRegister(backgroundCtx(), first, req)
	require.NoError(t, err)
	require.True(t, first.Alive())

	second, conn2 := newTestSession("dev-b")
	defer conn2.Close()
	result, err := d.handleRegister(backgroundCtx(), second, req)
	require.NoError(t, err)
	assert.NotEqual(t, protocol.ErrorSuccessOK, result.Envelope.EasyDarwin.Header.ErrorNum)
	assert.False(t, first.Alive())
}

package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/vhub/protocol"
)

func TestParseSerialChannelFromSeparateFields(t *testing.T) {
	serial, channel := parseSerialChannel(protocol.Body{Serial: "CAM1", Channel: "2"})
	assert.Equal(t, "CAM1", serial)
	assert.Equal(t, "2", channel)
}

func TestParseSerialChannelFromCompoundReserve(t *testing.T) {
	serial, channel := parseSerialChannel(protocol.Body{Reserve: "CAM1/3"})
	assert.Equal(t, "CAM1", serial)
	assert.Equal(t, "3", channel)
}

func TestParseSerialChannelDefaultsChannelToZero(t *testing.T) {
	serial, channel := parseSerialChannel(protocol.Body{Reserve: "CAM1"})
	assert.Equal(t, "CAM1", serial)
	assert.Equal(t, "0", channel)
}

func TestHandleFreeStreamRejectsUnknownDevice(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})
	client, conn := newTestSession("client30")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgCSFreeStreamReq, 4)
	req.EasyDarwin.Body.Serial = "DOES-NOT-EXIST"

	result, err := d.handleFreeStream(backgroundCtx(), client, req)
	require.NoError(t, err)
	assert.True(t, result.Ready)
	assert.Equal(t, protocol.ErrorDeviceNotFound, result.Envelope.EasyDarwin.Header.ErrorNum)
}

func TestHandleFreeStreamRejectsEmptySerial(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})
	client, conn := newTestSession("client30b")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgCSFreeStreamReq, 4)

	result, err := d.handleFreeStream(backgroundCtx(), client, req)
	require.NoError(t, err)
	assert.True(t, result.Ready)
	assert.NotEqual(t, protocol.ErrorSuccessOK, result.Envelope.EasyDarwin.Header.ErrorNum)
}

func TestHandleFreeStreamSendsStopToRegisteredDevice(t *testing.T) {
	d := newTestDispatcher(&fakeHooks{})
	dev, cleanup := registerDevice(t, d, "CAM31")
	defer cleanup()

	client, conn := newTestSession("client31")
	defer conn.Close()

	req := protocol.NewRequest(protocol.MsgCSFreeStreamReq, 5)
	req.EasyDarwin.Body.Serial = "CAM31"
	req.EasyDarwin.Body.Channel = "0"

	result, err := d.handleFreeStream(backgroundCtx(), client, req)
	require.NoError(t, err)
	assert.True(t, result.Ready)
	_ = dev
}

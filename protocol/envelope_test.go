package protocol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env := NewRequest(MsgCSGetStreamReq, 7)
	env.EasyDarwin.Body.Serial = "CAM001"
	env.EasyDarwin.Body.Channel = "0"
	env.EasyDarwin.Body.Protocol = "RTSP"

	data, err := env.Marshal()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, MsgCSGetStreamReq, decoded.MessageType())
	assert.Equal(t, 7, decoded.CSeq())
	assert.Equal(t, "CAM001", decoded.EasyDarwin.Body.Serial)
}

func TestNewResponseEchoesCSeq(t *testing.T) {
	resp := NewResponse(MsgSCGetStreamAck, 42, ErrorDeviceNotFound, ErrorString(ErrorDeviceNotFound))

	assert.Equal(t, 42, resp.CSeq())
	assert.Equal(t, ErrorDeviceNotFound, resp.EasyDarwin.Header.ErrorNum)
	assert.Equal(t, "Device Not Found", resp.EasyDarwin.Header.ErrorString)
}

func TestHeaderCSeqIntHandlesGarbage(t *testing.T) {
	h := Header{CSeq: "not-a-number"}
	assert.Equal(t, 0, h.CSeqInt())
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestDeviceListBodyRoundTripsExactly(t *testing.T) {
	env := NewResponse(MsgSCDeviceListAck, 3, ErrorSuccessOK, "OK")
	env.EasyDarwin.Body.DeviceCount = 2
	env.EasyDarwin.Body.Devices = []DeviceSummary{
		{Serial: "CAM001", Name: "front door", Tag: "outdoor", AppType: AppTypeCamera, SnapURL: "/snaps/CAM001/latest.jpg"},
		{Serial: "NVR002", Name: "garage", AppType: AppTypeNVR, TerminalType: "nvr8"},
	}

	data, err := env.Marshal()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	if diff := cmp.Diff(env.EasyDarwin.Body.Devices, decoded.EasyDarwin.Body.Devices); diff != "" {
		t.Fatalf("Devices mismatch after round trip (-want +got):\n%s", diff)
	}
}

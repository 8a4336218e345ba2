package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAckForKnownRequests(t *testing.T) {
	cases := []struct {
		req  MessageType
		want MessageType
	}{
		{MsgDSRegisterReq, MsgSDRegisterAck},
		{MsgCSGetStreamReq, MsgSCGetStreamAck},
		{MsgCSFreeStreamReq, MsgSCFreeStreamAck},
		{MsgCSDeviceListReq, MsgSCDeviceListAck},
		{MsgCSDeviceInfoReq, MsgSCDeviceInfoAck},
		{MsgDSPostSnapReq, MsgSDPostSnapAck},
	}
	for _, c := range cases {
		got, ok := AckFor(c.req)
		assert.True(t, ok, c.req.String())
		assert.Equal(t, c.want, got)
	}
}

func TestAckForUnknownFallsBackToException(t *testing.T) {
	got, ok := AckFor(MessageType(123456))
	assert.False(t, ok)
	assert.Equal(t, MsgSCException, got)
}

func TestMessageTypeStringFallback(t *testing.T) {
	assert.Equal(t, "UNKNOWN", MessageType(9).String())
	assert.Equal(t, "DS_REGISTER_REQ", MsgDSRegisterReq.String())
}

package session

import (
	"net"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mediahub/vhub/protocol"
)

func TestRunLeavesNoGoroutineAfterKill(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	server, client := net.Pipe()
	defer client.Close()
	s := New("leak1", server, 0, nil)

	h := &funcHandler{fn: func(n int, env protocol.Envelope) (Result, error) {
		return Result{Envelope: protocol.NewResponse(protocol.MsgSCDeviceInfoAck, env.CSeq(), protocol.ErrorSuccessOK, "OK"), Ready: true}, nil
	}}

	done := runInBackground(t, s, h, 5*time.Millisecond)
	s.Kill()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Kill")
	}
}

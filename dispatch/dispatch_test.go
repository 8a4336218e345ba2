package dispatch

import (
	"context"
	"net"
	"time"

	"github.com/mediahub/vhub/registry"
	"github.com/mediahub/vhub/relay"
	"github.com/mediahub/vhub/session"
)

// fakeHooks lets each get-stream test control brokering outcomes without a
// real Redis instance, mirroring relay.NoopHooks' always-available shape
// but with per-test return values.
type fakeHooks struct {
	assocIP, assocPort string
	assoc              bool
	assocErr           error

	bestIP, bestPort string
	best             bool
	bestErr          error

	streamID    string
	genErr      error
	addDevNames []string
}

func (f *fakeHooks) AddDevName(_ context.Context, serial string) error {
	f.addDevNames = append(f.addDevNames, serial)
	return nil
}

func (f *fakeHooks) GetAssociatedDarwin(_ context.Context, _, _ string) (string, string, bool, error) {
	return f.assocIP, f.assocPort, f.assoc, f.assocErr
}

func (f *fakeHooks) GetBestDarwin(_ context.Context) (string, string, bool, error) {
	return f.bestIP, f.bestPort, f.best, f.bestErr
}

func (f *fakeHooks) GenStreamID(_ context.Context, _ time.Duration) (string, error) {
	if f.genErr != nil {
		return "", f.genErr
	}
	return f.streamID, nil
}

var _ relay.Hooks = (*fakeHooks)(nil)

func newTestSession(id string) (*session.Session, net.Conn) {
	server, client := net.Pipe()
	return session.New(id, server, 0, nil), client
}

func newTestDispatcher(hooks relay.Hooks) *Dispatcher {
	return New(registry.New(), hooks, nil, nil, 50*time.Millisecond, 5*time.Millisecond, nil)
}

func backgroundCtx() context.Context {
	return context.Background()
}

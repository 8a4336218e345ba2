package session

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
)

// Accept runs an accept loop on ln until ctx is canceled, handing every new
// connection to onConn as a freshly constructed, unclassified Session
// running on its own goroutine. onConn is responsible for eventually
// calling Run.
func Accept(ctx context.Context, ln net.Listener, idleTimeout time.Duration, logger *slog.Logger, onConn func(*Session)) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		s := New(uuid.NewString(), conn, idleTimeout, logger)
		go onConn(s)
	}
}

// Package dispatch implements session.Handler: the request dispatcher and
// its nine message handlers (spec.md §4.3), routing a decoded envelope by
// message type to register, get-stream, push-stream-ack, free-stream,
// stop-ack, device-list, device-info, and post-snap, falling back to HTTP
// 501 for anything else.
package dispatch

// Package session implements the per-connection state for both device links
// and client links (spec §4.1). Each accepted connection gets one goroutine
// running Session.Run, which blocks reading framed HTTP requests off the
// wire and feeds each one through an injected Handler — the Go-native
// counterpart of the source's seven-state reactor loop (ReadingFirstRequest
// through CleaningUp): the goroutine scheduler supplies the "same worker
// thread" pinning that loop relied on, and a time.Ticker plus a kill channel
// supply the cooperative 100ms poll-wait without ever touching another
// session's mutex.
//
// A Session doubles as a registry.Device once it classifies itself as a
// camera or NVR: Serial, Info, Kill, LookupHold and LookupRelease are all
// satisfied directly, so the registry never needs to know about net.Conn or
// HTTP framing.
package session

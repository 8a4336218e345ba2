// Package registry implements the process-wide device directory: a
// serial -> device session map with conflict eviction and lookup-hold scoped
// handles (spec §4.5).
//
// A device is removed from the table only by itself, on teardown, and only
// if it is still the occupant of its serial — a newer device that won a
// conflict is never evicted by the loser's delayed cleanup. Resolve returns
// a Handle whose Release is idempotent and safe from any control path;
// forgetting to call it leaks a lookup-hold, not a session (the hold count
// stalls, but the process keeps running) — callers should defer Release
// immediately after a successful Resolve.
package registry

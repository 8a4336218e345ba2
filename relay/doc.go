// Package relay provides the hub's bindings to the external metadata cache
// spec.md §6 calls out as an assumed collaborator: name registration, relay
// association lookup, least-loaded relay selection, and stream-id minting.
// The core only ever invokes these as named hooks and never reaches into the
// store directly — NoopHooks and RedisHooks are the two providers, selected
// by config.
package relay

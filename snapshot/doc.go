// Package snapshot persists device-uploaded images (spec.md §4.3.8, §6): an
// atomic write to local disk under <root>/<serial>/, an optional SQLite
// upload index (a supplement over the original's single-latest-path field,
// SPEC_FULL.md §4), and an optional best-effort S3 mirror.
package snapshot

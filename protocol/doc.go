// Package protocol defines the wire format spoken between the hub and its
// peers: camera/NVR devices on the long-lived device link, and the darwin
// relay addresses brokered into client responses.
//
// Every message is a JSON document shaped like:
//
//	{"EasyDarwin": {"Header": {...}, "Body": {...}}}
//
// The Header carries protocol bookkeeping (Version, CSeq, ErrorNum,
// ErrorString); the Body carries the fields relevant to one MessageType.
// Because a handful of fields (Serial, Channel, Protocol, Reserve, ...) are
// shared across many message kinds while a few are specific to one or two,
// Body is a single flat struct with `omitempty` tags rather than nine
// separate wire types — this mirrors the source protocol's JSON value tree,
// where the same tag constants are reused across message kinds.
package protocol

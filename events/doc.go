// Package events pushes registry membership changes to connected web
// clients over a websocket, the live alternative to polling
// /api/getdevicelist (SPEC_FULL.md §4 "Live registry event feed").
package events

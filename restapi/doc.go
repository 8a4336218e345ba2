// Package restapi exposes the hub's human-facing HTTP surface on a separate
// address from the device/client protocol listener: the same three REST
// endpoints spec.md §6 defines (routed here through a chi.Router instead of
// the session loop's own lightweight path match), plus /healthz, /metrics,
// and the live registry event feed.
package restapi

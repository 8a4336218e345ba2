// Package telemetry wires OpenTelemetry tracing across the hub: one span
// per request on the REST API, and a span covering get-stream's brokered
// wait on the device's push-stream-ack (a child of the REST request's span
// when the request came in over the REST API). Requests on the device/client
// listener get no per-request span.
package telemetry

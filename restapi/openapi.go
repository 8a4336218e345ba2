package restapi

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// openapiDoc describes the three REST endpoints spec.md §6 defines. It is
// loaded and validated once at startup so drift between this document and
// the router below is caught before the hub ever serves traffic, rather
// than discovered by a client.
const openapiDoc = `
openapi: 3.0.3
info:
  title: vhub control-plane REST API
  version: "1.0"
paths:
  /api/getdevicelist:
    get:
      summary: List registered devices
      parameters:
        - name: AppType
          in: query
          schema: { type: string }
        - name: TerminalType
          in: query
          schema: { type: string }
      responses:
        "200": { description: device list }
  /api/getdeviceinfo:
    get:
      summary: Get one device's channel detail
      parameters:
        - name: device
          in: query
          required: true
          schema: { type: string }
      responses:
        "200": { description: device info }
        "404": { description: device not found }
  /api/getdevicestream:
    get:
      summary: Broker a playback URL for a device channel
      parameters:
        - name: device
          in: query
          required: true
          schema: { type: string }
        - name: channel
          in: query
          schema: { type: string }
        - name: protocol
          in: query
          schema: { type: string }
        - name: reserve
          in: query
          schema: { type: string }
      responses:
        "200": { description: playback URL }
        "408": { description: device did not respond in time }
`

// validateOpenAPIDoc parses and validates the embedded document, returning
// an error that should stop startup if the document itself is malformed.
func validateOpenAPIDoc() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openapiDoc))
	if err != nil {
		return nil, fmt.Errorf("restapi: parse embedded openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("restapi: embedded openapi document is invalid: %w", err)
	}
	return doc, nil
}

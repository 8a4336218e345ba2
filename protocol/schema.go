package protocol

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mediahub/vhub/errors"
)

// envelopeSchemaJSON declares the minimal structural contract every
// JSON-bodied device/client request must satisfy before it is handed to
// Decode and the dispatcher: a MessageName integer and a string CSeq inside
// EasyDarwin.Header. Per-message-kind field requirements (e.g. Serial on
// register) stay in the handlers, which already carry the richer business
// rules spec §4.3 describes; this schema only replaces the envelope-shape
// presence checks.
const envelopeSchemaJSON = `{
	"type": "object",
	"required": ["EasyDarwin"],
	"properties": {
		"EasyDarwin": {
			"type": "object",
			"required": ["Header"],
			"properties": {
				"Header": {
					"type": "object",
					"required": ["MessageName", "CSeq"],
					"properties": {
						"MessageName": {"type": "integer"},
						"CSeq": {"type": "string"},
						"Version": {"type": "string"},
						"ErrorNum": {"type": "integer"},
						"ErrorString": {"type": "string"}
					}
				},
				"Body": {"type": "object"}
			}
		}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaLoadErr  error
)

func envelopeSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaLoadErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(envelopeSchemaJSON))
	})
	return compiledSchema, schemaLoadErr
}

// ValidateEnvelope checks raw request bytes against the envelope's JSON
// Schema contract. Called by the session loop once a request body is fully
// buffered (spec §4.2), before Decode and dispatch — a declarative
// replacement for the source's ad hoc field-presence checks.
func ValidateEnvelope(data []byte) error {
	schema, err := envelopeSchema()
	if err != nil {
		return fmt.Errorf("protocol: compile envelope schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.WrapInvalid(err, "protocol", "ValidateEnvelope", "malformed JSON")
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return errors.WrapInvalid(errors.ErrBadArgument, "protocol", "ValidateEnvelope", strings.Join(details, "; "))
	}
	return nil
}

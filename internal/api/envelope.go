package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the wire version of the response envelope. Bump it
// when the envelope structure changes in a way clients must detect.
const EnvelopeVersion = 1

// APIEnvelope wraps every JSON response in a consistent structure.
type APIEnvelope struct {
	Version int    `json:"v" doc:"Envelope version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitempty" doc:"Response payload"`
	Error   string `json:"error,omitempty" doc:"Error message when success is false"`
	Code    string `json:"code,omitempty" doc:"Machine-readable error code when success is false"`
}

// EnvelopeTransformer wraps response bodies in the APIEnvelope. Errors
// (anything implementing error) become failure envelopes; everything else
// is wrapped as data.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if err, ok := v.(error); ok {
		envelope := APIEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   err.Error(),
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			envelope.Error = apiErr.Message
			envelope.Code = apiErr.Code
			envelope.Data = apiErr.Details
		}
		return envelope, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/reelfeed/reelfeed-server/internal/envelope"
)

// EnvelopeVersion is the value of "v" in every response.
const EnvelopeVersion = envelope.Version

// EnvelopeTransformer wraps huma responses in the plaintext envelope.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	return NewEnvelopeTransformer(nil)(ctx, status, v)
}

// NewEnvelopeTransformer returns a huma transformer wrapping every response
// body in an envelope. Success payloads are sealed when codec has a key.
func NewEnvelopeTransformer(codec *envelope.Codec) huma.Transformer {
	return func(_ huma.Context, status string, v any) (any, error) {
		switch body := v.(type) {
		case envelope.Envelope, *envelope.Envelope:
			return v, nil
		case *APIError:
			return envelope.FailDetailed(body.Code, body.Message, body.Details), nil
		case error:
			var apiErr *APIError
			if errors.As(body, &apiErr) {
				return envelope.FailDetailed(apiErr.Code, apiErr.Message, apiErr.Details), nil
			}
			return envelope.Fail(body.Error()), nil
		}

		if code, err := strconv.Atoi(status); err == nil && code >= 400 {
			return envelope.Fail(http.StatusText(code)), nil
		}
		return codec.Wrap(v)
	}
}

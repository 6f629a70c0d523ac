// Package envelope wraps every API payload in the uniform transport envelope
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"Failed to fetch data","code":"UPSTREAM_UNAVAILABLE","message":"Failed to fetch data"}
//
// When a key is configured the success payload is sealed with
// XChaCha20-Poly1305 and travels base64 encoded in "sealed" instead of "data".
package envelope

import (
	"encoding/json/jsontext"
)

// Version is the envelope format version carried in "v".
const Version = 1

// Envelope is the outgoing wire shape.
type Envelope struct {
	Version int    `json:"v" doc:"Envelope format version"`
	Success bool   `json:"success" doc:"Whether the request succeeded"`
	Data    any    `json:"data,omitzero" doc:"Payload on success"`
	Sealed  string `json:"sealed,omitzero" doc:"Base64 nonce and ciphertext of the payload when sealing is on"`
	Error   string `json:"error,omitzero" doc:"Error message on failure"`
	Code    string `json:"code,omitzero" doc:"Machine-readable error code"`
	Message string `json:"message,omitzero" doc:"Human-readable error message"`
	Details any    `json:"details,omitzero" doc:"Additional error details"`
}

// Raw is the incoming wire shape, with the payload left undecoded.
type Raw struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    jsontext.Value `json:"data,omitzero"`
	Sealed  string         `json:"sealed,omitzero"`
	Error   string         `json:"error,omitzero"`
	Code    string         `json:"code,omitzero"`
	Message string         `json:"message,omitzero"`
	Details jsontext.Value `json:"details,omitzero"`
}

// Fail builds a simple error envelope. Errors are never sealed.
func Fail(message string) Envelope {
	return Envelope{Version: Version, Error: message}
}

// FailDetailed builds an error envelope carrying a code and details.
func FailDetailed(code, message string, details any) Envelope {
	return Envelope{
		Version: Version,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}

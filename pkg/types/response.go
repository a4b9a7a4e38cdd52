// Package types holds the JSON envelopes shared by every endpoint.
package types

// SuccessEnvelope is {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-visible failure. Details appear only for codes
// that allow them.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// ErrorEnvelope is {"error": {...}}.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

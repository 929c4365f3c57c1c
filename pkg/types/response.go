// Package types holds the wire envelopes shared by every API response.
package types

// SuccessEnvelope wraps any successful payload under "data".
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public error body: a machine-readable code, a human
// message, and optional structured details for validation failures.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under "error".
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

package webapp

// Error represents a standardized API error payload.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the standard response wrapper for API endpoints.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// OKEnvelope builds a success response.
func OKEnvelope(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

// ErrorEnvelope builds an error response.
func ErrorEnvelope(code, message string) Envelope {
	return Envelope{OK: false, Error: &Error{Code: code, Message: message}}
}

const (
	ErrInvalidRequest   = "invalid_request"
	ErrUnauthorized     = "unauthorized"
	ErrNotFound         = "not_found"
	ErrTopicRejected    = "topic_rejected"
	ErrGenerationFailed = "generation_failed"
	ErrInternal         = "internal_error"
)

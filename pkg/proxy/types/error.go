package types

// Caller-facing error messages.
const (
	MessageInvalidRequest   = "Invalid request"
	MessageInternalError    = "Internal server error"
	MessageNotFound         = "Not found"
	MessageForbidden        = "Insufficient clearance level to access this document"
	MessageMethodNotAllowed = "Method not allowed"
)

// ErrorResponse is the body of every error reply. Only the fields relevant
// to the failure are set: Details for malformed requests, Violations and
// RiskLevel for guardrail rejections.
type ErrorResponse struct {
	Error      string   `json:"error"`
	Details    []string `json:"details,omitempty"`
	Violations []string `json:"violations,omitempty"`
	RiskLevel  string   `json:"riskLevel,omitempty"`
}

// NewErrorResponse creates an error body carrying only a message.
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// NewValidationErrorResponse creates the body of a malformed-request reply.
func NewValidationErrorResponse(details []string) *ErrorResponse {
	return &ErrorResponse{
		Error:   MessageInvalidRequest,
		Details: details,
	}
}

// NewRejectionResponse creates the body of a guardrail rejection.
func NewRejectionResponse(message string, violations []string, riskLevel string) *ErrorResponse {
	if violations == nil {
		violations = []string{}
	}
	return &ErrorResponse{
		Error:      message,
		Violations: violations,
		RiskLevel:  riskLevel,
	}
}

// NewInternalErrorResponse creates the generic 500 body. Internal details
// are never included.
func NewInternalErrorResponse() *ErrorResponse {
	return &ErrorResponse{Error: MessageInternalError}
}

package handlers

// StatusResponse is returned when a message has been dispatched.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard format for API error responses. Detail is a
// string for most errors and a list of domain.FieldError for malformed requests.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// Detail messages returned to callers.
const (
	DetailUnauthorized     = "Unauthorised. Invalid CSRF Token."
	DetailNoDescription    = "Malformed. No description."
	detailInvalidTopicTmpl = `Malformed. Invalid topic "%s".`
)

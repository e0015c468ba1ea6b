package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nfrund/intake/internal/domain"
)

// StatusFor maps a domain error to its HTTP status code and response body.
// ok is false when err is not a domain error.
func StatusFor(err error) (status int, body ErrorResponse, ok bool) {
	var structural *domain.StructuralError
	var unknownTopic *domain.UnknownTopicError

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, ErrorResponse{Detail: DetailUnauthorized}, true
	case errors.As(err, &structural):
		return http.StatusUnprocessableEntity, ErrorResponse{Detail: structural.Fields}, true
	case errors.As(err, &unknownTopic):
		return http.StatusBadRequest, ErrorResponse{Detail: fmt.Sprintf(detailInvalidTopicTmpl, unknownTopic.Topic)}, true
	case errors.Is(err, domain.ErrEmptyDescription):
		return http.StatusBadRequest, ErrorResponse{Detail: DetailNoDescription}, true
	default:
		return 0, ErrorResponse{}, false
	}
}

package apperror

import (
	"errors"
	"net/http"
)

// StatusCode maps an error from the taxonomy to the HTTP status a handler should answer with.
func StatusCode(err error) int {
	var (
		validation *ValidationError
		authz      *AuthorizationError
		transition *InvalidTransitionError
		state      *InvalidStateError
		notFound   *NotFoundError
		conflict   *ConcurrentModificationError
		transient  *TransientError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &authz):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transition), errors.As(err, &state):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &transient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

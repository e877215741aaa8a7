package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/sc2k/pkg/sc2"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrCityNotFound   = errors.New("city not found")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to an HTTP status and an error type.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "upload_too_large_error"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, ErrCityNotFound):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, sc2.ErrTruncatedChunk),
		errors.Is(err, sc2.ErrTruncatedInput),
		errors.Is(err, sc2.ErrShortRecord):
		return http.StatusUnprocessableEntity, "invalid_save_error"
	case errors.Is(err, sc2.ErrUnsupported):
		return http.StatusNotImplemented, "unsupported_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

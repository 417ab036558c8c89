package api

import (
	"errors"
	"net/http"

	"github.com/snax-hw/goldengen/pkg/golden"
)

var ErrInvalidRequest = errors.New("invalid_request")

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

// errorStatus maps an error to its HTTP status and error type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, golden.ErrShapeMismatch):
		return http.StatusUnprocessableEntity, "shape_mismatch"
	case errors.Is(err, golden.ErrInvalidParameter):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

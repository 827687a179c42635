package httputils

import (
	"errors"
	"net/http"

	"github.com/wgomg/aura/internal/utils"
)

// InternalErrorMessage is the only text a client sees for a 500.
const InternalErrorMessage = "An internal error occurred"

type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// StatusCode maps err to the response status: an HTTPError carries its own,
// errors built with utils.WrapErrorf are mapped by their code.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	switch utils.ErrorCode(err) {
	case utils.ErrBadParamInput:
		return http.StatusBadRequest
	case utils.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func HandleError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		JSONError(w, status, InternalErrorMessage)
		return
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		JSONError(w, status, httpErr.Message)
		return
	}

	var appErr *utils.Error
	if errors.As(err, &appErr) {
		JSONError(w, status, appErr.Message())
		return
	}
	JSONError(w, status, http.StatusText(status))
}

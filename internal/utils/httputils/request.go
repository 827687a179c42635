package httputils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/wgomg/aura/internal/utils"
)

const maxBodyBytes = 1 << 20

func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return &HTTPError{
			Code:    http.StatusUnsupportedMediaType,
			Message: "Content-Type must be application/json",
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &HTTPError{
				Code:    http.StatusRequestEntityTooLarge,
				Message: "Request body too large",
			}
		}
		return &HTTPError{
			Code:    http.StatusBadRequest,
			Message: "Invalid JSON payload: " + err.Error(),
		}
	}
	return nil
}

// LogRequestBody logs the raw body at debug level when raw body logging is
// on, leaving r.Body readable again.
func LogRequestBody(r *http.Request, logger *utils.Logger, reqID *string) error {
	if !logger.RawBodyLog || r.Body == nil {
		return nil
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}

	r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	logger.Debug(reqID, "Raw request body: %s", utils.Truncate(string(bodyBytes), 2000))

	return nil
}

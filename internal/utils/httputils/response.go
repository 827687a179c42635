package httputils

import (
	"encoding/json"
	"net/http"
)

func JSONResponse(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func JSONError(w http.ResponseWriter, status int, message string) error {
	return JSONResponse(w, status, map[string]string{
		"error": message,
	})
}

// DataResponse wraps data, and meta when non-nil, in the versioned API
// envelope.
func DataResponse(w http.ResponseWriter, data any, meta any) error {
	response := map[string]any{"data": data}
	if meta != nil {
		response["meta"] = meta
	}
	return JSONResponse(w, http.StatusOK, response)
}

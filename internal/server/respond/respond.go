// Package respond writes JSON response bodies and the error envelope shared
// by every handler.
package respond

import (
	"encoding/json"
	"net/http"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope with the given status code and detail message.
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, errorBody{Detail: detail})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

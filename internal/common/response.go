package common

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the error payload every endpoint returns, nested under an
// "error" key so clients can distinguish it from a data envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v as a JSON response with the given status. Handlers wrap
// their payloads in a {"data": ...} envelope themselves.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError renders the canonical error shape. An empty code falls back to
// INTERNAL so clients always get something to branch on.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	if code == "" {
		code = "INTERNAL"
	}
	JSON(w, status, map[string]any{
		"error": ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Package web holds the JSON response helpers shared by the HTTP services.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse is the body shape for every rejection originating in the
// gateway or identity layer: {"error": "<statusCode>", "message": "<reason>"}.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{
		Error:   strconv.Itoa(status),
		Message: message,
	})
}

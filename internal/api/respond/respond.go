package respond

import (
	"encoding/json"
	"net/http"
)

type payload struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func write(w http.ResponseWriter, status int, body payload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK writes a 200 response with the data envelope.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, payload{Data: data})
}

// Fail writes an error response.
func Fail(w http.ResponseWriter, status int, err error) {
	write(w, status, payload{Error: err.Error()})
}

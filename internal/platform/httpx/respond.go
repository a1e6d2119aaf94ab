// Package httpx provides JSON and RFC7807 problem detail responses.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemContentType is the media type of problem responses.
const ProblemContentType = "application/problem+json"

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, "application/json", status, data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	write(w, ProblemContentType, status, ProblemDetail{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func write(w http.ResponseWriter, contentType string, status int, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

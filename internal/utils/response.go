package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"ms-engagement/internal/apperrors"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"msg"`
	Count     *int        `json:"count,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// ListResponse always carries a count, including zero.
func ListResponse(message string, data interface{}, count int) APIResponse {
	resp := SuccessResponse(message, data)
	resp.Count = &count
	return resp
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError answers with the status mapped from err. Server-side failures do not
// leak driver messages to the client.
func WriteError(w http.ResponseWriter, message string, err error) {
	status := apperrors.StatusCode(err)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	if status >= http.StatusInternalServerError {
		detail = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorResponse(message, detail))
}

package common

import "time"

// SuccessResponse is the envelope of every JSON success response
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every JSON error response
type ErrorResponse struct {
	Code    interface{}       `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthResponse reports service and dependency health
type HealthResponse struct {
	Status       string                 `json:"status"`
	Version      string                 `json:"version"`
	Environment  string                 `json:"environment"`
	Timestamp    time.Time              `json:"timestamp"`
	Dependencies map[string]interface{} `json:"dependencies,omitempty"`
}

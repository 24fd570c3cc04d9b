// Package handler holds the JSON envelope shared by every endpoint.
// Resource handlers live in subpackages and register their own routes.
package handler

// Response is the uniform envelope: status plus either a data payload
// or an error message.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: statusSuccess,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  statusError,
		Message: message,
	}
}

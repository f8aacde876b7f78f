package response

// Response represents the envelope used by the UI's JSON endpoints
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ErrorDetail is the error body of the invoice REST contract: {"detail": "..."}
type ErrorDetail struct {
	Detail string `json:"detail"`
}

// Detail wraps a message in the REST contract's error body
func Detail(msg string) ErrorDetail {
	return ErrorDetail{Detail: msg}
}

// Message is the body of acknowledgement-only responses such as deletes
type Message struct {
	Message string `json:"message"`
}

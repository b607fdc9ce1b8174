package auth

// Response is the envelope every endpoint answers with. Status mirrors
// the HTTP status code, Message carries a user facing description, Data
// carries the payload when there is one (e.g. the bearer token).
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OKResponse builds a bare success envelope
func OKResponse() Response {
	return Response{Status: 200}
}

// MessageResponse builds a success envelope carrying a message
func MessageResponse(message string) Response {
	return Response{Status: 200, Message: message}
}

// DataResponse builds a success envelope carrying a payload
func DataResponse(data any) Response {
	return Response{Status: 200, Data: data}
}

// ErrorResponse builds a failure envelope
func ErrorResponse(status int, message string) Response {
	return Response{Status: status, Message: message}
}

package apperror

import "net/http"

type (
	// An Error carries an HTTP status and a message that can be shown to the user.
	Error struct {
		HTTPCode int
		Message  string
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if aerr, ok := err.(*Error); ok && aerr.HTTPCode > 0 {
		return aerr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new Error with the given message.
func New(message string) *Error {
	return &Error{Message: message}
}

// NewWithCode returns a new Error with the given code and message.
func NewWithCode(code int, message string) *Error {
	return &Error{HTTPCode: code, Message: message}
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.Message
}

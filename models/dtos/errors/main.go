package errors

import (
	"proteinpaint/api/models/apperror"
)

/*
	Utility functions to facillitate returning error responses to HTTP clients.

	Application failures are always returned with HTTP 200 and an
	`error` field; the browser client displays the message verbatim.
	The `errorKind` field is additional and machine-readable.
*/

type ErrorResponseDto struct {
	Error     string `json:"error"`
	ErrorKind string `json:"errorKind,omitempty"`
}

func CreateErrorResponse(err error) ErrorResponseDto {
	return ErrorResponseDto{
		Error:     err.Error(),
		ErrorKind: string(apperror.KindOf(err)),
	}
}

func CreateSimpleErrorResponse(message string) ErrorResponseDto {
	return ErrorResponseDto{
		Error: message,
	}
}

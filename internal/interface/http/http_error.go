package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/kissan-dost/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the domain error for errors.Is/As.
func (e *HTTPError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// advisorError maps advisor failures onto the public error envelope. Input
// problems keep the transport code so clients see one code for bad requests.
func advisorError(err error) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeCompletionTimeout:
		return NewHTTPError(http.StatusGatewayTimeout, apperrors.CodeCompletionTimeout, errMessage(err), err)
	case apperrors.CodeCompletionFailed:
		return NewHTTPError(http.StatusBadGateway, apperrors.CodeCompletionFailed, errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, "advisory_failed", errMessage(err), err)
	}
}

func payloadTooLarge(limit int64, err error) *HTTPError {
	return NewHTTPError(http.StatusRequestEntityTooLarge, "payload_too_large",
		fmt.Sprintf("request body exceeds %d bytes", limit), err)
}

// formError reports a failed form read, separating oversized bodies from
// malformed ones.
func formError(err error, message string) *HTTPError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return payloadTooLarge(tooLarge.Limit, err)
	}
	return NewHTTPError(http.StatusBadRequest, "invalid_request", message, err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Kind int

const (
	InvalidRequest Kind = iota + 1
	NotFound
	UpstreamFailure
)

func (k Kind) Status() int {
	switch k {
	case InvalidRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case InvalidRequest:
		return "invalid_request"
	case NotFound:
		return "not_found"
	case UpstreamFailure:
		return "upstream_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is what every handler returns on failure. Message goes to the
// caller; Err is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(msg string, err error) *Error {
	return &Error{Kind: InvalidRequest, Message: msg, Err: err}
}

func notFound(msg string, err error) *Error {
	return &Error{Kind: NotFound, Message: msg, Err: err}
}

func upstreamFailure(msg string, err error) *Error {
	return &Error{Kind: UpstreamFailure, Message: msg, Err: err}
}

type errorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler writes {"error": message} with the status matching the error
// kind. Errors that are neither *Error nor *echo.HTTPError become a 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := http.StatusText(status)
		var he *Error
		var ee *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status, msg = he.Kind.Status(), he.Message
		case errors.As(err, &ee):
			status, msg = ee.Code, fmt.Sprint(ee.Message)
		default:
			logger.Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Error: msg})
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

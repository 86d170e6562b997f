package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	"github.com/crimestats/querygateway/internal/constants"
)

// Sentinel categories carried by AppError.Err.
var (
	ErrBadRequest     = errors.New(constants.ErrorBadRequest)
	ErrValidation     = errors.New(constants.ErrorValidation)
	ErrStorage        = errors.New(constants.ErrorStorage)
	ErrInternalServer = errors.New(constants.ErrorInternalServer)
)

// AppError is an error that knows how it should be answered over HTTP.
// Message is what the client receives; DevInfo only reaches the logs.
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	DevInfo    string
	Field      string // query parameter at fault, if any
}

func (e *AppError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports a query parameter that is present but invalid.
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewMissingParameterError reports an absent required query parameter as
// "<Param> query parameter is required", e.g. "Year query parameter is required".
func NewMissingParameterError(param string) *AppError {
	label := param
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf(constants.MsgParameterRequiredFormat, label),
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewStorageError wraps a failed query. Clients see the engine's own message
// (the innermost error of the chain) unless redact is set; DevInfo keeps the
// whole chain either way.
func NewStorageError(err error, redact bool) *AppError {
	appErr := &AppError{
		Err:        errors.Join(ErrStorage, err),
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgStorageFailure,
	}
	if err == nil {
		return appErr
	}

	appErr.DevInfo = err.Error()
	if cause := rootCause(err).Error(); !redact && cause != "" {
		appErr.Message = cause
	}
	return appErr
}

func rootCause(err error) error {
	for next := errors.Unwrap(err); next != nil; next = errors.Unwrap(err) {
		err = next
	}
	return err
}

// NewInternalServerError hides err behind the generic 500 message.
func NewInternalServerError(err error) *AppError {
	appErr := &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgInternalServerError,
	}
	if err != nil {
		appErr.DevInfo = err.Error()
	}
	return appErr
}

// ParseError maps whatever a service returned onto an AppError. Errors from
// the SQL drivers and query deadlines count as storage failures; anything
// unrecognised becomes a generic 500.
func ParseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var (
		pqErr *pq.Error
		myErr *mysql.MySQLError
	)
	switch {
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrStorage),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &pqErr),
		errors.As(err, &myErr):
		return NewStorageError(err, false)
	}

	return NewInternalServerError(err)
}

// Package platformerrors carries classified errors from the storage, repository and
// domain layers up to the HTTP handlers.
package platformerrors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// WithRequestID stores the request id so errors created further down carry it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// ErrorType classifies a failure independently of the layer that produced it.
type ErrorType string

const (
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeValidation     ErrorType = "VALIDATION"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeUnauthorized   ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden      ErrorType = "FORBIDDEN"
	ErrorTypeInternal       ErrorType = "INTERNAL"
	ErrorTypeExternal       ErrorType = "EXTERNAL"
	ErrorTypeDatabaseError  ErrorType = "DATABASE_ERROR"
	ErrorTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
	ErrorTypeTooLarge       ErrorType = "TOO_LARGE"
)

type typeInfo struct {
	status int
	label  string
	level  zerolog.Level
}

var errorTypes = map[ErrorType]typeInfo{
	ErrorTypeNotFound:       {http.StatusNotFound, "not_found_error", zerolog.WarnLevel},
	ErrorTypeValidation:     {http.StatusBadRequest, "validation_error", zerolog.WarnLevel},
	ErrorTypeConflict:       {http.StatusConflict, "conflict_error", zerolog.WarnLevel},
	ErrorTypeUnauthorized:   {http.StatusUnauthorized, "unauthorized_error", zerolog.WarnLevel},
	ErrorTypeForbidden:      {http.StatusForbidden, "forbidden_error", zerolog.WarnLevel},
	ErrorTypeTooLarge:       {http.StatusRequestEntityTooLarge, "too_large_error", zerolog.WarnLevel},
	ErrorTypeNotImplemented: {http.StatusNotImplemented, "not_implemented_error", zerolog.ErrorLevel},
	ErrorTypeExternal:       {http.StatusBadGateway, "external_error", zerolog.ErrorLevel},
	ErrorTypeDatabaseError:  {http.StatusInternalServerError, "database_error", zerolog.ErrorLevel},
	ErrorTypeInternal:       {http.StatusInternalServerError, "internal_error", zerolog.ErrorLevel},
}

func (t ErrorType) info() typeInfo {
	if info, ok := errorTypes[t]; ok {
		return info
	}
	return errorTypes[ErrorTypeInternal]
}

// HTTPStatus is the response status for t. Unknown types answer 500.
func (t ErrorType) HTTPStatus() int { return t.info().status }

// Label is the snake_case name exposed in error responses.
func (t ErrorType) Label() string { return t.info().label }

// Layer names the part of the service that classified the error.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerRoute          Layer = "route"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError is a classified error. Message is safe to show to API callers;
// Err keeps the underlying cause for logs only.
type PlatformError struct {
	UUID      string
	Type      ErrorType
	Message   string
	Err       error
	RequestID string
	Layer     Layer
}

func (e *PlatformError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Layer))
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString(" (")
	b.WriteString(string(e.Type))
	if e.UUID != "" {
		b.WriteString(" ")
		b.WriteString(e.UUID)
	}
	b.WriteString(")")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewError classifies err. code is a fixed uuid that identifies the call site in logs
// and responses.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error, code string) *PlatformError {
	return &PlatformError{
		UUID:      code,
		Type:      errorType,
		Message:   message,
		Err:       err,
		RequestID: RequestIDFromContext(ctx),
		Layer:     layer,
	}
}

// AsError re-wraps err at layer. A classified cause keeps its type and code and its
// message is appended; anything else becomes INTERNAL.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	if err == nil {
		return nil
	}
	cause, ok := As(err)
	if !ok {
		return NewError(ctx, layer, ErrorTypeInternal, message, err, "")
	}
	return NewError(ctx, layer, cause.Type, message+": "+cause.Message, cause, cause.UUID)
}

// As returns the outermost PlatformError in err's chain.
func As(err error) (*PlatformError, bool) {
	var platformErr *PlatformError
	if errors.As(err, &platformErr) {
		return platformErr, true
	}
	return nil, false
}

// IsErrorType reports whether err carries a PlatformError of errorType.
func IsErrorType(err error, errorType ErrorType) bool {
	platformErr, ok := As(err)
	return ok && platformErr.Type == errorType
}

// Log writes e at a level matching its type: client errors warn, the rest error.
func (e *PlatformError) Log(log zerolog.Logger) {
	if e == nil {
		return
	}
	event := log.WithLevel(e.Type.info().level).
		Str("error_code", e.UUID).
		Str("error_type", string(e.Type)).
		Str("layer", string(e.Layer))
	if e.RequestID != "" {
		event = event.Str("request_id", e.RequestID)
	}
	if e.Err != nil {
		event = event.Err(e.Err)
	}
	event.Msg(e.Message)
}

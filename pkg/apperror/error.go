package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error independently of its HTTP status code, so callers
// can branch on the failure class without string matching.
type Kind string

const (
	KindBadRequest           Kind = "bad_request"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation_error"
	KindInvalidTransition    Kind = "invalid_transition"
	KindDuplicateApplication Kind = "duplicate_application"
	KindDuplicateResponse    Kind = "duplicate_response"
	KindCaptureFailed        Kind = "capture_failed"
	KindServiceError         Kind = "service_error"
	KindInternal             Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(KindBadRequest, http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func Validation(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

// InvalidTransition reports a status change whose edge does not exist in the
// application lifecycle graph. Never retried automatically.
func InvalidTransition(message string) *AppError {
	return New(KindInvalidTransition, http.StatusConflict, message, nil)
}

func DuplicateApplication(message string) *AppError {
	return New(KindDuplicateApplication, http.StatusConflict, message, nil)
}

func DuplicateResponse(message string) *AppError {
	return New(KindDuplicateResponse, http.StatusConflict, message, nil)
}

// CaptureFailed reports a storage failure while persisting an interview
// response. The session state is unchanged; the caller should retry the
// capture for the same question.
func CaptureFailed(err error) *AppError {
	return New(KindCaptureFailed, http.StatusBadGateway, "Failed to store interview response", err)
}

// ServiceError reports a failure of an external collaborator (AI service,
// network). Transient; callers decide whether to retry or fall back.
func ServiceError(message string, err error) *AppError {
	return New(KindServiceError, http.StatusBadGateway, message, err)
}

func Internal(err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, "Internal Server Error", err)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

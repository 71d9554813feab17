package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType groups errors by the layer that produced them
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeRender     ErrorType = "render"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes
const (
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable   = "FILE_NOT_READABLE"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeInvalidFormat     = "INVALID_FORMAT"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeRoleNotFound      = "ROLE_NOT_FOUND"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeAINotConfigured   = "AI_NOT_CONFIGURED"
	ErrCodeAIServiceFailed   = "AI_SERVICE_FAILED"
	ErrCodeAITimeout         = "AI_TIMEOUT"
	ErrCodeAIRateLimited     = "AI_RATE_LIMITED"
	ErrCodeAIAuthFailed      = "AI_AUTH_FAILED"
	ErrCodeAIEmptyResponse   = "AI_EMPTY_RESPONSE"
	ErrCodeAICircuitOpen     = "AI_CIRCUIT_OPEN"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
	ErrCodeSecretLoadFailed  = "SECRET_LOAD_FAILED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrRoleNotFound is matched by every not-found error raised for an unknown job role.
var ErrRoleNotFound = stderrors.New("job role not found")

// AppError is the structured error carried across package boundaries
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair that LogError emits alongside the error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, Cause: cause}
}

func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewExtractionError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeExtraction, code, message, cause)
}

// NewRenderError wraps a failure of the page-drawing backend.
func NewRenderError(message string, cause error) *AppError {
	return newAppError(ErrorTypeRender, ErrCodeRenderFailed, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// NewRoleNotFoundError reports an unknown role; it unwraps to ErrRoleNotFound.
func NewRoleNotFoundError(role string) *AppError {
	return newAppError(ErrorTypeNotFound, ErrCodeRoleNotFound,
		fmt.Sprintf("unknown job role %q", role), ErrRoleNotFound).WithContext("role", role)
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

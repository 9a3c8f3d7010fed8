package apperrors

import "errors"

// Error classes. HTTP status mapping is keyed on these.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
)

// Domain errors. Each one unwraps to its class above.
var (
	ErrUserNotFound       error = NewCustomError(ErrResourceNotFound, "user not found").WithCode("USER_NOT_FOUND")
	ErrDuplicateUsername  error = NewCustomError(ErrConflict, "username already exists").WithCode("DUPLICATE_USERNAME")
	ErrInvalidRole        error = NewCustomError(ErrValidationFailed, "role must be Student or Instructor").WithCode("INVALID_ROLE")
	ErrCourseNotFound     error = NewCustomError(ErrResourceNotFound, "course not found").WithCode("COURSE_NOT_FOUND")
	ErrEnrollmentNotFound error = NewCustomError(ErrResourceNotFound, "enrollment not found").WithCode("ENROLLMENT_NOT_FOUND")
	ErrAlreadyEnrolled    error = NewCustomError(ErrConflict, "student is already enrolled in this course").WithCode("ALREADY_ENROLLED")
	ErrInvalidStatus      error = NewCustomError(ErrValidationFailed, "status must be Pending, Approved or Rejected").WithCode("INVALID_STATUS")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewValidationError creates a validation error carrying a user facing message
func NewValidationError(message string) error {
	return NewCustomError(ErrValidationFailed, message)
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// UserMessage returns the most specific message found on the error chain,
// falling back to the supplied default.
func UserMessage(err error, fallback string) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}

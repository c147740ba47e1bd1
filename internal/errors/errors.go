package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

var (
	ErrConfigNotFound = &AppError{Code: "CONFIG_001", Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: "CONFIG_002", Message: "invalid configuration"}

	ErrStorageRead      = &AppError{Code: "STORE_001", Message: "failed to read record namespace"}
	ErrStorageWrite     = &AppError{Code: "STORE_002", Message: "failed to write record namespace"}
	ErrStorageCorrupted = &AppError{Code: "STORE_003", Message: "record namespace corrupted"}

	ErrEndpointUnavailable = &AppError{Code: "PREDICT_001", Message: "prediction endpoint unavailable"}
	ErrEndpointStatus      = &AppError{Code: "PREDICT_002", Message: "prediction endpoint returned an error"}
	ErrResponseShape       = &AppError{Code: "PREDICT_003", Message: "unexpected prediction response format"}

	ErrValidation = &AppError{Code: "VALID_001", Message: "input validation failed"}

	ErrUnauthorized = &AppError{Code: "AUTH_001", Message: "unauthorized"}
	ErrSessionFetch = &AppError{Code: "AUTH_002", Message: "failed to fetch identity"}

	ErrNotFound   = &AppError{Code: "GEN_001", Message: "resource not found"}
	ErrBadRequest = &AppError{Code: "GEN_002", Message: "bad request"}
	ErrInternal   = &AppError{Code: "GEN_003", Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

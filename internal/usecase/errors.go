package usecase

import (
	"errors"
	"strings"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeUploadFailed  = "UPLOAD_FAILED"
	CodeUploadTimeout = "UPLOAD_TIMEOUT"
	CodeDatabase      = "DATABASE_ERROR"
)

// DomainError is a failure the caller can act on (bad input, rejected upload).
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// TechnicalError wraps infrastructure failures. Its message is never shown to clients.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// ValidationFailedError carries the complete field-keyed error set of a submission.
type ValidationFailedError struct {
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		parts = append(parts, ve.Error())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Fields maps each invalid field to its message.
func (e *ValidationFailedError) Fields() map[string]string {
	return ValidationErrorsToMap(e.Errors)
}

// MissingRequired reports whether at least one required field was absent.
func (e *ValidationFailedError) MissingRequired() bool {
	for _, ve := range e.Errors {
		if ve.Rule == RuleRequired {
			return true
		}
	}
	return false
}

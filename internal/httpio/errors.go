package httpio

import (
	"fmt"
	"net/http"

	"github.com/odpem/drims/pkg/unique"
)

// ValidationError is a client mistake the handler can describe.
type ValidationError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a 422 validation error.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// BadRequest returns a 400 for bodies or parameters that cannot be read.
func BadRequest(format string, args ...any) *ValidationError {
	return &ValidationError{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidPayload,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidState returns a 409 for actions the record's status does not allow.
func InvalidState(format string, args ...any) *ValidationError {
	return &ValidationError{
		Status:  http.StatusConflict,
		Code:    CodeInvalidState,
		Message: fmt.Sprintf(format, args...),
	}
}

// Duplicate turns a failed uniqueness check into a 422. It returns nil when
// res is valid.
func Duplicate(res unique.Result) error {
	if res.Valid {
		return nil
	}
	return &ValidationError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeDuplicateValue,
		Message: res.Message,
	}
}

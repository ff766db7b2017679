package errs

import (
	"net/http"
)

const (
	// ErrorKeyIDExists is the alert key for creating an entity that already has an id.
	ErrorKeyIDExists = "idexists"

	// ErrorKeyIDNull is the alert key for updating an entity without an id.
	ErrorKeyIDNull = "idnull"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code overrides the default "BAD_REQUEST" code when non-nil. errors is
// optional and serialized as-is.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewBadRequestAlertError creates a 400 that names the entity and the
// precondition that failed, e.g. ("formV1", "idexists").
//
// The code is "error.<key>", the translation key clients use to look up a
// localized message.
func NewBadRequestAlertError(message, entityName, errorKey string) *HTTPError {
	code := "error." + errorKey
	err := NewBadRequestError(message, true, &code, nil)
	err.EntityName = entityName
	err.ErrorKey = errorKey
	return err
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewTooManyRequestsError creates a 429 Too Many Requests HTTPError.
func NewTooManyRequestsError(message string) *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusTooManyRequests),
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// NewServiceUnavailableError creates a 503 for a backing store that cannot
// be reached. The message stays generic; the cause goes to the logs.
func NewServiceUnavailableError() *HTTPError {
	return &HTTPError{
		Code:    statusCode(http.StatusServiceUnavailable),
		Message: http.StatusText(http.StatusServiceUnavailable),
		Status:  http.StatusServiceUnavailable,
	}
}

// NewInternalServerError creates a 500 with the generic status text as its
// message. Clients never see the underlying error.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     statusCode(http.StatusInternalServerError),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

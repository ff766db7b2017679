package errs

import "strings"

// FieldError is a field-level validation error.
//
//	{ "field": "formtype", "error": "must be one of: SURVEY SIGNUP" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the error type every handler failure is converted into.
//
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message.
//   - Status: HTTP status code.
//   - Override: lets the client show Message verbatim.
//   - Errors: per-field validation errors.
//   - EntityName / ErrorKey: set for entity alerts such as "idexists";
//     the global error handler mirrors them into alert headers.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	Errors []FieldError `json:"errors"`

	EntityName string `json:"entityName,omitempty"`
	ErrorKey   string `json:"errorKey,omitempty"`
}

// Error returns the message so logging the error shows what the client saw.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is makes errors.Is match any *HTTPError regardless of its fields.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// IsAlert reports whether the error carries an entity alert key.
func (e *HTTPError) IsAlert() bool {
	return e.ErrorKey != ""
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}

package repository

import "fmt"

// Validation error types, in the vocabulary clients of the HTTP API expect.
const (
	ErrTypeMissing    = "value_error.missing"
	ErrTypeString     = "type_error.str"
	ErrTypeInteger    = "type_error.integer"
	ErrTypeJSONDecode = "value_error.jsondecode"
	ErrTypeDict       = "type_error.dict"
	ErrTypeNone       = "type_error.none.not_allowed"
)

// ValidationError reports a single invalid input field.
type ValidationError struct {
	// Loc is the path to the offending value, e.g. ["body", "content"].
	Loc  []string
	Msg  string
	Type string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %v: %s", e.Loc, e.Msg)
}

// NewValidationError builds a ValidationError for the given location.
func NewValidationError(msg, typ string, loc ...string) *ValidationError {
	return &ValidationError{Loc: loc, Msg: msg, Type: typ}
}

package handler

import "fmt"

// MissingFieldError reports a required form field that was not sent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing field " + e.Field
}

// InvalidQueryParamError reports a query parameter that could not be parsed.
// Its message echoes the field and raw value back to the client.
type InvalidQueryParamError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *InvalidQueryParamError) Error() string {
	return fmt.Sprintf("Error parsing '%s': %s %q", e.Field, e.Reason, e.Value)
}

func (e *InvalidQueryParamError) Unwrap() error {
	return e.Err
}

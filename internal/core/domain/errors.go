package domain

import (
	"errors"
	"strings"
)

var (
	// ErrTaskNotFound covers both a missing task and one owned by someone else.
	ErrTaskNotFound = errors.New("task not found")
	ErrInternal     = errors.New("internal error")
)

// Validation rules reported in FieldError.Rule.
const (
	RuleRequired  = "required"
	RuleMaxLength = "maxLength"
	RuleOneOf     = "oneOf"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleInteger   = "integer"
	RuleType      = "type"
	RuleDate      = "date"
)

type FieldError struct {
	Field string
	Rule  string
	// Param is the rule argument, e.g. the maximum length or the allowed values.
	Param string
}

func (e FieldError) Error() string {
	if e.Param == "" {
		return e.Field + ": " + e.Rule
	}
	return e.Field + ": " + e.Rule + "=" + e.Param
}

type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		parts = append(parts, fieldErr.Error())
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add records a failing rule and returns the receiver for chaining.
func (e *ValidationError) Add(field, rule, param string) *ValidationError {
	e.Errors = append(e.Errors, FieldError{Field: field, Rule: rule, Param: param})
	return e
}

// Merge appends the errors of other, which may be nil.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Errors = append(e.Errors, other.Errors...)
}

// Err returns nil when nothing was recorded so callers can return it directly.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// =============================================================================
// COVID Trends - Validation
// =============================================================================
//
// Two kinds of validation live here:
//
//   1. Field-level guards applied to every count column before a row is
//      accepted into a series (NormalizeCount, IsCount, Count).
//   2. Struct-level validation of configuration, driven by `validate` tags
//      (Struct).
//
// ERROR HANDLING:
//   - A count field that fails the guard rejects its row. Rejections are
//     counted by the caller, never logged one by one.
//   - Struct validation collects every failing field into a single
//     *ValidationError so the log shows all configuration problems at once.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// FieldError describes one field that failed validation.
type FieldError struct {
	// Field is the struct field (or column name) that failed.
	Field string

	// Value is the offending value, rendered as text.
	Value string

	// Message explains the rule that was broken.
	Message string
}

// ValidationError collects every FieldError found in one value.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Value != "" {
			parts = append(parts, fmt.Sprintf("%s=%q: %s", f.Field, f.Value, f.Message))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// =============================================================================
// NUMERIC GUARD
// =============================================================================

// NormalizeCount strips any fractional part and turns an empty field into
// "0". Surrounding whitespace is removed.
//
//	"12.0" -> "12"   "" -> "0"   " 7 " -> "7"
func NormalizeCount(value string) string {
	value = strings.TrimSpace(value)
	if dot := strings.IndexByte(value, '.'); dot >= 0 {
		value = value[:dot]
	}
	if value == "" {
		return "0"
	}
	return value
}

// IsCount reports whether value is a non-empty run of ASCII digits.
func IsCount(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

// Count normalizes value and parses it. ok is false when the normalized
// value is not a count, in which case the row carrying it should be
// skipped.
func Count(value string) (normalized string, n int64, ok bool) {
	normalized = NormalizeCount(value)
	if !IsCount(normalized) {
		return normalized, 0, false
	}
	n, err := strconv.ParseInt(normalized, 10, 64)
	if err != nil {
		return normalized, 0, false
	}
	return normalized, n, true
}

// =============================================================================
// STRUCT VALIDATION
// =============================================================================

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Struct validates s against its `validate` tags.
//
// RETURNS:
//   - nil when every rule holds
//   - *ValidationError listing each failing field
//   - any other error when s cannot be validated at all (e.g. not a struct)
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Namespace(),
			Value:   fmt.Sprint(fe.Value()),
			Message: describe(fe),
		})
	}
	return out
}

// describe turns a validator tag into a short human-readable rule.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "url":
		return "must be a URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "dive":
		return "has an invalid element"
	default:
		return "failed rule " + fe.Tag()
	}
}

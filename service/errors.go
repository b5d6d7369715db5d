package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/emzola/bookrating/data"
	"github.com/emzola/bookrating/internal/validator"
	"github.com/emzola/bookrating/repository"
)

var (
	ErrFailedValidation = errors.New("failed validation")
	ErrRecordNotFound   = errors.New("record not found")
)

// NonFieldErrors is the key used for validation errors that are not tied to
// a single input field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries field-level validation messages. It matches
// ErrFailedValidation with errors.Is.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q %s", k, e.Errors[k]))
	}
	return "failed validation: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrFailedValidation
}

// failedValidation wraps the errors collected by v.
func failedValidation(v *validator.Validator) error {
	return &ValidationError{Errors: v.Errors}
}

func fieldError(key, message string) error {
	return &ValidationError{Errors: map[string]string{key: message}}
}

// notFound maps the repository's not found error to the service one.
func notFound(err error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

// parseAvgRating reads an optional decimal average and rounds it to two
// places. Errors are recorded on v under key.
func parseAvgRating(v *validator.Validator, key string, n json.Number) float64 {
	if n == "" {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		v.AddError(key, "must be a decimal number")
		return 0
	}
	return data.RoundRating(f)
}

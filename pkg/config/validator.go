package config

import (
	"fmt"
	"time"
)

// Validator provides a fluent interface for validating configuration
// values. It collects all validation errors rather than failing on the
// first one.
type Validator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewValidator creates a validator for the named config section.
func NewValidator(configName string) *Validator {
	return &Validator{
		name:   configName,
		errors: make([]error, 0),
	}
}

// Required validates that a string field is not empty.
func (v *Validator) Required(field, value string) *Validator {
	if value == "" {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: required field is empty", v.name, field))
	}
	return v
}

// RequiredDuration validates that a duration field is not zero.
func (v *Validator) RequiredDuration(field string, value time.Duration) *Validator {
	if value == 0 {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: required duration is zero", v.name, field))
	}
	return v
}

// RangeInt validates that an int field is within the specified range.
func (v *Validator) RangeInt(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d is outside range [%d, %d]", v.name, field, value, min, max))
	}
	return v
}

// RangeFloat validates that a float field is within the specified range.
func (v *Validator) RangeFloat(field string, value, min, max float64) *Validator {
	if value < min || value > max {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %g is outside range [%g, %g]", v.name, field, value, min, max))
	}
	return v
}

// Positive validates that an int field is positive (> 0).
func (v *Validator) Positive(field string, value int) *Validator {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %d must be positive", v.name, field, value))
	}
	return v
}

// PositiveFloat validates that a float field is positive (> 0).
func (v *Validator) PositiveFloat(field string, value float64) *Validator {
	if value <= 0 {
		v.errors = append(v.errors, fmt.Errorf("%s.%s: value %g must be positive", v.name, field, value))
	}
	return v
}

// OneOf validates that a string field is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.errors = append(v.errors, fmt.Errorf("%s.%s: value %q must be one of %v", v.name, field, value, allowed))
	return v
}

// When conditionally applies validations if the condition is true.
func (v *Validator) When(condition bool, validations func(*Validator)) *Validator {
	if condition {
		validations(v)
	}
	return v
}

// Errors returns all validation errors.
func (v *Validator) Errors() []error {
	return v.errors
}

// Validate returns a combined error if any validations failed.
func (v *Validator) Validate() error {
	if len(v.errors) == 0 {
		return nil
	}
	if len(v.errors) == 1 {
		return v.errors[0]
	}
	return fmt.Errorf("%s validation failed with %d errors: %v", v.name, len(v.errors), v.errors[0])
}

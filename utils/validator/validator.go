package validator

import (
	"github.com/go-playground/validator/v10"
)

// EchoValidator adapts go-playground/validator to echo's Validator interface.
type EchoValidator struct {
	validate *validator.Validate
}

// New creates a request validator.
func New() *EchoValidator {
	return &EchoValidator{validate: validator.New()}
}

// Validate validates a bound request struct against its `validate` tags.
func (v *EchoValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

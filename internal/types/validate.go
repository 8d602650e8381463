package types

import "github.com/go-playground/validator/v10"

var structValidator = validator.New()

// Validate runs struct-tag validation on any data model value.
func Validate(v any) error {
	return structValidator.Struct(v)
}

package api

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate returns validator.ValidationErrors so response.Error can turn the
// first failure into a readable message.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

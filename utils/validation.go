package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IsValidEmail reports whether the address passes the validator email rule.
func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

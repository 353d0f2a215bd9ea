package auth

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SirPedr/homero/apperror"
)

// Validator checks and normalizes credential payloads. Failures come back
// as apperror.ValidationError values enumerating the offending fields.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator backed by go-playground/validator.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// ValidateRegister normalizes and validates a registration payload. The
// username is trimmed in place, so a whitespace-only username fails the
// required rule and downstream code only ever sees the trimmed value.
func (v *Validator) ValidateRegister(req *RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	return v.check(req)
}

// ValidateLogin validates a login payload. Both fields are required and
// otherwise unconstrained.
func (v *Validator) ValidateLogin(req *LoginRequest) error {
	return v.check(req)
}

func (v *Validator) check(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return apperror.NewValidationError("invalid fields: "+strings.Join(fields, ", "), err)
	}
	return apperror.NewValidationError("invalid request payload", err)
}

package http

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/buildhub-th/procure-backend/internal/users/domain"
)

// RegisterValidators adds the custom tags used by request structs to gin's
// validator engine. Safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		_, err := domain.NormalizePhone(fl.Field().String())
		return err == nil
	})
}

// BindingMessage turns a validator error into a short client message.
func BindingMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", lowerFirst(fe.Field()))
	case "email":
		return "invalid email address"
	case "phone":
		return domain.ErrInvalidPhone.Message
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", lowerFirst(fe.Field()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", lowerFirst(fe.Field()), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", lowerFirst(fe.Field()))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

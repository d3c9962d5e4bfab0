package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nextstep/gift/internal/domain/validation"
)

var validate = newValidator()

func newValidator() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return func(s any) error {
		err := v.Struct(s)
		if err == nil {
			return nil
		}

		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return validation.New(msgs...)
	}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s.", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s.", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

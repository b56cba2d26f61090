// Package forms validates admin form input before anything is sent upstream. Validation is
// pure: the same form always yields the same Errors, and nothing is mutated.
package forms

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a form field name to the message shown under it.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// Set records msg for field unless the field already has an error.
func (e Errors) Set(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(sf.Name)
		}
		return name
	})
	return v
}

// check runs the struct rules of v and adds one message per failing field. messages maps
// "field" or "field.tag" to the text to show; the more specific key wins.
func check(v any, errs Errors, messages map[string]string) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs.Set("_", "Form data is invalid.")
		return
	}
	for _, fe := range ve {
		field := fe.Field()
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[field]
		}
		if !ok {
			msg = defaultMessage(fe)
		}
		errs.Set(field, msg)
	}
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "Values do not match"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Cannot be less than " + fe.Param()
	default:
		return "Invalid value"
	}
}

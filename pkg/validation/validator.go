package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a field name to the list of human-readable problems with
// it. It is used both for binding failures and for checks that need the
// store, like username uniqueness.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msgs := range fe {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return "invalid data: " + strings.Join(parts, ", ")
}

// Add appends a message for the given field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=8")      // password minimum length
		v.RegisterAlias("username", "min=5,max=150") // account name bounds
	}
}

// ToDetails converts binding errors into FieldErrors suitable for the API
// error envelope.
func ToDetails(err error) FieldErrors {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return FieldErrors{"payload": {"invalid json"}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(FieldErrors, len(verrs))
		for _, fe := range verrs {
			out.Add(fe.Field(), formatFieldError(fe))
		}
		return out
	}

	return FieldErrors{"payload": {"invalid payload"}}
}

func formatFieldError(fe validator.FieldError) string {
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		if isNumberKind(fe.Kind()) {
			return "Must be at least " + param
		}
		return fmt.Sprintf("Ensure this field has at least %s characters", param)
	case "max":
		if isNumberKind(fe.Kind()) {
			return "Must be at most " + param
		}
		return fmt.Sprintf("Ensure this field has no more than %s characters", param)
	case "eqfield":
		return "Must match the " + param + " field"
	case "gt":
		return "Must be greater than " + param
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "pwd":
		return "Ensure this field has at least 8 characters"
	case "username":
		return "Ensure this field has between 5 and 150 characters"
	default:
		if param != "" {
			return fmt.Sprintf("Failed %q validation with parameter %q", tag, param)
		}
		return fmt.Sprintf("Failed %q validation", tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

package http

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Kind    string       `json:"kind,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reHex32    = regexp.MustCompile(`^[a-f0-9]{32}$`)
	reDigits9  = regexp.MustCompile(`^[0-9]{9}$`)
	reDigits16 = regexp.MustCompile(`^[0-9]{16}$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name, or the path param they bind from
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
		if p := f.Tag.Get("param"); p != "" {
			return p
		}
		return f.Name
	})
	// money is validated as a number: required, gt, lte and dec2 all apply
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// owner and operator ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return reHex32.MatchString(fl.Field().String())
	})
	// account and loan numbers
	_ = v.RegisterValidation("digits9", func(fl validator.FieldLevel) bool {
		return reDigits9.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("digits16", func(fl validator.FieldLevel) bool {
		return reDigits16.MatchString(fl.Field().String())
	})
	// max 2 decimal places
	_ = v.RegisterValidation("dec2", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Abs(f-(math.Round(f*100)/100)) < 1e-9
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "digits9":
			out = append(out, FieldError{Field: field, Message: "must be exactly 9 digits"})
		case "digits16":
			out = append(out, FieldError{Field: field, Message: "must be exactly 16 digits"})
		case "dec2":
			out = append(out, FieldError{Field: field, Message: "must have at most 2 decimal places"})
		case "gt":
			out = append(out, FieldError{Field: field, Message: "must be greater than " + e.Param()})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

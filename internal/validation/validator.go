package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"laura-backend/internal/pricing"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

var contactPhoneRegex = regexp.MustCompile(`^[0-9\s\-\+\(\)]{10,}$`)

// IsPlausiblePhone reports whether value holds at least 10 digits once
// whitespace is removed. The wizard checks it at submit time rather than on
// every edit, so a half-typed number is still accepted by PATCH.
func IsPlausiblePhone(value string) bool {
	digits := 0
	for _, r := range value {
		if unicode.IsSpace(r) {
			continue
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 10
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("15:04", value)
		return err == nil
	})

	// Contact form numbers may carry separators but nothing else.
	v.RegisterValidation("contactphone", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return contactPhoneRegex.MatchString(strings.TrimSpace(value))
	})

	v.RegisterValidation("service", func(fl validator.FieldLevel) bool {
		return pricing.IsValidService(fl.Field().String())
	})

	v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		return pricing.IsValidFrequency(fl.Field().String())
	})

	v.RegisterValidation("hours", func(fl validator.FieldLevel) bool {
		return pricing.IsValidHours(fl.Field().Float())
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve
	}
	return nil
}

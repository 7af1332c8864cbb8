package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance. Handlers rely on gin's binding
// validator for request payloads; this instance covers everything bound
// outside HTTP, such as rate configs loaded from the database.
var Validate *validator.Validate

var countryCodeRegex = regexp.MustCompile(`^[A-Z]{2}$`)

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("ride_status", validateRideStatus)
	_ = Validate.RegisterValidation("peak_window", validatePeakWindow)
	_ = Validate.RegisterValidation("country_code", validateCountryCode)
}

// ValidateStruct validates a struct and returns a FieldErrors value listing
// every failing field.
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fieldErrors := make(FieldErrors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Value: fmt.Sprintf("%v", fe.Value()),
		})
	}
	return fieldErrors
}

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// FieldErrors aggregates validation failures for one struct.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fmt.Sprintf("%s failed on %q", fe.Field, fe.Tag)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func validateRideStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "PENDING", "ACCEPTED", "WAITING", "RIDE_START", "RIDE_END", "PAID", "COMPLETED", "CANCELLED":
		return true
	}
	return false
}

// validatePeakWindow accepts wall clock values in 24h HH:MM form.
func validatePeakWindow(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func validateCountryCode(fl validator.FieldLevel) bool {
	return countryCodeRegex.MatchString(fl.Field().String())
}

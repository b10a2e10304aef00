package validation

import (
	"reflect"
	"strings"
	"sync"

	"finance-tracker/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

var (
	instance *Validator
	once     sync.Once
)

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	once.Do(func() {
		instance = NewValidator()
	})
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("transaction_category", validateTransactionCategory)
	_ = v.RegisterValidation("payment_type", validatePaymentType)
	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("gender", validateGender)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates a struct using the registered rules
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

// validateTransactionCategory accepts expense, saving or investment
func validateTransactionCategory(fl validator.FieldLevel) bool {
	return models.IsValidCategory(fl.Field().String())
}

func validatePaymentType(fl validator.FieldLevel) bool {
	return models.IsValidPaymentType(fl.Field().String())
}

// validateCalendarDate accepts YYYY-MM-DD or an RFC 3339 timestamp
func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

func validateGender(fl validator.FieldLevel) bool {
	return models.IsValidGender(fl.Field().String())
}

// FormatErrors turns validator errors into a field -> message map
func FormatErrors(err error) map[string]string {
	out := map[string]string{}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}

	for _, fe := range validationErrors {
		out[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "transaction_category":
		return "must be one of " + strings.Join(models.Categories, ", ")
	case "payment_type":
		return "must be one of " + strings.Join(models.PaymentTypes, ", ")
	case "calendar_date":
		return "must be a date in YYYY-MM-DD format"
	case "gender":
		return "must be one of male, female"
	default:
		return "is invalid"
	}
}

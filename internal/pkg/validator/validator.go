package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Search tier validation
	validate.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		tier := fl.Field().String()
		return tier == "basic" || tier == "smart"
	})

	// Account role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		for _, r := range []string{"user", "agent", "admin"} {
			if role == r {
				return true
			}
		}
		return false
	})

	// Listing status validation
	validate.RegisterValidation("listing_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		for _, s := range []string{"draft", "active", "sold", ""} {
			if status == s {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "latitude":
			errors[field] = "Invalid latitude"
		case "longitude":
			errors[field] = "Invalid longitude"
		case "tier":
			errors[field] = "Invalid tier. Must be: basic or smart"
		case "role":
			errors[field] = "Invalid role. Must be: user, agent, or admin"
		case "listing_status":
			errors[field] = "Invalid status. Must be: draft, active, or sold"
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

package config

import (
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// validateStruct runs tag-based validation with the custom rules registered.
func validateStruct(cfg *Config) error {
	validate := validator.New()

	if err := validate.RegisterValidation("exclusive", validateExclusive); err != nil {
		return fmt.Errorf("registering exclusive validation: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

// validateExclusive checks that the tagged field and the named sibling field
// are not both set.
func validateExclusive(fl validator.FieldLevel) bool {
	otherFieldName := fl.Param()
	field := fl.Field()
	otherField := fl.Parent().FieldByName(otherFieldName)

	if !field.IsValid() || !otherField.IsValid() {
		return true
	}

	if field.Kind() == reflect.String && otherField.Kind() == reflect.String {
		return !(field.String() != "" && otherField.String() != "")
	}

	return true
}

package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names (json for messages, yaml for config).
	validate.RegisterTagNameFunc(fieldName)
}

func GetValidator() *validator.Validate {
	return validate
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "yaml"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

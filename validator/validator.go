package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/NethermindEth/rangekv/utils"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// Custom validation function for store paths: no NUL bytes, which the filesystem would reject later anyway
func validatePath(fl validator.FieldLevel) bool {
	path, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return strings.IndexByte(path, 0) < 0
}

// Validator returns a singleton that can be used to validate various objects
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())

		if err := v.RegisterValidation("path", validatePath); err != nil {
			panic("failed to register validation: " + err.Error())
		}

		// Register these types to use their string representation for validation
		// purposes
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			switch f := field.Interface().(type) {
			case utils.LogLevel:
				return f.String()
			}
			panic("not a log level")
		}, utils.LogLevel(0))
	})
	return v
}

package validation

import (
	"reflect"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"invoice-system/pkg/constants"
)

// registerNullTypes lets the validator see through null.String and null.Time.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok {
			if val.Valid {
				return val.String
			}
		}
		return nil // lets omitempty skip it
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Time); ok {
			if val.Valid {
				return val.Time
			}
		}
		return nil
	}, null.Time{})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

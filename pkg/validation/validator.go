package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "invoice-system/pkg/errors"
)

const defaultMessage = "Missing Fields."

// CustomValidator wraps validator.Validate for echo and the services.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator. Field failures come back as *apperrors.ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.ValidateWithMessage(i, defaultMessage)
}

// ValidateWithMessage is Validate with an operation-specific summary message.
func (cv *CustomValidator) ValidateWithMessage(i interface{}, message string) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := apperrors.NewValidationError(message, nil)
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func New() *CustomValidator {
	v := validator.New()

	// Report JSON names so field errors line up with the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerNullTypes(v)

	if err := registerRules(v); err != nil {
		panic("failed to register validation rules: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"invoice-system/pkg/constants"
)

func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("invoice_status", isInvoiceStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("status_action", isStatusAction); err != nil {
		return err
	}
	if err := v.RegisterValidation("iso_date", isISODate); err != nil {
		return err
	}
	return nil
}

// isInvoiceStatus accepts persisted statuses only; "overdue" is rejected.
func isInvoiceStatus(fl validator.FieldLevel) bool {
	return constants.IsInvoiceStatus(fl.Field().String())
}

func isStatusAction(fl validator.FieldLevel) bool {
	return constants.IsStatusAction(fl.Field().String())
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := parseDate(fl.Field().String())
	return err == nil
}

// Messages shown next to the form inputs.
var fieldMessages = map[string]string{
	"customer_id":     "Please select a customer.",
	"amount":          "Please enter an amount greater than $0.",
	"status":          "Please select an invoice status.",
	"previous_status": "Please select an invoice status.",
	"action":          "Please select a status action.",
	"due_date":        "Please enter a date in YYYY-MM-DD format.",
	"email":           "Please enter a valid email address.",
	"password":        "Please enter your password.",
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("Field %s failed on the '%s' rule.", fe.Field(), fe.Tag())
}

package routes

import (
	"github.com/labstack/echo/v4"

	"invoice-system/internal/controllers"
)

func runInvoiceRouter(secureGroup *echo.Group, ctrl *controllers.InvoiceController) {
	invoices := secureGroup.Group("/invoices")
	{
		invoices.POST("", ctrl.CreateInvoice)
		invoices.GET("/:id", ctrl.FindInvoice)
		invoices.PUT("/:id", ctrl.EditInvoice)
		invoices.DELETE("/:id", ctrl.CancelInvoice)
		invoices.PUT("/:id/status", ctrl.ChangeStatus)
		invoices.POST("/:id/status/restore", ctrl.RestoreStatus)
		invoices.GET("/:id/status-log", ctrl.GetStatusLog)
	}
}

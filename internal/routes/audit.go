package routes

import (
	"github.com/labstack/echo/v4"

	"invoice-system/internal/controllers"
)

func runAuditRouter(secureGroup *echo.Group, ctrl *controllers.AuditController) {
	secureGroup.GET("/audit/mismatches", ctrl.FindMismatches)
}

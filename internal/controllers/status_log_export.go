package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"invoice-system/internal/dto"
	"invoice-system/pkg/constants"
	"invoice-system/pkg/utils"
)

var statusLogHeaders = []string{"#", "Date", "Status", "Action", "User", "Recorded at"}

func statusLogRow(n int, e dto.StatusLogEntryDTO) []interface{} {
	user := "system"
	if e.UserName.Valid {
		user = e.UserName.String
	} else if e.UserID.Valid {
		user = e.UserID.String
	}
	return []interface{}{n, e.Date, e.Status, e.Action, user, e.CreatedAt}
}

// buildStatusLogWorkbook lays the entries out one per row, oldest first.
func buildStatusLogWorkbook(entries []dto.StatusLogEntryDTO) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := constants.StatusLogSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &statusLogHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", style); err != nil {
		return nil, err
	}

	for i, entry := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := statusLogRow(i+1, entry)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheet, "B", "D", 14)
	_ = f.SetColWidth(sheet, "E", "F", 28)

	return f, nil
}

func (c *InvoiceController) respondWithXLSX(ctx echo.Context, invoiceID uuid.UUID, entries []dto.StatusLogEntryDTO) error {
	f, err := buildStatusLogWorkbook(entries)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("invoice_%s_status_log.xlsx", invoiceID)
	ctx.Response().Header().Set(echo.HeaderContentType, constants.XLSXContentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	if err := f.Write(ctx.Response().Writer); err != nil {
		c.logger.Error("status log export failed", zap.String("invoiceID", invoiceID.String()), zap.Error(err))
		return err
	}
	return nil
}

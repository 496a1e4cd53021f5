package service

import (
	"context"

	"github.com/xuri/excelize/v2"

	"pos-backend/internal/domains/report/model"
)

type Service interface {
	GetSalesReport(ctx context.Context, r model.DateRange) (*model.SalesReport, error)
	// ExportSalesReport renders the report as a workbook with one sheet
	// per breakdown. The caller closes the file.
	ExportSalesReport(ctx context.Context, r model.DateRange) (*excelize.File, error)
}

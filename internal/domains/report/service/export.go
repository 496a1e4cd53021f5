package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"pos-backend/internal/domains/report/model"
)

// Sheet names of the exported workbook, in order.
const (
	SheetSummary        = "Summary"
	SheetPaymentMethods = "Payment methods"
	SheetDaily          = "Daily"
	SheetHourly         = "Hourly"
	SheetProducts       = "Top products"
	SheetCashiers       = "Cashiers"
)

func (s *reportService) ExportSalesReport(ctx context.Context, r model.DateRange) (*excelize.File, error) {
	report, err := s.GetSalesReport(ctx, r)
	if err != nil {
		return nil, err
	}

	f, err := buildReportWorkbook(report)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildReportWorkbook(report *model.SalesReport) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	from, to := "", ""
	if report.From != nil {
		from = report.From.Format(model.DateLayout)
		to = report.To.AddDate(0, 0, -1).Format(model.DateLayout)
	}
	summary := report.Summary
	sheets := []struct {
		name    string
		headers []string
		rows    [][]interface{}
	}{
		{
			name:    SheetSummary,
			headers: []string{"Metric", "Value"},
			rows: [][]interface{}{
				{"From", from},
				{"To", to},
				{"Sales", summary.TotalSales},
				{"Revenue", summary.TotalRevenue.InexactFloat64()},
				{"Average ticket", summary.AvgTicket.InexactFloat64()},
				{"Units sold", summary.TotalProducts},
				{"Generated at", report.GeneratedAt.Format("2006-01-02 15:04:05")},
			},
		},
		{name: SheetPaymentMethods, headers: []string{"Payment method", "Sales", "Total"}},
		{name: SheetDaily, headers: []string{"Date", "Sales", "Total"}},
		{name: SheetHourly, headers: []string{"Hour", "Sales", "Total"}},
		{name: SheetProducts, headers: []string{"Product ID", "Product", "Units", "Revenue"}},
		{name: SheetCashiers, headers: []string{"User ID", "Cashier", "Sales", "Total"}},
	}

	for _, p := range report.ByPaymentMethod {
		sheets[1].rows = append(sheets[1].rows, []interface{}{p.PaymentMethod, p.Count, p.Total.InexactFloat64()})
	}
	for _, d := range report.Daily {
		sheets[2].rows = append(sheets[2].rows, []interface{}{d.Date, d.Count, d.Total.InexactFloat64()})
	}
	for _, h := range report.Hourly {
		sheets[3].rows = append(sheets[3].rows, []interface{}{h.Hour, h.Count, h.Total.InexactFloat64()})
	}
	for _, p := range report.TopProducts {
		sheets[4].rows = append(sheets[4].rows, []interface{}{p.ProductID, p.ProductName, p.QuantitySold, p.TotalRevenue.InexactFloat64()})
	}
	for _, c := range report.ByCashier {
		sheets[5].rows = append(sheets[5].rows, []interface{}{c.UserID, c.UserName, c.SaleCount, c.TotalSales.InexactFloat64()})
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			f.Close()
			return nil, err
		}

		if err := writeSheet(f, sh.name, sh.headers, sh.rows, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", sh.name, err)
		}
	}

	return f, nil
}

// writeSheet puts headers on row 1 in bold and rows from row 2.
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}, headerStyle int) error {
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

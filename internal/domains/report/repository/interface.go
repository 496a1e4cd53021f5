package repository

import (
	"context"

	"pos-backend/internal/domains/report/model"
)

// Repository runs the aggregate queries behind the sales report. Every
// query is read-only and honors the open bounds of the range.
type Repository interface {
	Summary(ctx context.Context, r model.DateRange) (*model.SalesSummary, error)
	ByPaymentMethod(ctx context.Context, r model.DateRange) ([]model.PaymentMethodTotal, error)
	// Daily returns the newest days first. limit <= 0 means no limit.
	Daily(ctx context.Context, r model.DateRange, limit int) ([]model.DailySales, error)
	Hourly(ctx context.Context, r model.DateRange) ([]model.HourlySales, error)
	TopProducts(ctx context.Context, r model.DateRange, limit int) ([]model.ProductSales, error)
	ByCashier(ctx context.Context, r model.DateRange) ([]model.CashierSales, error)
}

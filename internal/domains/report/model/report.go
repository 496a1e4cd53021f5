package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange bounds a report on sales.created_at. A nil bound is open.
// To is exclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsOpen reports whether the range covers every sale.
func (r DateRange) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Key identifies the range in cache keys and file names.
func (r DateRange) Key() string {
	if r.IsOpen() {
		return "all"
	}
	return r.From.Format(DateLayout) + "_" + r.To.AddDate(0, 0, -1).Format(DateLayout)
}

// ParseDateRange accepts two calendar days, both inclusive, or neither.
func ParseDateRange(from, to string) (DateRange, error) {
	if from == "" && to == "" {
		return DateRange{}, nil
	}
	if from == "" || to == "" {
		return DateRange{}, fmt.Errorf("%w: from and to must be given together", ErrInvalidDateRange)
	}

	start, err := time.ParseInLocation(DateLayout, from, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidDateRange)
	}
	end, err := time.ParseInLocation(DateLayout, to, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("%w: to is before from", ErrInvalidDateRange)
	}

	end = end.AddDate(0, 0, 1)
	return DateRange{From: &start, To: &end}, nil
}

type SalesSummary struct {
	TotalSales    int             `json:"total_sales"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgTicket     decimal.Decimal `json:"avg_ticket"`
	TotalProducts int             `json:"total_products"`
}

type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Count         int             `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

type DailySales struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type HourlySales struct {
	Hour  int             `json:"hour"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type ProductSales struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int             `json:"quantity_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type CashierSales struct {
	UserID     int64           `json:"user_id"`
	UserName   string          `json:"user_name"`
	SaleCount  int             `json:"sale_count"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// SalesReport is the admin dashboard payload.
type SalesReport struct {
	From            *time.Time           `json:"from,omitempty"`
	To              *time.Time           `json:"to,omitempty"`
	Summary         SalesSummary         `json:"summary"`
	ByPaymentMethod []PaymentMethodTotal `json:"by_payment_method"`
	Daily           []DailySales         `json:"daily"`
	Hourly          []HourlySales        `json:"hourly"`
	TopProducts     []ProductSales       `json:"top_products"`
	ByCashier       []CashierSales       `json:"by_cashier"`
	GeneratedAt     time.Time            `json:"generated_at"`
}

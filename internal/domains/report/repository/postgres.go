package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/report/model"
)

// rangeFilter expects the bounds as $1 and $2, NULL meaning open.
const rangeFilter = `($1::timestamptz IS NULL OR s.created_at >= $1)
		  AND ($2::timestamptz IS NULL OR s.created_at < $2)`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Summary(ctx context.Context, dr model.DateRange) (*model.SalesSummary, error) {
	query := `
		SELECT
			COUNT(*)::int,
			COALESCE(SUM(s.total), 0),
			COALESCE(ROUND(AVG(s.total), 2), 0),
			COALESCE((
				SELECT SUM(si.quantity)
				FROM sale_items si
				JOIN sales s ON s.id = si.sale_id
				WHERE ` + rangeFilter + `
			), 0)::int
		FROM sales s
		WHERE ` + rangeFilter

	var out model.SalesSummary
	err := r.pool.QueryRow(ctx, query, dr.From, dr.To).Scan(
		&out.TotalSales,
		&out.TotalRevenue,
		&out.AvgTicket,
		&out.TotalProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("query sales summary: %w", err)
	}
	return &out, nil
}

func (r *postgresRepository) ByPaymentMethod(ctx context.Context, dr model.DateRange) ([]model.PaymentMethodTotal, error) {
	query := `
		SELECT s.payment_method, COUNT(*)::int, COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE ` + rangeFilter + `
		GROUP BY s.payment_method
		ORDER BY 3 DESC, s.payment_method
	`

	rows, err := r.pool.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("query sales by payment method: %w", err)
	}
	defer rows.Close()

	out := []model.PaymentMethodTotal{}
	for rows.Next() {
		var p model.PaymentMethodTotal
		if err := rows.Scan(&p.PaymentMethod, &p.Count, &p.Total); err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Daily(ctx context.Context, dr model.DateRange, limit int) ([]model.DailySales, error) {
	query := `
		SELECT DATE(s.created_at)::text, COUNT(*)::int, COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE ` + rangeFilter + `
		GROUP BY DATE(s.created_at)
		ORDER BY 1 DESC
		LIMIT NULLIF($3::int, 0)
	`

	rows, err := r.pool.Query(ctx, query, dr.From, dr.To, limit)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	out := []model.DailySales{}
	for rows.Next() {
		var d model.DailySales
		if err := rows.Scan(&d.Date, &d.Count, &d.Total); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Hourly(ctx context.Context, dr model.DateRange) ([]model.HourlySales, error) {
	query := `
		SELECT EXTRACT(HOUR FROM s.created_at)::int, COUNT(*)::int, COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE ` + rangeFilter + `
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := r.pool.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("query hourly sales: %w", err)
	}
	defer rows.Close()

	out := []model.HourlySales{}
	for rows.Next() {
		var h model.HourlySales
		if err := rows.Scan(&h.Hour, &h.Count, &h.Total); err != nil {
			return nil, fmt.Errorf("scan hourly row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *postgresRepository) TopProducts(ctx context.Context, dr model.DateRange, limit int) ([]model.ProductSales, error) {
	query := `
		SELECT si.product_id, si.product_name, SUM(si.quantity)::int, COALESCE(SUM(si.subtotal), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE ` + rangeFilter + `
		GROUP BY si.product_id, si.product_name
		ORDER BY 4 DESC, si.product_id
		LIMIT NULLIF($3::int, 0)
	`

	rows, err := r.pool.Query(ctx, query, dr.From, dr.To, limit)
	if err != nil {
		return nil, fmt.Errorf("query product sales: %w", err)
	}
	defer rows.Close()

	out := []model.ProductSales{}
	for rows.Next() {
		var p model.ProductSales
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.QuantitySold, &p.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ByCashier keeps sales whose operator no longer exists so the totals
// match the summary.
func (r *postgresRepository) ByCashier(ctx context.Context, dr model.DateRange) ([]model.CashierSales, error) {
	query := `
		SELECT s.user_id, COALESCE(u.name, ''), COUNT(*)::int, COALESCE(SUM(s.total), 0)
		FROM sales s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE ` + rangeFilter + `
		GROUP BY s.user_id, u.name
		ORDER BY 4 DESC, s.user_id
	`

	rows, err := r.pool.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, fmt.Errorf("query sales by cashier: %w", err)
	}
	defer rows.Close()

	out := []model.CashierSales{}
	for rows.Next() {
		var c model.CashierSales
		if err := rows.Scan(&c.UserID, &c.UserName, &c.SaleCount, &c.TotalSales); err != nil {
			return nil, fmt.Errorf("scan cashier row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

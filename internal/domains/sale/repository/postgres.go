package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/sale/model"
	"pos-backend/pkg/database"
)

const uniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// =====================================================
// TRANSACTION
// =====================================================

func (r *postgresRepository) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return database.WithTransaction(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// =====================================================
// WRITE OPERATIONS
// =====================================================

func (r *postgresRepository) InsertSaleWithTx(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	query := `
		INSERT INTO sales (
			user_id, customer_name, subtotal, tax,
			promotion_discount, custom_discount, custom_discount_percent, discount,
			total, active_promotion, payment_method,
			cash_received, change_amount, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		sale.UserID,
		sale.CustomerName,
		sale.Subtotal,
		sale.Tax,
		sale.PromotionDiscount,
		sale.CustomDiscount,
		sale.CustomDiscountPercent,
		sale.Discount,
		sale.Total,
		string(sale.ActivePromotion),
		string(sale.PaymentMethod),
		sale.CashReceived,
		sale.ChangeAmount,
		sale.IdempotencyKey,
	).Scan(&sale.ID, &sale.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

func (r *postgresRepository) InsertSaleLinesWithTx(ctx context.Context, tx pgx.Tx, lines []model.SaleLine) error {
	query := `
		INSERT INTO sale_items (
			sale_id, product_id, product_name, quantity,
			unit_price, subtotal, discount, promotion_applied
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query,
			l.SaleID,
			l.ProductID,
			l.ProductName,
			l.Quantity,
			l.UnitPrice,
			l.Subtotal,
			l.Discount,
			l.PromotionApplied,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range lines {
		if err := results.QueryRow().Scan(&lines[i].ID); err != nil {
			_ = results.Close()
			return fmt.Errorf("insert sale line %d: %w", i, err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("close sale line batch: %w", err)
	}
	return nil
}

// =====================================================
// READ OPERATIONS
// =====================================================

const saleColumns = `
	id, user_id, customer_name, subtotal, tax,
	promotion_discount, custom_discount, custom_discount_percent, discount,
	total, active_promotion, payment_method,
	cash_received, change_amount, idempotency_key, created_at
`

func scanSale(row pgx.Row) (*model.Sale, error) {
	var (
		s               model.Sale
		activePromotion string
		paymentMethod   string
	)
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CustomerName,
		&s.Subtotal,
		&s.Tax,
		&s.PromotionDiscount,
		&s.CustomDiscount,
		&s.CustomDiscountPercent,
		&s.Discount,
		&s.Total,
		&activePromotion,
		&paymentMethod,
		&s.CashReceived,
		&s.ChangeAmount,
		&s.IdempotencyKey,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ActivePromotion = promoType(activePromotion)
	s.PaymentMethod = model.PaymentMethod(paymentMethod)
	return &s, nil
}

func (r *postgresRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE idempotency_key = $1`

	sale, err := scanSale(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSaleNotFound
		}
		return nil, fmt.Errorf("find sale by idempotency key: %w", err)
	}
	return sale, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`

	sale, err := scanSale(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}

	linesQuery := `
		SELECT id, sale_id, product_id, product_name, quantity,
		       unit_price, subtotal, discount, promotion_applied
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, linesQuery, id)
	if err != nil {
		return nil, fmt.Errorf("query sale lines: %w", err)
	}
	defer rows.Close()

	sale.Lines = make([]model.SaleLine, 0)
	for rows.Next() {
		var l model.SaleLine
		if err := rows.Scan(
			&l.ID,
			&l.SaleID,
			&l.ProductID,
			&l.ProductName,
			&l.Quantity,
			&l.UnitPrice,
			&l.Subtotal,
			&l.Discount,
			&l.PromotionApplied,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		sale.Lines = append(sale.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale lines: %w", err)
	}

	return sale, nil
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/product/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) LockForSaleWithTx(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]*model.Product, error) {
	products := make(map[int64]*model.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// ORDER BY id keeps lock acquisition order stable across concurrent
	// checkouts sharing products.
	query := `
		SELECT id, name, price, category, stock, image_url, is_active, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Category,
			&p.Stock,
			&p.ImageURL,
			&p.IsActive,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan locked product: %w", err)
		}
		products[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) DecrementStockWithTx(ctx context.Context, tx pgx.Tx, id int64, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", id, err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrInsufficientStock
	}

	return nil
}

func (r *postgresRepository) GetStockLevels(ctx context.Context, ids []int64) ([]*model.StockLevel, error) {
	levels := make([]*model.StockLevel, 0, len(ids))
	if len(ids) == 0 {
		return levels, nil
	}

	query := `
		SELECT id, name, stock, is_active
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query stock levels: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	for rows.Next() {
		level := &model.StockLevel{SyncedAt: now}
		if err := rows.Scan(&level.ProductID, &level.Name, &level.Stock, &level.IsActive); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		levels = append(levels, level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock levels: %w", err)
	}

	return levels, nil
}

func (r *postgresRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query active products: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect active products: %w", err)
	}
	return ids, nil
}

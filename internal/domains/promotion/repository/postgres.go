package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pos-backend/internal/domains/promotion/model"
)

// PostgresRepository implements CatalogLookup with PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) CatalogLookup {
	return &PostgresRepository{db: db}
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) GetActivePromotionsForProducts(ctx context.Context, productIDs []int64) (map[int64][]*model.ActivePromotion, error) {
	result := make(map[int64][]*model.ActivePromotion)
	if len(productIDs) == 0 {
		return result, nil
	}

	// Link insertion order decides which promotion wins when a product
	// has several.
	query := `
		SELECT
			pp.product_id,
			p.id, p.name, p.type, p.min_quantity, p.discount_value, p.is_active
		FROM product_promotions pp
		JOIN promotions p ON p.id = pp.promotion_id
		WHERE pp.product_id = ANY($1)
		  AND p.is_active = TRUE
		ORDER BY pp.product_id, pp.created_at, pp.promotion_id
	`

	rows, err := r.db.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query active promotions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			kind      string
			p         model.ActivePromotion
		)
		if err := rows.Scan(
			&productID,
			&p.ID,
			&p.Name,
			&kind,
			&p.MinQuantity,
			&p.DiscountValue,
			&p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan active promotion: %w", err)
		}
		p.Kind = model.ParseKind(kind)
		result[productID] = append(result[productID], &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active promotions: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*model.PromotionListItem, error) {
	query := `
		SELECT
			p.id, p.name, p.type, p.min_quantity, p.discount_value, p.created_at,
			COALESCE(
				array_agg(pp.product_id ORDER BY pp.product_id) FILTER (WHERE pp.product_id IS NOT NULL),
				'{}'
			) AS product_ids
		FROM promotions p
		LEFT JOIN product_promotions pp ON pp.promotion_id = p.id
		WHERE p.is_active = TRUE
		GROUP BY p.id
		ORDER BY p.created_at, p.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active promotions: %w", err)
	}
	defer rows.Close()

	items := make([]*model.PromotionListItem, 0)
	for rows.Next() {
		var (
			kind string
			item model.PromotionListItem
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&kind,
			&item.MinQuantity,
			&item.DiscountValue,
			&item.CreatedAt,
			&item.ProductIDs,
		); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		item.Kind = model.ParseKind(kind)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotions: %w", err)
	}

	return items, nil
}

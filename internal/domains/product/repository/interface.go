package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pos-backend/internal/domains/product/model"
)

type Repository interface {
	// LockForSaleWithTx reads the given products with SELECT ... FOR UPDATE,
	// locking rows in ascending id order. Unknown ids are absent from the map.
	LockForSaleWithTx(ctx context.Context, tx pgx.Tx, ids []int64) (map[int64]*model.Product, error)

	// DecrementStockWithTx subtracts quantity only if enough stock remains.
	// Returns model.ErrInsufficientStock when it does not.
	DecrementStockWithTx(ctx context.Context, tx pgx.Tx, id int64, quantity int) error

	// GetStockLevels reads the current stock of ids without locking.
	GetStockLevels(ctx context.Context, ids []int64) ([]*model.StockLevel, error)

	// ListActiveIDs returns every sellable product id in ascending order.
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

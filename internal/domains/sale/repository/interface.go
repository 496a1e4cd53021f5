package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pos-backend/internal/domains/sale/model"
)

type Repository interface {
	// RunInTransaction runs fn in one transaction. fn returning an error
	// rolls back every write made through tx.
	RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error

	// InsertSaleWithTx writes the header and sets sale.ID and sale.CreatedAt.
	// A taken idempotency key yields model.ErrDuplicateIdempotencyKey.
	InsertSaleWithTx(ctx context.Context, tx pgx.Tx, sale *model.Sale) error

	InsertSaleLinesWithTx(ctx context.Context, tx pgx.Tx, lines []model.SaleLine) error

	FindByIdempotencyKey(ctx context.Context, key string) (*model.Sale, error)

	// GetByID returns the sale with its lines.
	GetByID(ctx context.Context, id int64) (*model.Sale, error)
}

package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/sale/model"
)

// SaleService finalizes checkouts.
type SaleService interface {
	// CreateSale re-evaluates the cart on server prices, checks stock and
	// cash, and persists the sale with its stock decrements atomically.
	// idempotencyKey may be empty.
	CreateSale(ctx context.Context, userID int64, req *model.CreateSaleRequest, customPercent decimal.Decimal, idempotencyKey string) (*model.CreateSaleResponse, error)

	GetSale(ctx context.Context, id int64) (*model.Sale, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

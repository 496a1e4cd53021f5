package service

import (
	"context"

	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/promotion/model"
)

// ServiceInterface is used by the promotion handler and by the sale
// finalizer, which re-evaluates every cart before persisting it.
type ServiceInterface interface {
	// Evaluate prices lines with the catalog promotions and an optional
	// cashier discount. Only catalog failures are returned as errors.
	Evaluate(ctx context.Context, lines []model.CartLine, customPercent decimal.Decimal) (*model.EvaluationResult, error)

	ListActivePromotions(ctx context.Context) ([]*model.PromotionListItem, error)
}

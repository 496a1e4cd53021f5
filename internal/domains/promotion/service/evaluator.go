package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/promotion/model"
	"pos-backend/internal/domains/promotion/repository"
	"pos-backend/pkg/metrics"
)

// Evaluator prices carts against the promotion catalog. It holds no state
// between calls and is safe for concurrent use.
type Evaluator struct {
	catalog    repository.CatalogLookup
	calculator *DiscountCalculator
}

func NewEvaluator(catalog repository.CatalogLookup, calculator *DiscountCalculator) ServiceInterface {
	return &Evaluator{
		catalog:    catalog,
		calculator: calculator,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, lines []model.CartLine, customPercent decimal.Decimal) (*model.EvaluationResult, error) {
	if len(lines) == 0 {
		metrics.PromotionEvaluations.WithLabelValues(string(model.ActivePromotionNone)).Inc()
		return model.EmptyResult(), nil
	}

	promos, err := e.catalog.GetActivePromotionsForProducts(ctx, distinctProductIDs(lines))
	if err != nil {
		metrics.PromotionEvaluationErrors.Inc()
		log.Error().Err(err).Int("lines", len(lines)).Msg("promotion catalog lookup failed")
		return nil, model.NewCatalogError(err)
	}

	result := e.calculator.Price(lines, promos, customPercent)

	metrics.PromotionEvaluations.WithLabelValues(string(result.ActivePromotion)).Inc()
	log.Debug().
		Int("lines", len(lines)).
		Str("active_promotion", string(result.ActivePromotion)).
		Str("total", result.Total.String()).
		Msg("cart evaluated")

	return result, nil
}

func (e *Evaluator) ListActivePromotions(ctx context.Context) ([]*model.PromotionListItem, error) {
	items, err := e.catalog.ListActive(ctx)
	if err != nil {
		return nil, model.NewCatalogError(err)
	}
	return items, nil
}

// distinctProductIDs returns the ids in ascending order.
func distinctProductIDs(lines []model.CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

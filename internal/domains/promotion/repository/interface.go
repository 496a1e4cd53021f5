package repository

import (
	"context"

	"pos-backend/internal/domains/promotion/model"
)

// CatalogLookup reads promotion rules from the catalog.
type CatalogLookup interface {
	// GetActivePromotionsForProducts returns the active promotions attached
	// to each of productIDs in one round trip. Each product's slice is in
	// catalog insertion order. Products without promotions are absent.
	GetActivePromotionsForProducts(ctx context.Context, productIDs []int64) (map[int64][]*model.ActivePromotion, error)

	// ListActive returns every active promotion with its linked products.
	ListActive(ctx context.Context) ([]*model.PromotionListItem, error)
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the promotion rule type. Only KindTwoForOne is evaluated at the
// register; the other kinds are stored in the catalog but never applied.
type Kind string

const (
	KindTwoForOne  Kind = "two_for_one"
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

// Catalog values as stored in promotions.type.
const (
	catalogTypeTwoForOne  = "2x1"
	catalogTypePercentage = "percentage"
	catalogTypeFixed      = "fixed"
)

// ParseKind maps the stored promotion type to a Kind. Unknown values map
// to an empty Kind, which the evaluator ignores.
func ParseKind(s string) Kind {
	switch s {
	case catalogTypeTwoForOne, string(KindTwoForOne):
		return KindTwoForOne
	case catalogTypePercentage:
		return KindPercentage
	case catalogTypeFixed:
		return KindFixed
	}
	return ""
}

// CatalogType returns the value written to promotions.type.
func (k Kind) CatalogType() string {
	if k == KindTwoForOne {
		return catalogTypeTwoForOne
	}
	return string(k)
}

// DefaultMinQuantity applies when a two-for-one promotion has no
// minimum quantity configured.
const DefaultMinQuantity = 2

// ActivePromotion is a promotion attached to a product, as returned by the
// catalog lookup.
type ActivePromotion struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Kind          Kind            `json:"kind"`
	MinQuantity   int             `json:"min_quantity"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsActive      bool            `json:"is_active"`
}

// EffectiveMinQuantity is MinQuantity, or DefaultMinQuantity when unset.
func (p *ActivePromotion) EffectiveMinQuantity() int {
	if p.MinQuantity <= 0 {
		return DefaultMinQuantity
	}
	return p.MinQuantity
}

// Label is the text recorded on a discounted line.
func (p *ActivePromotion) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return "2x1"
}

// PromotionListItem is one row of GET /promotions.
type PromotionListItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Kind          Kind            `json:"kind"`
	MinQuantity   int             `json:"min_quantity"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ProductIDs    []int64         `json:"product_ids"`
	CreatedAt     time.Time       `json:"created_at"`
}

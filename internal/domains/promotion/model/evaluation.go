package model

import "github.com/shopspring/decimal"

// ActivePromotionType says which discount won for a cart.
type ActivePromotionType string

const (
	ActivePromotionNone      ActivePromotionType = "none"
	ActivePromotionTwoForOne ActivePromotionType = "two_for_one"
	ActivePromotionCustom    ActivePromotionType = "custom"
)

// CartLine is one product line as entered at the register.
type CartLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Subtotal is UnitPrice x Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// EvaluatedLine is a CartLine after promotions were considered.
type EvaluatedLine struct {
	ProductID             int64           `json:"product_id"`
	ProductName           string          `json:"product_name"`
	Quantity              int             `json:"quantity"`
	UnitPrice             decimal.Decimal `json:"unit_price"`
	LineSubtotal          decimal.Decimal `json:"line_subtotal"`
	LineDiscount          decimal.Decimal `json:"line_discount"`
	AppliedPromotionLabel *string         `json:"applied_promotion_label"`
}

// EvaluationResult is the full pricing breakdown of a cart.
//
// At most one of PromotionDiscount and CustomDiscount is non-zero, and
// ActivePromotion names the one that is.
type EvaluationResult struct {
	Lines                  []EvaluatedLine     `json:"lines"`
	Subtotal               decimal.Decimal     `json:"subtotal"`
	PromotionDiscount      decimal.Decimal     `json:"promotion_discount"`
	CustomDiscount         decimal.Decimal     `json:"custom_discount"`
	TotalDiscount          decimal.Decimal     `json:"total_discount"`
	Tax                    decimal.Decimal     `json:"tax"`
	Total                  decimal.Decimal     `json:"total"`
	ActivePromotion        ActivePromotionType `json:"active_promotion"`
	Message                *string             `json:"message"`
	CustomDiscountAllowed  bool                `json:"custom_discount_allowed"`
	EffectiveCustomPercent decimal.Decimal     `json:"effective_custom_percent"`
}

// EmptyResult is the result for a cart with no lines.
func EmptyResult() *EvaluationResult {
	return &EvaluationResult{
		Lines:                  []EvaluatedLine{},
		Subtotal:               decimal.Zero,
		PromotionDiscount:      decimal.Zero,
		CustomDiscount:         decimal.Zero,
		TotalDiscount:          decimal.Zero,
		Tax:                    decimal.Zero,
		Total:                  decimal.Zero,
		ActivePromotion:        ActivePromotionNone,
		EffectiveCustomPercent: decimal.Zero,
	}
}

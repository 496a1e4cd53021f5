package service

import (
	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/promotion/model"
)

var (
	// TaxRate is charged on the subtotal before any discount.
	TaxRate = decimal.RequireFromString("0.13")

	// MaxCustomDiscountPercent caps a cashier discount.
	MaxCustomDiscountPercent = decimal.NewFromInt(10)

	// DefaultCustomDiscountMinSubtotal is the subtotal from which a cashier
	// discount may be applied.
	DefaultCustomDiscountMinSubtotal = decimal.NewFromInt(10000)

	hundred = decimal.NewFromInt(100)
)

// DiscountCalculator holds the pricing rules for a cart. It has no I/O;
// the Evaluator feeds it the promotions read from the catalog.
//
// Rounding is half away from zero:
//   - money amounts to whole units (Round(0))
//   - the custom percent to one decimal (Round(1))
type DiscountCalculator struct {
	customMinSubtotal decimal.Decimal
}

func NewDiscountCalculator(customMinSubtotal decimal.Decimal) *DiscountCalculator {
	return &DiscountCalculator{customMinSubtotal: customMinSubtotal}
}

// Tax is the rounded tax on the pre-discount subtotal.
func (c *DiscountCalculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(0)
}

// CustomDiscountAllowed reports whether the cart is large enough for a
// cashier discount.
func (c *DiscountCalculator) CustomDiscountAllowed(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(c.customMinSubtotal)
}

// NormalizeCustomPercent clamps the requested percent to [0, 10] and rounds
// it to one decimal. Zero means no request.
func (c *DiscountCalculator) NormalizeCustomPercent(requested decimal.Decimal) decimal.Decimal {
	if !requested.IsPositive() {
		return decimal.Zero
	}
	if requested.GreaterThan(MaxCustomDiscountPercent) {
		requested = MaxCustomDiscountPercent
	}
	return requested.Round(1)
}

// CustomDiscount is subtotal x percent / 100, rounded.
func (c *DiscountCalculator) CustomDiscount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(0)
}

// TwoForOne picks the first qualifying two-for-one promotion for line, in
// the order given, and returns it with the discount it grants. A match may
// grant nothing, e.g. one unit under a min_quantity of 1. It returns nil
// when none qualifies.
func (c *DiscountCalculator) TwoForOne(line model.CartLine, promos []*model.ActivePromotion) (*model.ActivePromotion, decimal.Decimal) {
	freeUnits := line.Quantity / 2

	for _, p := range promos {
		if p == nil || !p.IsActive || p.Kind != model.KindTwoForOne {
			continue
		}
		if line.Quantity < p.EffectiveMinQuantity() {
			continue
		}
		return p, line.UnitPrice.Mul(decimal.NewFromInt(int64(freeUnits)))
	}

	return nil, decimal.Zero
}

// Total is subtotal + tax - discount, floored at zero.
func (c *DiscountCalculator) Total(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Price evaluates lines against promos (keyed by product id) and an
// optional cashier discount. It is deterministic: the same input always
// yields an equal result.
func (c *DiscountCalculator) Price(lines []model.CartLine, promos map[int64][]*model.ActivePromotion, requestedPercent decimal.Decimal) *model.EvaluationResult {
	if len(lines) == 0 {
		return model.EmptyResult()
	}

	result := &model.EvaluationResult{
		Lines: make([]model.EvaluatedLine, 0, len(lines)),
	}

	subtotal := decimal.Zero
	promotionDiscount := decimal.Zero
	hasTwoForOne := false
	labels := make([]string, 0)

	// Two-for-one pass
	for _, line := range lines {
		evaluated := model.EvaluatedLine{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineSubtotal: line.Subtotal(),
			LineDiscount: decimal.Zero,
		}

		if promo, discount := c.TwoForOne(line, promos[line.ProductID]); promo != nil {
			label := promo.Label()
			evaluated.LineDiscount = discount
			evaluated.AppliedPromotionLabel = &label
			promotionDiscount = promotionDiscount.Add(discount)
			hasTwoForOne = true
			labels = appendUnique(labels, label)
		}

		subtotal = subtotal.Add(evaluated.LineSubtotal)
		result.Lines = append(result.Lines, evaluated)
	}

	result.Subtotal = subtotal
	result.CustomDiscountAllowed = c.CustomDiscountAllowed(subtotal)

	switch {
	case requestedPercent.IsPositive() && result.CustomDiscountAllowed:
		// Any requested cashier discount replaces every promotion on the
		// cart, even one that rounds to 0%.
		percent := c.NormalizeCustomPercent(requestedPercent)
		for i := range result.Lines {
			result.Lines[i].LineDiscount = decimal.Zero
			result.Lines[i].AppliedPromotionLabel = nil
		}
		result.PromotionDiscount = decimal.Zero
		result.CustomDiscount = c.CustomDiscount(subtotal, percent)
		result.EffectiveCustomPercent = percent
		result.ActivePromotion = model.ActivePromotionCustom
	case hasTwoForOne:
		result.PromotionDiscount = promotionDiscount
		result.CustomDiscount = decimal.Zero
		result.EffectiveCustomPercent = decimal.Zero
		result.ActivePromotion = model.ActivePromotionTwoForOne
	default:
		result.PromotionDiscount = decimal.Zero
		result.CustomDiscount = decimal.Zero
		result.EffectiveCustomPercent = decimal.Zero
		result.ActivePromotion = model.ActivePromotionNone
	}

	result.TotalDiscount = result.PromotionDiscount.Add(result.CustomDiscount)
	result.Tax = c.Tax(subtotal)
	result.Total = c.Total(subtotal, result.Tax, result.TotalDiscount)
	result.Message = buildMessage(result, labels)

	return result
}

// EstimateUndiscounted prices lines with no promotions and no cashier
// discount. Registers show it while the evaluation service is unreachable.
func EstimateUndiscounted(lines []model.CartLine) *model.EvaluationResult {
	return NewDiscountCalculator(DefaultCustomDiscountMinSubtotal).Price(lines, nil, decimal.Zero)
}

func appendUnique(labels []string, label string) []string {
	for _, l := range labels {
		if l == label {
			return labels
		}
	}
	return append(labels, label)
}

package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pos-backend/internal/domains/promotion/model"
)

func TestDiscountCalculator_Tax(t *testing.T) {
	calc := NewDiscountCalculator(DefaultCustomDiscountMinSubtotal)

	assertDecimal(t, "780", calc.Tax(dec("6000")), "tax")
	// 0.13 * 1350 = 175.5 rounds away from zero
	assertDecimal(t, "176", calc.Tax(dec("1350")), "tax")
	assertDecimal(t, "0", calc.Tax(decimal.Zero), "tax")
}

func TestDiscountCalculator_CustomDiscountAllowed(t *testing.T) {
	calc := NewDiscountCalculator(dec("10000"))

	assert.True(t, calc.CustomDiscountAllowed(dec("10000")))
	assert.True(t, calc.CustomDiscountAllowed(dec("10000.01")))
	assert.False(t, calc.CustomDiscountAllowed(dec("9999.99")))
}

func TestDiscountCalculator_TwoForOne(t *testing.T) {
	calc := NewDiscountCalculator(DefaultCustomDiscountMinSubtotal)
	promos := []*model.ActivePromotion{twoForOne("a", "A"), twoForOne("b", "B")}

	promo, discount := calc.TwoForOne(line(1, "x", 5, 20), promos)
	if assert.NotNil(t, promo) {
		assert.Equal(t, "a", promo.ID)
	}
	assertDecimal(t, "40", discount, "discount")

	promo, discount = calc.TwoForOne(line(1, "x", 1, 20), promos)
	assert.Nil(t, promo)
	assertDecimal(t, "0", discount, "discount")

	promo, _ = calc.TwoForOne(line(1, "x", 4, 20), nil)
	assert.Nil(t, promo)

	// min_quantity 1 matches a single unit, which is not free
	single := []*model.ActivePromotion{{ID: "u", Kind: model.KindTwoForOne, MinQuantity: 1, IsActive: true}}
	promo, discount = calc.TwoForOne(line(1, "x", 1, 20), single)
	if assert.NotNil(t, promo) {
		assert.Equal(t, "u", promo.ID)
	}
	assertDecimal(t, "0", discount, "discount")
}

func TestEstimateUndiscounted(t *testing.T) {
	r := EstimateUndiscounted([]model.CartLine{line(1, "Gelatina", 3, 2000)})

	assertDecimal(t, "6000", r.Subtotal, "subtotal")
	assertDecimal(t, "780", r.Tax, "tax")
	assertDecimal(t, "6780", r.Total, "total")
	assert.Equal(t, model.ActivePromotionNone, r.ActivePromotion)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "₡0", FormatMoney(decimal.Zero))
	assert.Equal(t, "₡600", FormatMoney(dec("600")))
	assert.Equal(t, "₡12,960", FormatMoney(dec("12960")))
	assert.Equal(t, "₡1,234.50", FormatMoney(dec("1234.5")))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, model.KindTwoForOne, model.ParseKind("2x1"))
	assert.Equal(t, model.KindTwoForOne, model.ParseKind("two_for_one"))
	assert.Equal(t, model.KindPercentage, model.ParseKind("percentage"))
	assert.Equal(t, model.KindFixed, model.ParseKind("fixed"))
	assert.Equal(t, model.Kind(""), model.ParseKind("bogo"))
	assert.Equal(t, "2x1", model.KindTwoForOne.CatalogType())
}

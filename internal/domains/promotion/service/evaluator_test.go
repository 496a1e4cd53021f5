package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/domains/promotion/model"
)

type fakeCatalog struct {
	mu     sync.Mutex
	promos map[int64][]*model.ActivePromotion
	err    error
	calls  int
	lastID []int64
}

func (f *fakeCatalog) GetActivePromotionsForProducts(_ context.Context, ids []int64) (map[int64][]*model.ActivePromotion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastID = ids
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64][]*model.ActivePromotion)
	for _, id := range ids {
		for _, p := range f.promos[id] {
			if p.IsActive {
				out[id] = append(out[id], p)
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListActive(context.Context) ([]*model.PromotionListItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*model.PromotionListItem{{ID: "gel-2x1", Name: "Gelatina 2x1", Kind: model.KindTwoForOne}}, nil
}

const gelatinID = int64(1)

func twoForOne(id, name string) *model.ActivePromotion {
	return &model.ActivePromotion{ID: id, Name: name, Kind: model.KindTwoForOne, IsActive: true}
}

func newTestEvaluator(promos map[int64][]*model.ActivePromotion) (ServiceInterface, *fakeCatalog) {
	catalog := &fakeCatalog{promos: promos}
	return NewEvaluator(catalog, NewDiscountCalculator(DefaultCustomDiscountMinSubtotal)), catalog
}

func line(id int64, name string, qty int, price int64) model.CartLine {
	return model.CartLine{ProductID: id, ProductName: name, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(expected).Equal(actual), "%s: expected %s, got %s", field, expected, actual.String())
}

func assertTotalsConsistent(t *testing.T, r *model.EvaluationResult) {
	t.Helper()
	assertDecimal(t, r.PromotionDiscount.Add(r.CustomDiscount).String(), r.TotalDiscount, "total_discount")
	assert.False(t, r.PromotionDiscount.IsPositive() && r.CustomDiscount.IsPositive(), "both discounts non-zero")
	assertDecimal(t, r.Subtotal.Mul(TaxRate).Round(0).String(), r.Tax, "tax")
	assert.False(t, r.Total.IsNegative())
	for _, l := range r.Lines {
		assert.True(t, l.LineDiscount.LessThanOrEqual(l.LineSubtotal))
	}
}

func TestEvaluate_TwoForOneScenario(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 3, 2000)}, decimal.Zero)
	require.NoError(t, err)

	assertDecimal(t, "6000", r.Subtotal, "subtotal")
	assertDecimal(t, "2000", r.PromotionDiscount, "promotion_discount")
	assertDecimal(t, "0", r.CustomDiscount, "custom_discount")
	assertDecimal(t, "780", r.Tax, "tax")
	assertDecimal(t, "4780", r.Total, "total")
	assert.Equal(t, model.ActivePromotionTwoForOne, r.ActivePromotion)
	assert.False(t, r.CustomDiscountAllowed)

	require.Len(t, r.Lines, 1)
	assertDecimal(t, "2000", r.Lines[0].LineDiscount, "line_discount")
	require.NotNil(t, r.Lines[0].AppliedPromotionLabel)
	assert.Equal(t, "Gelatina 2x1", *r.Lines[0].AppliedPromotionLabel)

	require.NotNil(t, r.Message)
	assert.Equal(t, "2x1 promotion applied on Gelatina 2x1, you save ₡2,000", *r.Message)
	assertTotalsConsistent(t, r)
}

func TestEvaluate_CustomDiscountScenario(t *testing.T) {
	svc, _ := newTestEvaluator(nil)

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(2, "Queque", 1, 12000)}, dec("5"))
	require.NoError(t, err)

	assertDecimal(t, "12000", r.Subtotal, "subtotal")
	assertDecimal(t, "600", r.CustomDiscount, "custom_discount")
	assertDecimal(t, "1560", r.Tax, "tax")
	assertDecimal(t, "12960", r.Total, "total")
	assertDecimal(t, "5", r.EffectiveCustomPercent, "effective_custom_percent")
	assert.Equal(t, model.ActivePromotionCustom, r.ActivePromotion)
	assert.True(t, r.CustomDiscountAllowed)
	require.NotNil(t, r.Message)
	assert.Equal(t, "Custom discount of 5% applied, you save ₡600", *r.Message)
	assertTotalsConsistent(t, r)
}

func TestEvaluate_CustomDiscountBelowThreshold(t *testing.T) {
	svc, _ := newTestEvaluator(nil)

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(2, "Queque", 1, 5000)}, dec("5"))
	require.NoError(t, err)

	assertDecimal(t, "0", r.CustomDiscount, "custom_discount")
	assertDecimal(t, "0", r.EffectiveCustomPercent, "effective_custom_percent")
	assertDecimal(t, "650", r.Tax, "tax")
	assertDecimal(t, "5650", r.Total, "total")
	assert.Equal(t, model.ActivePromotionNone, r.ActivePromotion)
	assert.False(t, r.CustomDiscountAllowed)
	assert.Nil(t, r.Message)
	assertTotalsConsistent(t, r)
}

func TestEvaluate_BelowThresholdKeepsTwoForOne(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 2, 1000)}, dec("10"))
	require.NoError(t, err)

	assert.Equal(t, model.ActivePromotionTwoForOne, r.ActivePromotion)
	assertDecimal(t, "1000", r.PromotionDiscount, "promotion_discount")
	assertDecimal(t, "0", r.CustomDiscount, "custom_discount")
	assertTotalsConsistent(t, r)
}

func TestEvaluate_FreeUnitsFloor(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 5, 20)}, decimal.Zero)
	require.NoError(t, err)

	assertDecimal(t, "100", r.Subtotal, "subtotal")
	assertDecimal(t, "40", r.PromotionDiscount, "promotion_discount")
	assertDecimal(t, "40", r.Lines[0].LineDiscount, "line_discount")
	assertTotalsConsistent(t, r)
}

func TestEvaluate_QuantityBelowMinimum(t *testing.T) {
	tests := []struct {
		name     string
		promo    *model.ActivePromotion
		quantity int
	}{
		{"single unit default minimum", twoForOne("gel-2x1", "Gelatina 2x1"), 1},
		{"configured minimum not met", &model.ActivePromotion{ID: "p", Name: "Big 2x1", Kind: model.KindTwoForOne, MinQuantity: 4, IsActive: true}, 3},
		{"minimum of one still grants no free unit", &model.ActivePromotion{ID: "p", Name: "Loose 2x1", Kind: model.KindTwoForOne, MinQuantity: 1, IsActive: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{gelatinID: {tt.promo}})

			r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", tt.quantity, 2000)}, decimal.Zero)
			require.NoError(t, err)

			assert.Equal(t, model.ActivePromotionNone, r.ActivePromotion)
			assertDecimal(t, "0", r.PromotionDiscount, "promotion_discount")
			assert.Nil(t, r.Lines[0].AppliedPromotionLabel)
		})
	}
}

func TestEvaluate_NonTwoForOneKindsIgnored(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {
			{ID: "pct", Name: "10% off", Kind: model.KindPercentage, DiscountValue: dec("10"), IsActive: true},
			{ID: "fix", Name: "500 off", Kind: model.KindFixed, DiscountValue: dec("500"), IsActive: true},
		},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 4, 2000)}, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, model.ActivePromotionNone, r.ActivePromotion)
	assertDecimal(t, "0", r.TotalDiscount, "total_discount")
}

func TestEvaluate_CustomReplacesTwoForOne(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	lines := []model.CartLine{
		line(gelatinID, "Gelatina", 4, 2000),
		line(2, "Queque", 1, 4000),
	}
	r, err := svc.Evaluate(context.Background(), lines, dec("10"))
	require.NoError(t, err)

	assertDecimal(t, "12000", r.Subtotal, "subtotal")
	assertDecimal(t, "0", r.PromotionDiscount, "promotion_discount")
	assertDecimal(t, "1200", r.CustomDiscount, "custom_discount")
	assert.Equal(t, model.ActivePromotionCustom, r.ActivePromotion)
	for _, l := range r.Lines {
		assertDecimal(t, "0", l.LineDiscount, "line_discount")
		assert.Nil(t, l.AppliedPromotionLabel)
	}
	assertDecimal(t, "12360", r.Total, "total")
	assertTotalsConsistent(t, r)
}

func TestEvaluate_CustomPercentNormalization(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		effective string
		discount  string
		active    model.ActivePromotionType
	}{
		{"clamped to ten", "15", "10", "2000", model.ActivePromotionCustom},
		{"rounded to one decimal", "7.25", "7.3", "1460", model.ActivePromotionCustom},
		{"zero is no request", "0", "0", "0", model.ActivePromotionNone},
		{"negative is no request", "-3", "0", "0", model.ActivePromotionNone},
		{"rounds down to zero", "0.04", "0", "0", model.ActivePromotionCustom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestEvaluator(nil)

			r, err := svc.Evaluate(context.Background(), []model.CartLine{line(2, "Queque", 2, 10000)}, dec(tt.requested))
			require.NoError(t, err)

			assertDecimal(t, tt.effective, r.EffectiveCustomPercent, "effective_custom_percent")
			assertDecimal(t, tt.discount, r.CustomDiscount, "custom_discount")
			assert.Equal(t, tt.active, r.ActivePromotion)
			assert.True(t, r.CustomDiscountAllowed)
			assertTotalsConsistent(t, r)
		})
	}
}

func TestEvaluate_SmallCustomPercentStillReplacesTwoForOne(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 6, 2000)}, dec("0.04"))
	require.NoError(t, err)

	assert.Equal(t, model.ActivePromotionCustom, r.ActivePromotion)
	assertDecimal(t, "0", r.EffectiveCustomPercent, "effective_custom_percent")
	assertDecimal(t, "0", r.PromotionDiscount, "promotion_discount")
	assertDecimal(t, "0", r.CustomDiscount, "custom_discount")
	require.Len(t, r.Lines, 1)
	assertDecimal(t, "0", r.Lines[0].LineDiscount, "line_discount")
	assert.Nil(t, r.Lines[0].AppliedPromotionLabel)
	assertDecimal(t, "13560", r.Total, "total")
	assertTotalsConsistent(t, r)
}

func TestEvaluate_MatchedTwoForOneWithoutDiscount(t *testing.T) {
	singleUnit := &model.ActivePromotion{ID: "one", Name: "Promo unitaria", Kind: model.KindTwoForOne, MinQuantity: 1, IsActive: true}

	tests := []struct {
		name  string
		promo *model.ActivePromotion
		line  model.CartLine
	}{
		{"single unit under min quantity one", singleUnit, line(gelatinID, "Gelatina", 1, 2000)},
		{"free product", twoForOne("gel-2x1", "Gelatina 2x1"), line(gelatinID, "Gelatina", 2, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{gelatinID: {tt.promo}})

			r, err := svc.Evaluate(context.Background(), []model.CartLine{tt.line}, decimal.Zero)
			require.NoError(t, err)

			assert.Equal(t, model.ActivePromotionTwoForOne, r.ActivePromotion)
			assertDecimal(t, "0", r.PromotionDiscount, "promotion_discount")
			require.Len(t, r.Lines, 1)
			require.NotNil(t, r.Lines[0].AppliedPromotionLabel)
			assert.Equal(t, tt.promo.Label(), *r.Lines[0].AppliedPromotionLabel)
			require.NotNil(t, r.Message)
			assertTotalsConsistent(t, r)
		})
	}
}

func TestEvaluate_TieBreakFirstInCatalogOrder(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {
			{ID: "inactive", Name: "Old 2x1", Kind: model.KindTwoForOne, IsActive: false},
			{ID: "big", Name: "Bulk 2x1", Kind: model.KindTwoForOne, MinQuantity: 6, IsActive: true},
			twoForOne("first", "Gelatina 2x1"),
			twoForOne("second", "Weekend 2x1"),
		},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 2, 1000)}, decimal.Zero)
	require.NoError(t, err)

	require.NotNil(t, r.Lines[0].AppliedPromotionLabel)
	assert.Equal(t, "Gelatina 2x1", *r.Lines[0].AppliedPromotionLabel)

	r, err = svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 6, 1000)}, decimal.Zero)
	require.NoError(t, err)

	require.NotNil(t, r.Lines[0].AppliedPromotionLabel)
	assert.Equal(t, "Bulk 2x1", *r.Lines[0].AppliedPromotionLabel)
	assertDecimal(t, "3000", r.PromotionDiscount, "promotion_discount")
}

func TestEvaluate_BlankNameFallsBackToLabel(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel", "")},
	})

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(gelatinID, "Gelatina", 2, 1000)}, decimal.Zero)
	require.NoError(t, err)

	require.NotNil(t, r.Lines[0].AppliedPromotionLabel)
	assert.Equal(t, "2x1", *r.Lines[0].AppliedPromotionLabel)
}

func TestEvaluate_MultipleLinesSameProduct(t *testing.T) {
	svc, catalog := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})

	lines := []model.CartLine{
		line(3, "Flan", 1, 1500),
		line(gelatinID, "Gelatina", 2, 1000),
		line(gelatinID, "Gelatina", 3, 1000),
	}
	r, err := svc.Evaluate(context.Background(), lines, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.calls)
	assert.Equal(t, []int64{1, 3}, catalog.lastID)
	assertDecimal(t, "2000", r.PromotionDiscount, "promotion_discount")
	assert.Len(t, r.Lines, 3)
	assert.Nil(t, r.Lines[0].AppliedPromotionLabel)
	assertTotalsConsistent(t, r)
}

func TestEvaluate_EmptyCart(t *testing.T) {
	svc, catalog := newTestEvaluator(nil)

	r, err := svc.Evaluate(context.Background(), nil, dec("5"))
	require.NoError(t, err)

	assert.Equal(t, 0, catalog.calls)
	assert.Empty(t, r.Lines)
	assert.NotNil(t, r.Lines)
	assert.Equal(t, model.ActivePromotionNone, r.ActivePromotion)
	assert.False(t, r.CustomDiscountAllowed)
	assert.Nil(t, r.Message)
	assertDecimal(t, "0", r.Total, "total")
}

func TestEvaluate_CatalogFailureIsReturned(t *testing.T) {
	svc, catalog := newTestEvaluator(nil)
	catalog.err = errors.New("connection refused")

	r, err := svc.Evaluate(context.Background(), []model.CartLine{line(1, "Gelatina", 2, 1000)}, decimal.Zero)
	require.Error(t, err)
	assert.Nil(t, r)

	var appErr *model.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, model.ErrCodeInternalError, appErr.Code)
	assert.ErrorIs(t, err, catalog.err)
}

func TestEvaluate_Idempotent(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})
	lines := []model.CartLine{line(gelatinID, "Gelatina", 7, 1250), line(2, "Queque", 1, 9999)}

	first, err := svc.Evaluate(context.Background(), lines, dec("3.3"))
	require.NoError(t, err)
	second, err := svc.Evaluate(context.Background(), lines, dec("3.3"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_ConcurrentCallsAgree(t *testing.T) {
	svc, _ := newTestEvaluator(map[int64][]*model.ActivePromotion{
		gelatinID: {twoForOne("gel-2x1", "Gelatina 2x1")},
	})
	lines := []model.CartLine{line(gelatinID, "Gelatina", 3, 2000)}

	var wg sync.WaitGroup
	results := make([]*model.EvaluationResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := svc.Evaluate(context.Background(), lines, decimal.Zero)
			if err == nil {
				results[i] = r
			}
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assertDecimal(t, "4780", r.Total, "total")
	}
}

func TestEvaluate_TotalNeverNegative(t *testing.T) {
	calc := NewDiscountCalculator(DefaultCustomDiscountMinSubtotal)
	assertDecimal(t, "0", calc.Total(dec("100"), dec("13"), dec("500")), "total")
}

func TestListActivePromotions(t *testing.T) {
	svc, catalog := newTestEvaluator(nil)

	items, err := svc.ListActivePromotions(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "gel-2x1", items[0].ID)

	catalog.err = errors.New("boom")
	_, err = svc.ListActivePromotions(context.Background())
	assert.Error(t, err)
}

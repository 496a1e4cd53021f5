package service

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"pos-backend/internal/domains/promotion/model"
)

const currencySymbol = "₡"

func buildMessage(result *model.EvaluationResult, labels []string) *string {
	var msg string

	switch result.ActivePromotion {
	case model.ActivePromotionCustom:
		msg = fmt.Sprintf("Custom discount of %s%% applied, you save %s",
			result.EffectiveCustomPercent.String(), FormatMoney(result.CustomDiscount))
	case model.ActivePromotionTwoForOne:
		msg = fmt.Sprintf("2x1 promotion applied on %s, you save %s",
			strings.Join(labels, ", "), FormatMoney(result.PromotionDiscount))
	default:
		return nil
	}

	return &msg
}

// FormatMoney renders an amount with the currency symbol and thousands
// separators, e.g. ₡12,960 or ₡1,234.50.
func FormatMoney(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return currencySymbol + humanize.Comma(amount.IntPart())
	}
	return currencySymbol + humanize.FormatFloat("#,###.##", amount.InexactFloat64())
}

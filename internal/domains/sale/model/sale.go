package model

import (
	"time"

	"github.com/shopspring/decimal"

	promoModel "pos-backend/internal/domains/promotion/model"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// Sale is a finalized checkout. It is written once, together with its
// lines and the stock decrements, and never updated.
type Sale struct {
	ID                    int64                          `json:"id"`
	UserID                int64                          `json:"user_id"`
	CustomerName          *string                        `json:"customer_name"`
	Subtotal              decimal.Decimal                `json:"subtotal"`
	Tax                   decimal.Decimal                `json:"tax"`
	PromotionDiscount     decimal.Decimal                `json:"promotion_discount"`
	CustomDiscount        decimal.Decimal                `json:"custom_discount"`
	CustomDiscountPercent decimal.Decimal                `json:"custom_discount_percent"`
	Discount              decimal.Decimal                `json:"discount"`
	Total                 decimal.Decimal                `json:"total"`
	ActivePromotion       promoModel.ActivePromotionType `json:"active_promotion"`
	PaymentMethod         PaymentMethod                  `json:"payment_method"`
	CashReceived          *decimal.Decimal               `json:"cash_received"`
	ChangeAmount          *decimal.Decimal               `json:"change_amount"`
	IdempotencyKey        *string                        `json:"-"`
	CreatedAt             time.Time                      `json:"created_at"`
	Lines                 []SaleLine                     `json:"lines,omitempty"`
}

// SaleLine snapshots what was charged for one cart line.
type SaleLine struct {
	ID               int64           `json:"id"`
	SaleID           int64           `json:"sale_id"`
	ProductID        int64           `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	PromotionApplied *string         `json:"promotion_applied"`
}

// NewSale builds the header from an evaluation result.
func NewSale(userID int64, req *CreateSaleRequest, result *promoModel.EvaluationResult) *Sale {
	return &Sale{
		UserID:                userID,
		CustomerName:          req.TrimmedCustomerName(),
		Subtotal:              result.Subtotal,
		Tax:                   result.Tax,
		PromotionDiscount:     result.PromotionDiscount,
		CustomDiscount:        result.CustomDiscount,
		CustomDiscountPercent: result.EffectiveCustomPercent,
		Discount:              result.TotalDiscount,
		Total:                 result.Total,
		ActivePromotion:       result.ActivePromotion,
		PaymentMethod:         req.PaymentMethod,
	}
}

// LinesFromResult maps evaluated lines to rows for saleID.
func LinesFromResult(saleID int64, result *promoModel.EvaluationResult) []SaleLine {
	lines := make([]SaleLine, 0, len(result.Lines))
	for _, l := range result.Lines {
		lines = append(lines, SaleLine{
			SaleID:           saleID,
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			Subtotal:         l.LineSubtotal,
			Discount:         l.LineDiscount,
			PromotionApplied: l.AppliedPromotionLabel,
		})
	}
	return lines
}

package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	promoModel "pos-backend/internal/domains/promotion/model"
)

// CreateSaleRequest carries only what the cashier entered. Totals are
// always recomputed on the server; any total fields a client sends are
// not part of this type and are dropped on binding.
type CreateSaleRequest struct {
	CustomerName  *string               `json:"customer_name"`
	PaymentMethod PaymentMethod         `json:"payment_method"`
	CashReceived  *decimal.Decimal      `json:"cash_received"`
	Items         []promoModel.CartLine `json:"items"`
}

// CreateSaleBody is the JSON body of POST /sales. The cashier discount is
// passed to the finalizer separately from the request.
type CreateSaleBody struct {
	CreateSaleRequest
	CustomDiscountPercent decimal.Decimal `json:"custom_discount_percent"`
}

func (r CreateSaleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CustomerName,
			validation.When(r.CustomerName != nil,
				validation.Length(0, 150).Error("customer_name must be at most 150 characters"),
			),
		),
		validation.Field(&r.PaymentMethod,
			validation.Required.Error("payment_method is required"),
			validation.In(PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer).
				Error("payment_method must be one of cash, card, transfer"),
		),
		validation.Field(&r.CashReceived,
			validation.When(r.PaymentMethod == PaymentMethodCash,
				validation.Required.Error("cash_received is required for cash payments"),
			),
			validation.By(promoModel.NonNegativeDecimal("cash_received")),
		),
		validation.Field(&r.Items,
			validation.Required.Error("cart is empty"),
			validation.Length(1, promoModel.MaxCartLines).Error("cart may hold at most 200 lines"),
			validation.Each(validation.By(positiveUnitPrice)),
		),
	)
}

// positiveUnitPrice rejects free lines on a sale. Evaluation alone accepts
// a zero price.
func positiveUnitPrice(value interface{}) error {
	line, ok := value.(promoModel.CartLine)
	if !ok {
		return errors.New("invalid cart line")
	}
	if !line.UnitPrice.IsPositive() {
		return errors.New("unit_price must be positive")
	}
	return nil
}

// TrimmedCustomerName returns nil for a missing or blank name.
func (r CreateSaleRequest) TrimmedCustomerName() *string {
	if r.CustomerName == nil {
		return nil
	}
	name := strings.TrimSpace(*r.CustomerName)
	if name == "" {
		return nil
	}
	return &name
}

// CreateSaleResponse is returned by POST /sales.
type CreateSaleResponse struct {
	SaleID          int64                          `json:"sale_id"`
	Total           decimal.Decimal                `json:"total"`
	ChangeAmount    *decimal.Decimal               `json:"change_amount"`
	ActivePromotion promoModel.ActivePromotionType `json:"active_promotion"`
	Replayed        bool                           `json:"replayed"`
}

func NewCreateSaleResponse(sale *Sale, replayed bool) *CreateSaleResponse {
	return &CreateSaleResponse{
		SaleID:          sale.ID,
		Total:           sale.Total,
		ChangeAmount:    sale.ChangeAmount,
		ActivePromotion: sale.ActivePromotion,
		Replayed:        replayed,
	}
}

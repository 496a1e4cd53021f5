package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// MaxCartLines bounds a single evaluation or sale.
const MaxCartLines = 200

// EvaluateRequest is the body of POST /promotions/evaluate.
//
// Sequence is echoed back untouched so the register can drop responses
// that arrive after a newer request was sent.
type EvaluateRequest struct {
	Items                 []CartLine      `json:"items"`
	CustomDiscountPercent decimal.Decimal `json:"custom_discount_percent"`
	Sequence              uint64          `json:"sequence"`
}

func (r EvaluateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items,
			validation.Length(0, MaxCartLines).Error("cart may hold at most 200 lines"),
		),
	)
}

// EvaluateResponse wraps the result with the request sequence.
type EvaluateResponse struct {
	Sequence uint64            `json:"sequence"`
	Result   *EvaluationResult `json:"result"`
}

func (l CartLine) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ProductID,
			validation.Required.Error("product_id is required"),
			validation.Min(int64(1)).Error("product_id must be positive"),
		),
		validation.Field(&l.ProductName,
			validation.Length(0, 150).Error("product_name must be at most 150 characters"),
		),
		validation.Field(&l.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(1).Error("quantity must be at least 1"),
		),
		validation.Field(&l.UnitPrice,
			validation.By(NonNegativeDecimal("unit_price")),
		),
	)
}

// NonNegativeDecimal is a validation rule for decimal.Decimal fields.
func NonNegativeDecimal(field string) validation.RuleFunc {
	return func(value interface{}) error {
		var d decimal.Decimal
		switch v := value.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v == nil {
				return nil
			}
			d = *v
		default:
			return errors.New(field + " must be a decimal")
		}
		if d.IsNegative() {
			return errors.New(field + " must not be negative")
		}
		return nil
	}
}

package model

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeCartEmpty             = "SAL001"
	ErrCodeInvalidLine           = "SAL002"
	ErrCodeInvalidPaymentMethod  = "SAL003"
	ErrCodeInsufficientCash      = "SAL004"
	ErrCodeStockInsufficient     = "SAL005"
	ErrCodeProductUnavailable    = "SAL006"
	ErrCodeInvalidRequest        = "SAL007"
	ErrCodeDuplicateInFlight     = "SAL008"
	ErrCodeInvalidIdempotencyKey = "SAL009"
	ErrCodeSaleNotFound          = "SAL010"
	ErrCodeInternal              = "SYS_INTERNAL_ERROR"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrSaleNotFound          = errors.New("sale not found")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrInvalidRequest        = errors.New("invalid sale request")
	ErrInsufficientCash      = errors.New("cash received is less than the total")
	ErrStockInsufficient     = errors.New("insufficient stock")
	ErrProductUnavailable    = errors.New("product unavailable")
	ErrDuplicateInFlight     = errors.New("sale with this idempotency key is already in progress")
	ErrInvalidIdempotencyKey = errors.New("idempotency key must be a UUID")

	// ErrDuplicateIdempotencyKey is returned by the repository when the
	// unique index on sales.idempotency_key rejects an insert.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type SaleError struct {
	Code    string
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *SaleError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

func NewSaleError(code, message string, err error) *SaleError {
	return &SaleError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *SaleError) WithDetails(details map[string]interface{}) *SaleError {
	e.Details = details
	return e
}

// NewValidationError maps ozzo field errors to the most specific code.
func NewValidationError(err error) *SaleError {
	code := ErrCodeInvalidRequest
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		switch {
		case fieldErrs["payment_method"] != nil:
			code = ErrCodeInvalidPaymentMethod
		case fieldErrs["items"] != nil:
			code = ErrCodeInvalidLine
		}
	}

	return NewSaleError(code, "validation failed", errors.Join(ErrInvalidRequest, err)).
		WithDetails(map[string]interface{}{"errors": err})
}

func NewStockInsufficientError(productName string, requested, available int) *SaleError {
	return NewSaleError(ErrCodeStockInsufficient,
		fmt.Sprintf("not enough stock for %s", productName), ErrStockInsufficient).
		WithDetails(map[string]interface{}{
			"product":   productName,
			"requested": requested,
			"available": available,
		})
}

func NewProductUnavailableError(productID int64, productName string) *SaleError {
	return NewSaleError(ErrCodeProductUnavailable,
		fmt.Sprintf("%s is not available for sale", productName), ErrProductUnavailable).
		WithDetails(map[string]interface{}{
			"product_id": productID,
			"product":    productName,
		})
}

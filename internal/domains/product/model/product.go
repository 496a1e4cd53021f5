package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is a catalog item as sold at the register.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Stock     int             `json:"stock"`
	ImageURL  *string         `json:"image_url,omitempty"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// Sellable reports whether the product can be put on a sale at all.
func (p *Product) Sellable() bool {
	return p != nil && p.IsActive
}

// StockLevel is the snapshot cached for registers after each sale.
type StockLevel struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"is_active"`
	SyncedAt  time.Time `json:"synced_at"`
}

package shared

// Background task types
const (
	TypeSaleStockSync  = "sale:stock_sync"
	TypeStockReconcile = "stock:reconcile"
)

// Queue names, highest priority first.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// StockSyncPayload is enqueued after a sale commits. The worker refreshes
// the cached stock of each product and raises low-stock alerts.
type StockSyncPayload struct {
	SaleID     int64   `json:"saleId"`
	ProductIDs []int64 `json:"productIds"`
}

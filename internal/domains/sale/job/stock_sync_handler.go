package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	productModel "pos-backend/internal/domains/product/model"
	"pos-backend/internal/shared"
	"pos-backend/pkg/cache"
	"pos-backend/pkg/logger"
	"pos-backend/pkg/metrics"
)

// StockReader is the part of the product repository the sync needs.
type StockReader interface {
	GetStockLevels(ctx context.Context, ids []int64) ([]*productModel.StockLevel, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
}

// StockSyncHandler refreshes the cached stock of the products touched by a
// sale so registers can show availability without hitting the database.
type StockSyncHandler struct {
	stock             StockReader
	cache             cache.Cache
	lowStockThreshold int
}

func NewStockSyncHandler(stock StockReader, c cache.Cache, lowStockThreshold int) *StockSyncHandler {
	return &StockSyncHandler{
		stock:             stock,
		cache:             c,
		lowStockThreshold: lowStockThreshold,
	}
}

// StockCacheKey is where the snapshot of one product lives. No TTL, every
// sale overwrites it.
func StockCacheKey(productID int64) string {
	return fmt.Sprintf("stock:product:%d", productID)
}

func (h *StockSyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	// Parse payload, a malformed one is never retried
	var payload shared.StockSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("StockSync: failed to unmarshal payload", err)
		return fmt.Errorf("unmarshal stock sync payload: %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.ProductIDs) == 0 {
		return nil
	}

	if err := h.sync(ctx, payload.SaleID, payload.ProductIDs); err != nil {
		return err
	}

	logger.Info("StockSync: cache updated", map[string]interface{}{
		"sale_id":  payload.SaleID,
		"products": len(payload.ProductIDs),
	})

	return nil
}

// ProcessReconcile refreshes the snapshot of every active product. It
// catches stock changed outside the register, such as deliveries.
func (h *StockSyncHandler) ProcessReconcile(ctx context.Context, _ *asynq.Task) error {
	ids, err := h.stock.ListActiveIDs(ctx)
	if err != nil {
		logger.Error("StockReconcile: ListActiveIDs failed", err)
		return err
	}

	if err := h.sync(ctx, 0, ids); err != nil {
		return err
	}

	logger.Info("StockReconcile: cache updated", map[string]interface{}{
		"products": len(ids),
	})
	return nil
}

// sync writes the snapshots of ids and flags products that just went low.
// Database errors are returned so the task is retried.
func (h *StockSyncHandler) sync(ctx context.Context, saleID int64, ids []int64) error {
	levels, err := h.stock.GetStockLevels(ctx, ids)
	if err != nil {
		logger.Error("StockSync: GetStockLevels failed", err)
		return err
	}

	now := time.Now().UTC()
	for _, level := range levels {
		key := StockCacheKey(level.ProductID)

		var previous productModel.StockLevel
		found, err := h.cache.Get(ctx, key, &previous)
		if err != nil {
			logger.Error("StockSync: failed to read previous snapshot", err)
		}

		if h.crossedThreshold(found, previous.Stock, level.Stock) {
			metrics.LowStockAlerts.Inc()
			logger.Warn("StockSync: product stock is low", map[string]interface{}{
				"product_id": level.ProductID,
				"name":       level.Name,
				"stock":      level.Stock,
				"threshold":  h.lowStockThreshold,
				"sale_id":    saleID,
			})
		}

		level.SyncedAt = now
		if err := h.cache.Set(ctx, key, level, 0); err != nil {
			// The database stays authoritative, a stale snapshot is tolerated.
			logger.Error("StockSync: failed to set cache", err)
		}
	}
	return nil
}

func (h *StockSyncHandler) crossedThreshold(hadPrevious bool, previous, current int) bool {
	if current > h.lowStockThreshold {
		return false
	}
	return !hadPrevious || previous > h.lowStockThreshold
}

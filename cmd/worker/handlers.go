package main

import (
	"github.com/hibiken/asynq"

	saleJob "pos-backend/internal/domains/sale/job"
	"pos-backend/internal/shared"
	"pos-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	stockSync *saleJob.StockSyncHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		stockSync: c.StockSyncHandler,
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Sales
	mux.HandleFunc(shared.TypeSaleStockSync, h.stockSync.ProcessTask)
	mux.HandleFunc(shared.TypeStockReconcile, h.stockSync.ProcessReconcile)
}

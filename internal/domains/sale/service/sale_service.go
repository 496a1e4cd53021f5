package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	productModel "pos-backend/internal/domains/product/model"
	productRepo "pos-backend/internal/domains/product/repository"
	promoModel "pos-backend/internal/domains/promotion/model"
	promoService "pos-backend/internal/domains/promotion/service"
	"pos-backend/internal/domains/sale/model"
	"pos-backend/internal/domains/sale/repository"
	"pos-backend/internal/shared"
	"pos-backend/pkg/metrics"
)

type Config struct {
	TxTimeout time.Duration
}

// =====================================================
// SALE SERVICE IMPLEMENTATION
// =====================================================
type saleService struct {
	saleRepo    repository.Repository
	productRepo productRepo.Repository
	evaluator   promoService.ServiceInterface
	guard       IdempotencyGuard
	enqueuer    TaskEnqueuer
	cfg         Config
}

func NewSaleService(
	saleRepo repository.Repository,
	productRepo productRepo.Repository,
	evaluator promoService.ServiceInterface,
	guard IdempotencyGuard,
	enqueuer TaskEnqueuer,
	cfg Config,
) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		evaluator:   evaluator,
		guard:       guard,
		enqueuer:    enqueuer,
		cfg:         cfg,
	}
}

// =====================================================
// CREATE SALE
// =====================================================

func (s *saleService) CreateSale(ctx context.Context, userID int64, req *model.CreateSaleRequest, customPercent decimal.Decimal, idempotencyKey string) (*model.CreateSaleResponse, error) {
	resp, err := s.createSale(ctx, userID, req, customPercent, idempotencyKey)

	switch {
	case err == nil && resp.Replayed:
		metrics.Sales.WithLabelValues(metrics.SaleReplayed).Inc()
	case err == nil:
		metrics.Sales.WithLabelValues(metrics.SaleCreated).Inc()
	case isBusinessError(err):
		metrics.Sales.WithLabelValues(metrics.SaleRejected).Inc()
	default:
		metrics.Sales.WithLabelValues(metrics.SaleFailed).Inc()
	}

	return resp, err
}

func (s *saleService) createSale(ctx context.Context, userID int64, req *model.CreateSaleRequest, customPercent decimal.Decimal, idempotencyKey string) (*model.CreateSaleResponse, error) {
	// Step 1: Validate input, no state is touched before this passes
	if req == nil || len(req.Items) == 0 {
		return nil, model.NewSaleError(model.ErrCodeCartEmpty, "cart is empty", model.ErrCartEmpty)
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	var keyPtr *string
	if idempotencyKey != "" {
		if _, err := uuid.Parse(idempotencyKey); err != nil {
			return nil, model.NewSaleError(model.ErrCodeInvalidIdempotencyKey, "Idempotency-Key must be a UUID", model.ErrInvalidIdempotencyKey)
		}
		keyPtr = &idempotencyKey

		// Step 2: Replay a sale that already committed under this key
		if resp, err := s.replay(ctx, idempotencyKey); resp != nil || err != nil {
			return resp, err
		}

		// Step 3: Reject a concurrent duplicate still in flight
		acquired, err := s.guard.Acquire(ctx, idempotencyKey)
		switch {
		case err != nil:
			// The unique index still rejects a duplicate insert.
			log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("idempotency guard unavailable")
		case !acquired:
			return nil, model.NewSaleError(model.ErrCodeDuplicateInFlight, "a sale with this key is already being processed", model.ErrDuplicateInFlight)
		default:
			defer s.guard.Release(context.WithoutCancel(ctx), idempotencyKey)
		}
	}

	// Step 4: Evaluate, check and persist in one transaction
	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TxTimeout)
	defer cancel()

	var sale *model.Sale
	err := s.saleRepo.RunInTransaction(txCtx, func(tx pgx.Tx) error {
		var txErr error
		sale, txErr = s.finalize(txCtx, tx, userID, req, customPercent, keyPtr)
		return txErr
	})
	if err != nil {
		if errors.Is(err, model.ErrDuplicateIdempotencyKey) && keyPtr != nil {
			// Lost the race to another request carrying the same key.
			if resp, replayErr := s.replay(ctx, idempotencyKey); resp != nil || replayErr != nil {
				return resp, replayErr
			}
		}
		if isBusinessError(err) {
			return nil, err
		}
		return nil, model.NewSaleError(model.ErrCodeInternal, "failed to create sale", err)
	}

	// Step 5: Background stock sync, never fails the sale
	s.enqueueStockSync(ctx, sale)

	log.Info().
		Int64("sale_id", sale.ID).
		Int64("user_id", userID).
		Str("total", sale.Total.String()).
		Str("active_promotion", string(sale.ActivePromotion)).
		Str("payment_method", string(sale.PaymentMethod)).
		Msg("sale created")

	return model.NewCreateSaleResponse(sale, false), nil
}

// finalize runs inside the transaction. Any error rolls everything back.
func (s *saleService) finalize(ctx context.Context, tx pgx.Tx, userID int64, req *model.CreateSaleRequest, customPercent decimal.Decimal, key *string) (*model.Sale, error) {
	// a. Lock the products, ascending id
	required := requiredQuantities(req.Items)
	ids := make([]int64, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := s.productRepo.LockForSaleWithTx(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	// b. Availability and stock
	for _, id := range ids {
		p := products[id]
		if !p.Sellable() {
			return nil, model.NewProductUnavailableError(id, productLabel(p, id, req.Items))
		}
		if p.Stock < required[id] {
			return nil, model.NewStockInsufficientError(p.Name, required[id], p.Stock)
		}
	}

	// c. Re-price from the catalog
	lines := make([]promoModel.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		p := products[item.ProductID]
		if !item.UnitPrice.Equal(p.Price) {
			log.Warn().
				Int64("product_id", p.ID).
				Str("client_price", item.UnitPrice.String()).
				Str("catalog_price", p.Price.String()).
				Msg("client price differs from catalog, using catalog price")
		}
		lines = append(lines, promoModel.CartLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.Price,
		})
	}

	// d. Evaluate
	result, err := s.evaluator.Evaluate(ctx, lines, customPercent)
	if err != nil {
		return nil, fmt.Errorf("evaluate cart: %w", err)
	}

	// e. Payment
	sale := model.NewSale(userID, req, result)
	sale.IdempotencyKey = key
	if req.PaymentMethod == model.PaymentMethodCash {
		cash := *req.CashReceived
		if cash.LessThan(result.Total) {
			return nil, model.NewSaleError(model.ErrCodeInsufficientCash, "cash received is less than the total", model.ErrInsufficientCash).
				WithDetails(map[string]interface{}{
					"total":         result.Total,
					"cash_received": cash,
				})
		}
		change := cash.Sub(result.Total)
		sale.CashReceived = &cash
		sale.ChangeAmount = &change
	}

	// f. Persist header, lines, stock
	if err := s.saleRepo.InsertSaleWithTx(ctx, tx, sale); err != nil {
		return nil, err
	}

	sale.Lines = model.LinesFromResult(sale.ID, result)
	if err := s.saleRepo.InsertSaleLinesWithTx(ctx, tx, sale.Lines); err != nil {
		return nil, fmt.Errorf("insert sale lines: %w", err)
	}

	for _, id := range ids {
		if err := s.productRepo.DecrementStockWithTx(ctx, tx, id, required[id]); err != nil {
			if errors.Is(err, productModel.ErrInsufficientStock) {
				return nil, model.NewStockInsufficientError(products[id].Name, required[id], products[id].Stock)
			}
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
	}

	return sale, nil
}

func (s *saleService) replay(ctx context.Context, key string) (*model.CreateSaleResponse, error) {
	existing, err := s.saleRepo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrSaleNotFound) {
			return nil, nil
		}
		return nil, model.NewSaleError(model.ErrCodeInternal, "failed to look up idempotency key", err)
	}

	log.Info().Int64("sale_id", existing.ID).Str("idempotency_key", key).Msg("sale replayed")
	return model.NewCreateSaleResponse(existing, true), nil
}

func (s *saleService) enqueueStockSync(ctx context.Context, sale *model.Sale) {
	if s.enqueuer == nil {
		return
	}

	productIDs := make([]int64, 0, len(sale.Lines))
	seen := make(map[int64]struct{}, len(sale.Lines))
	for _, l := range sale.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		productIDs = append(productIDs, l.ProductID)
	}

	payload, err := json.Marshal(shared.StockSyncPayload{SaleID: sale.ID, ProductIDs: productIDs})
	if err != nil {
		log.Error().Err(err).Int64("sale_id", sale.ID).Msg("failed to encode stock sync payload")
		return
	}

	task := asynq.NewTask(shared.TypeSaleStockSync, payload)
	if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue(shared.QueueDefault), asynq.MaxRetry(5)); err != nil {
		log.Error().Err(err).Int64("sale_id", sale.ID).Msg("failed to enqueue stock sync after sale")
	}
}

// =====================================================
// GET SALE
// =====================================================

func (s *saleService) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSaleNotFound) {
			return nil, model.NewSaleError(model.ErrCodeSaleNotFound, "sale not found", err)
		}
		return nil, model.NewSaleError(model.ErrCodeInternal, "failed to load sale", err)
	}
	return sale, nil
}

// =====================================================
// HELPERS
// =====================================================

// requiredQuantities sums quantities per product across all lines.
func requiredQuantities(items []promoModel.CartLine) map[int64]int {
	required := make(map[int64]int, len(items))
	for _, item := range items {
		required[item.ProductID] += item.Quantity
	}
	return required
}

func productLabel(p *productModel.Product, id int64, items []promoModel.CartLine) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	for _, item := range items {
		if item.ProductID == id && item.ProductName != "" {
			return item.ProductName
		}
	}
	return fmt.Sprintf("product %d", id)
}

func isBusinessError(err error) bool {
	var saleErr *model.SaleError
	return errors.As(err, &saleErr) && saleErr.Code != model.ErrCodeInternal
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	productRepo "pos-backend/internal/domains/product/repository"
	promoModel "pos-backend/internal/domains/promotion/model"
	promoRepo "pos-backend/internal/domains/promotion/repository"
	promoService "pos-backend/internal/domains/promotion/service"
	"pos-backend/internal/domains/sale/model"
	saleRepo "pos-backend/internal/domains/sale/repository"
	"pos-backend/internal/domains/sale/service"
	"pos-backend/internal/infrastructure/cache"
	"pos-backend/internal/infrastructure/database"
)

const seedCatalog = `
	INSERT INTO products (id, name, price, category, stock) VALUES
		(1, 'Gelatina', 2000, 'Postres', 10),
		(2, 'Arroz', 5000, 'Granos', 1);
	INSERT INTO promotions (id, name, type) VALUES ('gel-2x1', 'Gelatina 2x1', '2x1');
	INSERT INTO product_promotions (product_id, promotion_id) VALUES (1, 'gel-2x1');
`

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("pos"),
		postgres.WithUsername("pos"),
		postgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dsn))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, seedCatalog)
	require.NoError(t, err)
	return pool
}

func newPostgresSaleService(t *testing.T, pool *pgxpool.Pool) service.SaleService {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	evaluator := promoService.NewEvaluator(
		promoRepo.NewPostgresRepository(pool),
		promoService.NewDiscountCalculator(promoService.DefaultCustomDiscountMinSubtotal),
	)
	return service.NewSaleService(
		saleRepo.NewPostgresRepository(pool),
		productRepo.NewPostgresRepository(pool),
		evaluator,
		service.NewIdempotencyGuard(cache.NewRedisCache(client), 30*time.Second),
		nil,
		service.Config{TxTimeout: 5 * time.Second},
	)
}

func stockOf(t *testing.T, pool *pgxpool.Pool, id int64) int {
	t.Helper()
	var stock int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}

func TestPostgres_CheckoutAndReplay(t *testing.T) {
	pool := setupPostgres(t)
	svc := newPostgresSaleService(t, pool)
	ctx := context.Background()

	cash := decimal.NewFromInt(5000)
	req := &model.CreateSaleRequest{
		PaymentMethod: model.PaymentMethodCash,
		CashReceived:  &cash,
		Items: []promoModel.CartLine{
			{ProductID: 1, ProductName: "Gelatina", Quantity: 3, UnitPrice: decimal.NewFromInt(2000)},
		},
	}
	key := uuid.NewString()

	resp, err := svc.CreateSale(ctx, 7, req, decimal.Zero, key)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(4780).Equal(resp.Total))
	require.NotNil(t, resp.ChangeAmount)
	assert.True(t, decimal.NewFromInt(220).Equal(*resp.ChangeAmount))
	assert.Equal(t, 7, stockOf(t, pool, 1))

	sale, err := svc.GetSale(ctx, resp.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Lines, 1)
	assert.True(t, decimal.NewFromInt(2000).Equal(sale.Lines[0].Discount))
	require.NotNil(t, sale.Lines[0].PromotionApplied)
	assert.Equal(t, "Gelatina 2x1", *sale.Lines[0].PromotionApplied)

	again, err := svc.CreateSale(ctx, 7, req, decimal.Zero, key)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, resp.SaleID, again.SaleID)
	assert.Equal(t, 7, stockOf(t, pool, 1))
}

func TestPostgres_ConcurrentLastUnit(t *testing.T) {
	pool := setupPostgres(t)
	svc := newPostgresSaleService(t, pool)

	const registers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		codes     []string
	)
	for i := 0; i < registers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := &model.CreateSaleRequest{
				PaymentMethod: model.PaymentMethodCard,
				Items:         []promoModel.CartLine{{ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(5000)}},
			}
			_, err := svc.CreateSale(context.Background(), 7, req, decimal.Zero, uuid.NewString())

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var saleErr *model.SaleError
			if errors.As(err, &saleErr) {
				codes = append(codes, saleErr.Code)
			} else {
				codes = append(codes, err.Error())
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	require.Len(t, codes, registers-1)
	for _, code := range codes {
		assert.Equal(t, model.ErrCodeStockInsufficient, code)
	}
	assert.Equal(t, 0, stockOf(t, pool, 2))
}

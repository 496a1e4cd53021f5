package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/domains/report/model"
	"pos-backend/internal/infrastructure/cache"
	"pos-backend/pkg/metrics"
)

type fakeRepo struct {
	summaryCalls atomic.Int32
	dailyLimit   atomic.Int32
	topLimit     atomic.Int32

	started chan struct{}
	release chan struct{}
	failOn  string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{}
}

func (f *fakeRepo) fail(name string) error {
	if f.failOn == name {
		return errors.New(name + ": connection reset")
	}
	return nil
}

func (f *fakeRepo) Summary(ctx context.Context, _ model.DateRange) (*model.SalesSummary, error) {
	if f.summaryCalls.Add(1) == 1 && f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.fail("summary"); err != nil {
		return nil, err
	}
	return &model.SalesSummary{
		TotalSales:    3,
		TotalRevenue:  decimal.NewFromInt(21950),
		AvgTicket:     decimal.RequireFromString("7316.67"),
		TotalProducts: 9,
	}, nil
}

func (f *fakeRepo) ByPaymentMethod(context.Context, model.DateRange) ([]model.PaymentMethodTotal, error) {
	return []model.PaymentMethodTotal{
		{PaymentMethod: "card", Count: 1, Total: decimal.NewFromInt(14420)},
		{PaymentMethod: "cash", Count: 2, Total: decimal.NewFromInt(7530)},
	}, f.fail("payment")
}

func (f *fakeRepo) Daily(_ context.Context, _ model.DateRange, limit int) ([]model.DailySales, error) {
	f.dailyLimit.Store(int32(limit))
	return []model.DailySales{{Date: "2026-03-02", Count: 3, Total: decimal.NewFromInt(21950)}}, f.fail("daily")
}

func (f *fakeRepo) Hourly(context.Context, model.DateRange) ([]model.HourlySales, error) {
	return []model.HourlySales{{Hour: 10, Count: 2, Total: decimal.NewFromInt(19200)}, {Hour: 17, Count: 1, Total: decimal.NewFromInt(2750)}}, f.fail("hourly")
}

func (f *fakeRepo) TopProducts(_ context.Context, _ model.DateRange, limit int) ([]model.ProductSales, error) {
	f.topLimit.Store(int32(limit))
	return []model.ProductSales{{ProductID: 1, ProductName: "Gelatina", QuantitySold: 6, TotalRevenue: decimal.NewFromInt(12000)}}, f.fail("products")
}

func (f *fakeRepo) ByCashier(context.Context, model.DateRange) ([]model.CashierSales, error) {
	return []model.CashierSales{{UserID: 7, UserName: "Ana", SaleCount: 3, TotalSales: decimal.NewFromInt(21950)}}, f.fail("cashier")
}

func newCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client)
}

func TestGetSalesReport_CombinesBreakdowns(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReportService(repo, nil, Config{TopProducts: 5})

	dr, err := model.ParseDateRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)

	report, err := svc.GetSalesReport(context.Background(), dr)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalSales)
	assert.True(t, decimal.NewFromInt(21950).Equal(report.Summary.TotalRevenue))
	assert.Len(t, report.ByPaymentMethod, 2)
	assert.Len(t, report.Hourly, 2)
	assert.Equal(t, "Ana", report.ByCashier[0].UserName)
	assert.Equal(t, dr.From, report.From)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.Equal(t, int32(0), repo.dailyLimit.Load())
	assert.Equal(t, int32(5), repo.topLimit.Load())
}

func TestGetSalesReport_OpenRangeLimitsDays(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReportService(repo, nil, Config{TopProducts: 10})

	_, err := svc.GetSalesReport(context.Background(), model.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int32(openRangeDailyLimit), repo.dailyLimit.Load())
}

func TestGetSalesReport_QueryFailure(t *testing.T) {
	for _, name := range []string{"summary", "payment", "daily", "hourly", "products", "cashier"} {
		t.Run(name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.failOn = name
			svc := NewReportService(repo, nil, Config{TopProducts: 10})

			_, err := svc.GetSalesReport(context.Background(), model.DateRange{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestGetSalesReport_ServedFromCache(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReportService(repo, newCache(t), Config{CacheTTL: time.Minute, TopProducts: 10})
	ctx := context.Background()

	hitsBefore := testutil.ToFloat64(metrics.ReportRequests.WithLabelValues(metrics.ReportFromCache))

	first, err := svc.GetSalesReport(ctx, model.DateRange{})
	require.NoError(t, err)
	second, err := svc.GetSalesReport(ctx, model.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), repo.summaryCalls.Load())
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(metrics.ReportRequests.WithLabelValues(metrics.ReportFromCache)))
	assert.True(t, first.Summary.AvgTicket.Equal(second.Summary.AvgTicket))
	assert.Equal(t, first.Daily[0].Date, second.Daily[0].Date)

	other, err := model.ParseDateRange("2026-03-01", "2026-03-01")
	require.NoError(t, err)
	_, err = svc.GetSalesReport(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.summaryCalls.Load())
}

func TestGetSalesReport_ConcurrentCallersShareOneBuild(t *testing.T) {
	repo := newFakeRepo()
	repo.started = make(chan struct{})
	repo.release = make(chan struct{})
	svc := NewReportService(repo, nil, Config{TopProducts: 10})

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	call := func() {
		defer wg.Done()
		_, err := svc.GetSalesReport(context.Background(), model.DateRange{})
		errs <- err
	}

	wg.Add(1)
	go call()
	<-repo.started

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go call()
	}
	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), repo.summaryCalls.Load())
}

func TestGetSalesReport_CancelledCallerDoesNotFailSharedBuild(t *testing.T) {
	repo := newFakeRepo()
	repo.started = make(chan struct{})
	repo.release = make(chan struct{})
	svc := NewReportService(repo, nil, Config{TopProducts: 10})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetSalesReport(firstCtx, model.DateRange{})
		firstErr <- err
	}()
	<-repo.started

	secondErr := make(chan error, 1)
	go func() {
		report, err := svc.GetSalesReport(context.Background(), model.DateRange{})
		if err == nil && report == nil {
			err = errors.New("report without summary")
		}
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(repo.release)
	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), repo.summaryCalls.Load())
}

func TestExportSalesReport(t *testing.T) {
	svc := NewReportService(newFakeRepo(), nil, Config{TopProducts: 10})

	dr, err := model.ParseDateRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)

	f, err := svc.ExportSalesReport(context.Background(), dr)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetPaymentMethods, SheetDaily, SheetHourly, SheetProducts, SheetCashiers}, f.GetSheetList())

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"From", "2026-03-01"}, rows[1])
	assert.Equal(t, []string{"To", "2026-03-31"}, rows[2])
	assert.Equal(t, []string{"Sales", "3"}, rows[3])

	rows, err = f.GetRows(SheetPaymentMethods)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"card", "1", "14420"}, rows[1])

	rows, err = f.GetRows(SheetProducts)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "Gelatina", "6", "12000"}, rows[1])

	styleID, err := f.GetCellStyle(SheetCashiers, "D1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestExportSalesReport_PropagatesQueryError(t *testing.T) {
	repo := newFakeRepo()
	repo.failOn = "daily"
	svc := NewReportService(repo, nil, Config{TopProducts: 10})

	f, err := svc.ExportSalesReport(context.Background(), model.DateRange{})
	require.Error(t, err)
	assert.Nil(t, f)
}

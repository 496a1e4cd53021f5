package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"pos-backend/internal/domains/report/model"
	"pos-backend/internal/domains/report/repository"
	"pos-backend/pkg/cache"
	"pos-backend/pkg/metrics"
)

// Without a range the daily breakdown only covers the latest days.
const openRangeDailyLimit = 30

const cacheKeyPrefix = "report:sales:"

// buildTimeout bounds a shared build, which outlives the request that
// started it.
const buildTimeout = 30 * time.Second

type Config struct {
	CacheTTL    time.Duration
	TopProducts int
}

type reportService struct {
	repo  repository.Repository
	cache cache.Cache
	cfg   Config
	sfg   singleflight.Group
}

// NewReportService builds the service. A nil cache or a zero CacheTTL
// disables caching.
func NewReportService(repo repository.Repository, c cache.Cache, cfg Config) Service {
	return &reportService{
		repo:  repo,
		cache: c,
		cfg:   cfg,
	}
}

func (s *reportService) GetSalesReport(ctx context.Context, r model.DateRange) (*model.SalesReport, error) {
	key := cacheKeyPrefix + r.Key()

	if report, ok := s.fromCache(ctx, key); ok {
		metrics.ReportRequests.WithLabelValues(metrics.ReportFromCache).Inc()
		return report, nil
	}

	// Concurrent dashboards asking for the same range share one build. It
	// is detached from the caller so one closed tab does not fail the rest.
	ch := s.sfg.DoChan(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()

		report, err := s.build(buildCtx, r)
		if err != nil {
			return nil, err
		}
		s.toCache(buildCtx, key, report)
		return report, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		metrics.ReportRequests.WithLabelValues(metrics.ReportFromDatabase).Inc()
		return res.Val.(*model.SalesReport), nil
	}
}

// build runs the aggregate queries in parallel. The first failure cancels
// the others.
func (s *reportService) build(ctx context.Context, r model.DateRange) (*model.SalesReport, error) {
	report := &model.SalesReport{From: r.From, To: r.To}

	dailyLimit := 0
	if r.IsOpen() {
		dailyLimit = openRangeDailyLimit
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.repo.Summary(gctx, r)
		if err != nil {
			return err
		}
		report.Summary = *summary
		return nil
	})
	g.Go(func() (err error) {
		report.ByPaymentMethod, err = s.repo.ByPaymentMethod(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		report.Daily, err = s.repo.Daily(gctx, r, dailyLimit)
		return err
	})
	g.Go(func() (err error) {
		report.Hourly, err = s.repo.Hourly(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		report.TopProducts, err = s.repo.TopProducts(gctx, r, s.cfg.TopProducts)
		return err
	})
	g.Go(func() (err error) {
		report.ByCashier, err = s.repo.ByCashier(gctx, r)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build sales report: %w", err)
	}

	report.GeneratedAt = time.Now().UTC()
	return report, nil
}

func (s *reportService) fromCache(ctx context.Context, key string) (*model.SalesReport, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}

	var report model.SalesReport
	found, err := s.cache.Get(ctx, key, &report)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read cached report")
		return nil, false
	}
	return &report, found
}

func (s *reportService) toCache(ctx context.Context, key string, report *model.SalesReport) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, report, s.cfg.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache report")
	}
}

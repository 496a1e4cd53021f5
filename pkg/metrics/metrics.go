package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pos",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	PromotionEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "promotion_evaluations_total",
		Help:      "Cart evaluations by winning promotion.",
	}, []string{"active_promotion"})

	PromotionEvaluationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "promotion_evaluation_errors_total",
		Help:      "Evaluations that failed on the catalog lookup.",
	})

	Sales = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "sales_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})

	ReportRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "report_requests_total",
		Help:      "Sales report requests by source.",
	}, []string{"source"})

	LowStockAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "low_stock_alerts_total",
		Help:      "Products that crossed the low-stock threshold after a sale.",
	})
)

// Report sources
const (
	ReportFromCache    = "cache"
	ReportFromDatabase = "database"
)

// Sale outcomes
const (
	SaleCreated  = "created"
	SaleReplayed = "replayed"
	SaleRejected = "rejected"
	SaleFailed   = "failed"
)

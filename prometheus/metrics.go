package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pantry-service/pkg/config"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Supply catalog metrics
	SupplyOperationsCounter prometheus.CounterVec

	// Cost propagation metrics
	CostRecomputationsCounter prometheus.Counter

	// Stock metrics
	SupplyStockGauge    prometheus.GaugeVec
	StockMovementsTotal prometheus.CounterVec

	// Counting metrics
	CountDiscrepanciesCounter prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Supply catalog metrics
	SupplyOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_supply_operations_total",
			Help: "Total number of supply catalog operations",
		},
		[]string{"operation"},
	)

	// Cost propagation metrics
	CostRecomputationsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_cost_recomputations_total",
			Help: "Total number of unit cost recomputations",
		},
	)

	// Stock metrics
	SupplyStockGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_supply_stock",
			Help: "Current stock level per supply in its base unit",
		},
		[]string{"supply_id", "supply_name", "unit"},
	)

	StockMovementsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of stock movements recorded in the ledger",
		},
		[]string{"kind"},
	)

	// Counting metrics
	CountDiscrepanciesCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_count_discrepancies_total",
			Help: "Total number of count batches soft-blocked by a discrepancy warning",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordSupplyOperation increments the counter for supply catalog operations
func RecordSupplyOperation(operation string) {
	SupplyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStockMovement increments the movement counter and updates the stock gauge
func RecordStockMovement(kind string, supplyID string, supplyName string, unit string, stock float64) {
	StockMovementsTotal.WithLabelValues(kind).Inc()
	SupplyStockGauge.WithLabelValues(supplyID, supplyName, unit).Set(stock)
}

package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// FulfillmentMetrics tracks add-to-cart runs, vendor fills and browser usage.
type FulfillmentMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	ordersTotal       *Counter
	unitsFilledTotal  *Counter
	outOfStockTotal   *Counter
	vendorErrorsTotal *Counter
	orderDuration     *Histogram

	openPages *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	pageProvider PageStatsProvider
}

// PageStatsProvider reports how many browser pages are open.
type PageStatsProvider interface {
	OpenPages() int
}

// FulfillmentMetricsConfig holds configuration for fulfillment metrics.
type FulfillmentMetricsConfig struct {
	Meter        metric.Meter
	Logger       *zap.Logger
	PageProvider PageStatsProvider
}

// OrderDurationBuckets covers a single order's vendor run (seconds).
var OrderDurationBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600}

// NewFulfillmentMetrics creates a new FulfillmentMetrics instance.
func NewFulfillmentMetrics(cfg FulfillmentMetricsConfig) (*FulfillmentMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fm := &FulfillmentMetrics{
		meter:        cfg.Meter,
		logger:       logger,
		stopChan:     make(chan struct{}),
		pageProvider: cfg.PageProvider,
	}

	var err error
	fm.ordersTotal, err = NewCounter(cfg.Meter,
		"orderbridge_cart_orders_total",
		"Orders processed by add-to-cart, by final status",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	fm.unitsFilledTotal, err = NewCounter(cfg.Meter,
		"orderbridge_units_filled_total",
		"Units written into vendor stock cells",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	fm.outOfStockTotal, err = NewCounter(cfg.Meter,
		"orderbridge_out_of_stock_sizes_total",
		"Requested sizes that could not be fully placed",
		"{sizes}",
	)
	if err != nil {
		return nil, err
	}

	fm.vendorErrorsTotal, err = NewCounter(cfg.Meter,
		"orderbridge_vendor_errors_total",
		"Vendor site operations that failed",
		"{errors}",
	)
	if err != nil {
		return nil, err
	}

	fm.orderDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "orderbridge_order_duration_seconds",
		Description: "Time spent placing one order with its vendors",
		Unit:        "s",
		Boundaries:  OrderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	fm.openPages, err = NewGauge(cfg.Meter,
		"orderbridge_browser_open_pages",
		"Browser pages currently open",
		"{pages}",
	)
	if err != nil {
		return nil, err
	}

	return fm, nil
}

// RecordOrder records the final status of one order and how long it took.
func (fm *FulfillmentMetrics) RecordOrder(ctx context.Context, status string, d time.Duration) {
	fm.ordersTotal.Inc(ctx, AttrOrderStatus.String(status))
	fm.orderDuration.RecordDuration(ctx, d, AttrOrderStatus.String(status))
}

// RecordFill records units written for a vendor.
func (fm *FulfillmentMetrics) RecordFill(ctx context.Context, vendor string, units int) {
	if units <= 0 {
		return
	}
	fm.unitsFilledTotal.Add(ctx, int64(units), AttrVendor.String(vendor))
}

// RecordOutOfStock records sizes left short for a vendor.
func (fm *FulfillmentMetrics) RecordOutOfStock(ctx context.Context, vendor string, sizes int) {
	if sizes <= 0 {
		return
	}
	fm.outOfStockTotal.Add(ctx, int64(sizes), AttrVendor.String(vendor))
}

// RecordVendorError records a failed vendor operation.
func (fm *FulfillmentMetrics) RecordVendorError(ctx context.Context, vendor, operation string) {
	fm.vendorErrorsTotal.Inc(ctx,
		AttrVendor.String(vendor),
		AttrOperation.String(operation),
	)
}

// RecordOpenPages records the current number of open browser pages.
func (fm *FulfillmentMetrics) RecordOpenPages(ctx context.Context, n int) {
	fm.openPages.Record(ctx, int64(n))
}

// StartPeriodicCollection samples open pages every interval (default: 30 seconds).
// This is non-blocking - use Stop() to stop collection.
func (fm *FulfillmentMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	fm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 30 * time.Second
		}
		go fm.runPeriodicCollection(ctx, interval)
	})
}

func (fm *FulfillmentMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fm.collectPageStats(ctx)

	for {
		select {
		case <-fm.stopChan:
			fm.logger.Info("Stopping periodic fulfillment metrics collection")
			return
		case <-ctx.Done():
			fm.logger.Info("Context cancelled, stopping periodic fulfillment metrics collection")
			return
		case <-ticker.C:
			fm.collectPageStats(ctx)
		}
	}
}

func (fm *FulfillmentMetrics) collectPageStats(ctx context.Context) {
	if fm.pageProvider == nil {
		fm.logger.Debug("No page provider configured, skipping page metrics collection")
		return
	}
	fm.RecordOpenPages(ctx, fm.pageProvider.OpenPages())
}

// Stop stops the periodic collection.
func (fm *FulfillmentMetrics) Stop() {
	fm.stopOnce.Do(func() {
		close(fm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewFulfillmentMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// Fulfillment attribute keys.
var (
	AttrOrderStatus = attribute.Key("order_status")
	AttrVendor      = attribute.Key("vendor")
	AttrOperation   = attribute.Key("operation")
)

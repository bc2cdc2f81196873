package fulfillment

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultCartConcurrency bounds how many orders are placed at once.
const DefaultCartConcurrency = 3

// CartService places sales orders into vendor carts.
type CartService struct {
	pages       PageProvider
	vendors     VendorRegistry
	concurrency int64
	logger      *zap.Logger
	metrics     *telemetry.FulfillmentMetrics
}

// NewCartService creates a new CartService
func NewCartService(pages PageProvider, vendors VendorRegistry, concurrency int, logger *zap.Logger) *CartService {
	if concurrency <= 0 {
		concurrency = DefaultCartConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		pages:       pages,
		vendors:     vendors,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// SetMetrics sets the fulfillment metrics collector
func (s *CartService) SetMetrics(m *telemetry.FulfillmentMetrics) {
	s.metrics = m
}

// AddToCart places every order and returns one result per order, in input order.
// A failing order never stops its siblings.
func (s *CartService) AddToCart(ctx context.Context, orders []fulfillment.Order) []fulfillment.OrderResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_to_cart",
		telemetry.WithAttribute("orders_count", len(orders)),
	)
	defer span.End()

	results := make([]fulfillment.OrderResult, len(orders))
	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup

	for i := range orders {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(orders); j++ {
				results[j] = failedResult(orders[j], fulfillment.OrderDetails{}, fmt.Errorf("not started: %w", err))
			}
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = s.placeOrder(ctx, orders[i])
		}(i)
	}

	wg.Wait()
	return results
}

// orderRun accumulates per-item facts while an order is placed.
type orderRun struct {
	details fulfillment.OrderDetails
}

func (r *orderRun) addOutOfStock(part string, sizes []string) {
	for _, size := range sizes {
		if !slices.Contains(r.details.OutOfStock[part], size) {
			r.details.OutOfStock[part] = append(r.details.OutOfStock[part], size)
		}
	}
}

func (s *CartService) placeOrder(ctx context.Context, order fulfillment.Order) (result fulfillment.OrderResult) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "place_order",
		telemetry.WithAttribute(telemetry.SpanAttrOrderID, order.ID),
		telemetry.WithAttribute("items_count", len(order.Items)),
	)
	defer span.End()

	log := s.logger.With(zap.Int64("order_id", order.ID), zap.String("customer", order.Customer))
	run := &orderRun{details: fulfillment.OrderDetails{OutOfStock: make(map[string][]string)}}

	defer func() {
		if r := recover(); r != nil {
			log.Error("Order processing panicked", zap.Any("panic", r), zap.Stack("stack"))
			result = failedResult(order, run.details, fmt.Errorf("panic: %v", r))
		}
		if result.Status == fulfillment.OrderStatusFailed {
			telemetry.RecordError(span, fmt.Errorf("%s", result.Message))
		}
		telemetry.SetAttribute(span, telemetry.SpanAttrOrderStatus, result.Status.String())
		if s.metrics != nil {
			s.metrics.RecordOrder(ctx, result.Status.String(), time.Since(start))
		}
		log.Info("Order processed",
			zap.String("status", result.Status.String()),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	pageCtx, closePage, err := s.pages.NewPage(ctx)
	if err != nil {
		return failedResult(order, run.details, fmt.Errorf("open browser page: %w", err))
	}
	defer closePage()

	groups := fulfillment.GroupByStore(fulfillment.SortItemsByStore(order.Items))
	for _, group := range groups {
		processor, ok := s.vendors.Lookup(group.Store)
		if !ok {
			for _, item := range group.Items {
				run.details.SkippedCustom = append(run.details.SkippedCustom, item.Tag())
			}
			continue
		}

		if err := processor.Home(pageCtx); err != nil {
			s.vendorError(ctx, processor.Name(), "home")
			return failedResult(order, run.details, fmt.Errorf("%s: open home page: %w", processor.Name(), err))
		}

		for _, item := range group.Items {
			var err error
			telemetry.WithProfilingLabels(pageCtx, telemetry.VendorLabels("add_to_cart", processor.Name()), func(ctx context.Context) {
				err = s.placeItem(ctx, processor, item, run, log)
			})
			if err != nil {
				return failedResult(order, run.details, fmt.Errorf("%s %s (%s): %w", processor.Name(), item.Part, item.Color, err))
			}
		}
	}

	c := fulfillment.Classify(run.details.Processed, run.details.OutOfStock, run.details.SkippedCustom, run.details.AnyAddedOverall)
	return fulfillment.OrderResult{
		OrderID:  order.ID,
		URL:      order.URL,
		Customer: order.Customer,
		Status:   c.Status,
		Message:  c.Message,
		Details:  run.details,
	}
}

func (s *CartService) placeItem(ctx context.Context, processor fulfillment.VendorProcessor, item fulfillment.LineItem, run *orderRun, log *zap.Logger) error {
	vendor := processor.Name()
	log = log.With(zap.String("vendor", vendor), zap.String("part", item.Part), zap.String("color", item.Color))

	session, err := processor.Open(ctx, item)
	if err != nil {
		s.vendorError(ctx, vendor, "open")
		return err
	}
	run.details.Processed = append(run.details.Processed, item.Tag())

	filler := fulfillment.CellFillerFunc(func(ctx context.Context, cell fulfillment.StockCell, quantity int) error {
		if err := session.Fill(ctx, cell, quantity); err != nil {
			log.Warn("Failed to fill stock cell",
				zap.String("warehouse", cell.WarehouseID),
				zap.String("size", cell.SizeKey),
				zap.Int("quantity", quantity),
				zap.Error(err),
			)
			s.vendorError(ctx, vendor, "fill")
			return err
		}
		return nil
	})

	outcome := fulfillment.Allocate(ctx, item.Sizes, session.Pool(), filler)
	run.addOutOfStock(item.Part, outcome.OutOfStockSizes)
	if s.metrics != nil {
		s.metrics.RecordFill(ctx, vendor, outcome.FilledUnits())
		s.metrics.RecordOutOfStock(ctx, vendor, len(outcome.OutOfStockSizes))
	}

	if !outcome.AnyAdded {
		log.Info("Nothing allocated for item", zap.Strings("out_of_stock", outcome.OutOfStockSizes))
		return nil
	}

	if err := session.Commit(ctx); err != nil {
		s.vendorError(ctx, vendor, "commit")
		return fmt.Errorf("%w: %v", fulfillment.ErrCommitFailed, err)
	}
	run.details.AnyAddedOverall = true

	log.Info("Item added to cart",
		zap.Int("units", outcome.FilledUnits()),
		zap.Strings("out_of_stock", outcome.OutOfStockSizes),
	)
	return nil
}

func (s *CartService) vendorError(ctx context.Context, vendor, op string) {
	if s.metrics != nil {
		s.metrics.RecordVendorError(ctx, vendor, op)
	}
}

func failedResult(order fulfillment.Order, details fulfillment.OrderDetails, err error) fulfillment.OrderResult {
	return fulfillment.OrderResult{
		OrderID:  order.ID,
		URL:      order.URL,
		Customer: order.Customer,
		Status:   fulfillment.OrderStatusFailed,
		Message:  "Order processing failed: " + err.Error(),
		Details:  details,
	}
}

package fulfillment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// IntakeConfig bounds how sales-order detail pages are read.
type IntakeConfig struct {
	// Concurrency is the number of detail pages open at once (default: 8)
	Concurrency int
	// StartInterval spaces out detail page starts (default: 100ms)
	StartInterval time.Duration
	// Attempts is how often a detail page is re-read while it shows no items (default: 4)
	Attempts int
}

// DefaultIntakeConfig returns the default intake configuration
func DefaultIntakeConfig() IntakeConfig {
	return IntakeConfig{
		Concurrency:   8,
		StartInterval: 100 * time.Millisecond,
		Attempts:      4,
	}
}

// IntakeService turns the ShopVox "to order" view into orders.
type IntakeService struct {
	board  OrderBoard
	rows   fulfillment.RowSource
	pages  PageProvider
	config IntakeConfig
	logger *zap.Logger
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(board OrderBoard, rows fulfillment.RowSource, pages PageProvider, cfg IntakeConfig, logger *zap.Logger) *IntakeService {
	def := DefaultIntakeConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.StartInterval <= 0 {
		cfg.StartInterval = def.StartInterval
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = def.Attempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{
		board:  board,
		rows:   rows,
		pages:  pages,
		config: cfg,
		logger: logger,
	}
}

// ToOrder lists the orders waiting to be placed, with their merged line items.
// An empty slice means nothing is waiting.
func (s *IntakeService) ToOrder(ctx context.Context) ([]fulfillment.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "intake", "to_order")
	defer span.End()

	refs, err := s.listRefs(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, "orders_count", len(refs))

	orders := make([]fulfillment.Order, len(refs))
	sem := semaphore.NewWeighted(int64(s.config.Concurrency))
	limiter := rate.NewLimiter(rate.Every(s.config.StartInterval), 1)
	var wg sync.WaitGroup

	for i, ref := range refs {
		if err := limiter.Wait(ctx); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("read sales orders: %w", err)
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, fmt.Errorf("read sales orders: %w", err)
		}

		wg.Add(1)
		go func(i int, ref fulfillment.OrderRef) {
			defer wg.Done()
			defer sem.Release(1)
			orders[i] = s.readOrder(ctx, ref)
		}(i, ref)
	}

	wg.Wait()
	return orders, nil
}

func (s *IntakeService) listRefs(ctx context.Context) ([]fulfillment.OrderRef, error) {
	pageCtx, closePage, err := s.pages.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser page: %w", err)
	}
	defer closePage()

	refs, err := s.board.ToOrder(pageCtx)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	return refs, nil
}

// readOrder never fails: a detail page that stays unreadable yields an order without items.
func (s *IntakeService) readOrder(ctx context.Context, ref fulfillment.OrderRef) fulfillment.Order {
	log := s.logger.With(zap.Int64("order_id", ref.ID))
	order := fulfillment.Order{
		ID:       ref.ID,
		URL:      ref.URL,
		Customer: ref.Customer,
		Items:    []fulfillment.LineItem{},
	}

	for attempt := 1; attempt <= s.config.Attempts; attempt++ {
		items, err := s.readItems(ctx, ref.URL)
		if err != nil {
			log.Warn("Failed to read sales order", zap.Int("attempt", attempt), zap.Error(err))
		}
		if len(items) > 0 {
			order.Items = items
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	if len(order.Items) == 0 {
		log.Warn("Sales order has no readable items", zap.String("url", ref.URL))
	}
	order.Total = fulfillment.SumTotals(order.Items)
	return order
}

func (s *IntakeService) readItems(ctx context.Context, orderURL string) ([]fulfillment.LineItem, error) {
	pageCtx, closePage, err := s.pages.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser page: %w", err)
	}
	defer closePage()

	rows, err := s.rows.Rows(pageCtx, orderURL)
	if err != nil {
		return nil, err
	}
	return fulfillment.MergeRows(rows), nil
}

package fulfillment

import (
	"context"
	"sync"

	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultTagConcurrency bounds how many sales orders are re-tagged at once.
const DefaultTagConcurrency = 4

// TagStatus is the outcome of re-tagging one sales order.
type TagStatus string

const (
	TagStatusUpdated TagStatus = "updated"
	TagStatusFailed  TagStatus = "failed"
)

// TagResult reports one sales order.
type TagResult struct {
	URL    string
	Status TagStatus
	Error  string
}

// TagService marks placed sales orders as ordered in ShopVox.
type TagService struct {
	board       OrderBoard
	pages       PageProvider
	concurrency int64
	logger      *zap.Logger
}

// NewTagService creates a new TagService
func NewTagService(board OrderBoard, pages PageProvider, concurrency int, logger *zap.Logger) *TagService {
	if concurrency <= 0 {
		concurrency = DefaultTagConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TagService{
		board:       board,
		pages:       pages,
		concurrency: int64(concurrency),
		logger:      logger,
	}
}

// MarkOrdered re-tags every URL and reports each one, in input order.
func (s *TagService) MarkOrdered(ctx context.Context, urls []string) []TagResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "tags", "mark_ordered",
		telemetry.WithAttribute("orders_count", len(urls)),
	)
	defer span.End()

	results := make([]TagResult, len(urls))
	sem := semaphore.NewWeighted(s.concurrency)
	var wg sync.WaitGroup

	for i, u := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < len(urls); j++ {
				results[j] = TagResult{URL: urls[j], Status: TagStatusFailed, Error: err.Error()}
			}
			break
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = s.markOne(ctx, u)
		}(i, u)
	}

	wg.Wait()
	return results
}

func (s *TagService) markOne(ctx context.Context, orderURL string) TagResult {
	result := TagResult{URL: orderURL, Status: TagStatusUpdated}

	err := func() error {
		pageCtx, closePage, err := s.pages.NewPage(ctx)
		if err != nil {
			return err
		}
		defer closePage()
		return s.board.MarkOrdered(pageCtx, orderURL)
	}()
	if err != nil {
		s.logger.Warn("Failed to mark sales order as ordered", zap.String("url", orderURL), zap.Error(err))
		result.Status = TagStatusFailed
		result.Error = err.Error()
	}
	return result
}

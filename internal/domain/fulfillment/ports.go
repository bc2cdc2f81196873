package fulfillment

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound   = errors.New("fulfillment: product not found")
	ErrColorNotFound     = errors.New("fulfillment: color option not found")
	ErrStockGridNotFound = errors.New("fulfillment: stock grid not found")
	ErrCommitFailed      = errors.New("fulfillment: commit failed")
)

// RowSource reads the raw rows of one sales order.
// Implementations must fully materialize lazily rendered lists before returning.
type RowSource interface {
	Rows(ctx context.Context, orderURL string) ([]RawRow, error)
}

// StockSession is a live, single-use view of one item's stock on a vendor site.
type StockSession interface {
	CellFiller
	// Pool returns the stock cells read when the session was opened.
	Pool() SizeStockPool
	// Commit finalizes the fills, e.g. by adding them to the cart.
	Commit(ctx context.Context) error
}

// VendorProcessor automates one vendor site.
type VendorProcessor interface {
	// Name is the normalized store name routed to this processor.
	Name() string
	// Home navigates to the vendor landing page before a run of items.
	Home(ctx context.Context) error
	// Open locates the item and reads its stock.
	Open(ctx context.Context, item LineItem) (StockSession, error)
}

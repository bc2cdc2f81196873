package fulfillment

import (
	"context"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
)

// PageProvider hands out exclusive browser pages.
// The returned context is bound to the page; cancel closes it.
type PageProvider interface {
	NewPage(ctx context.Context) (context.Context, context.CancelFunc, error)
}

// VendorRegistry resolves a normalized store name to its processor.
type VendorRegistry interface {
	Lookup(store string) (fulfillment.VendorProcessor, bool)
}

// OrderBoard is the sales-order side of ShopVox.
type OrderBoard interface {
	// ToOrder lists sales orders in the "to order" view. The list is fully loaded.
	ToOrder(ctx context.Context) ([]fulfillment.OrderRef, error)
	// MarkOrdered swaps the NOT ORDER YET tag for Ordered on one sales order.
	MarkOrdered(ctx context.Context, orderURL string) error
}

// JobReporter exports a jobs view to PDF.
type JobReporter interface {
	// ExportJobs returns ErrNoRows when the view is empty.
	ExportJobs(ctx context.Context, viewPath string) (*JobExport, error)
}

// JobExport is a downloaded report.
type JobExport struct {
	Filename string
	Data     []byte
}

// ReportArchive keeps a copy of exported reports.
type ReportArchive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ShopVoxAuthenticator signs the browser session into ShopVox.
type ShopVoxAuthenticator interface {
	SignIn(ctx context.Context) (*AuthResult, error)
	SubmitMFA(ctx context.Context, code string, trustDevice bool, timeout time.Duration) (*AuthResult, error)
}

// VendorAuthenticator signs the browser session into one vendor site.
type VendorAuthenticator interface {
	Name() string
	Login(ctx context.Context) error
}

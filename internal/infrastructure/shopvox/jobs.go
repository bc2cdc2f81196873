package shopvox

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	fulfillmentapp "github.com/orderbridge/backend/internal/application/fulfillment"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"go.uber.org/zap"
)

const (
	jobsSettle       = 10 * time.Second
	jobsRowCount     = "p.css-ifbqr7"
	jobsExportMenu   = "button.css-obi7n2"
	jobsExportButton = "button.css-xdirqf"
)

// the second entry of the export menu is the PDF export
const jobsPDFOptionJS = `(() => {
	const items = document.querySelectorAll('div.display-b.textDecoration-n.cursor-p.text-black');
	return items.length > 1 ? items[1] : null;
})()`

const jobsCaptionJS = `(() => {
	const el = document.querySelector('p.css-ifbqr7');
	return el ? (el.innerText || '') : '';
})()`

// Downloader captures a file started by browser actions.
type Downloader interface {
	Download(ctx context.Context, timeout time.Duration, trigger ...chromedp.Action) (*browser.Download, error)
}

// JobReporter exports ShopVox jobs views as PDF.
type JobReporter struct {
	cfg        Config
	downloader Downloader
}

// NewJobReporter creates a new JobReporter
func NewJobReporter(cfg Config, downloader Downloader) *JobReporter {
	return &JobReporter{cfg: cfg.withDefaults(), downloader: downloader}
}

// ExportJobs opens viewPath and downloads its PDF export.
// It returns fulfillmentapp.ErrNoRows when the view reports zero rows.
func (r *JobReporter) ExportJobs(ctx context.Context, viewPath string) (*fulfillmentapp.JobExport, error) {
	if err := browser.Run(ctx, r.cfg.NavTimeout, chromedp.Navigate(r.cfg.url(viewPath))); err != nil {
		return nil, fmt.Errorf("open jobs view: %w", err)
	}
	if err := browser.WaitTrue(ctx, r.cfg.NavTimeout, browser.VisibleExpr(browser.FindText("span", "Jobs"))); err != nil {
		return nil, fmt.Errorf("wait for jobs view: %w", err)
	}
	if err := browser.Pause(ctx, jobsSettle); err != nil {
		return nil, err
	}

	var caption string
	if err := browser.Evaluate(ctx, r.cfg.ActionTimeout, jobsCaptionJS, &caption); err != nil {
		return nil, fmt.Errorf("read jobs row count: %w", err)
	}
	if n, ok := parseRowCount(caption); ok && n == 0 {
		return nil, fulfillmentapp.ErrNoRows
	}

	if err := browser.Run(ctx, r.cfg.ActionTimeout,
		chromedp.WaitVisible(jobsExportMenu, chromedp.ByQuery),
		chromedp.Click(jobsExportMenu, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("open export menu: %w", err)
	}
	option, ok, err := browser.MarkFirst(ctx, r.cfg.ActionTimeout, "sv-export-pdf", jobsPDFOptionJS)
	if err != nil {
		return nil, fmt.Errorf("find PDF export: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("find PDF export: option missing")
	}
	if err := browser.Run(ctx, r.cfg.ActionTimeout, chromedp.Click(option, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("choose PDF export: %w", err)
	}

	dl, err := r.downloader.Download(ctx, r.cfg.NavTimeout,
		chromedp.Click(jobsExportButton, chromedp.ByQuery, chromedp.NodeVisible))
	if err != nil {
		return nil, fmt.Errorf("download jobs export: %w", err)
	}
	r.cfg.Logger.Info("Jobs exported",
		zap.String("view", viewPath),
		zap.String("filename", dl.Filename),
		zap.Int("bytes", len(dl.Data)))
	return &fulfillmentapp.JobExport{Filename: dl.Filename, Data: dl.Data}, nil
}

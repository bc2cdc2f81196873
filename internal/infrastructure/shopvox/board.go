package shopvox

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"go.uber.org/zap"
)

const (
	listContent = "div._contentWrapper_12otk_183"
	listRow     = "div._rowWrapper_12otk_135.position-r"

	listSettle      = 5 * time.Second
	listContentWait = 30 * time.Second
	listRowWait     = 15 * time.Second

	notOrderYet  = "NOT ORDER YET"
	orderedTag   = "Ordered"
	tagModal     = "#root-modals-dropdowns [role='dialog']"
	tagListbox   = "[role='listbox'][id^='react-select-']"
	tagPageLoad  = 2 * time.Second
	tagModalWait = 10 * time.Second
	tagSubmitted = 5 * time.Second
)

var listRowCountJS = fmt.Sprintf(`document.querySelectorAll(%q).length`, listContent+" "+listRow)

var listScrollJS = fmt.Sprintf(`(() => {
	const el = document.querySelector(%q);
	if (el) { el.scrollBy(0, el.scrollHeight); } else { window.scrollBy(0, document.body.scrollHeight); }
	return true;
})()`, listContent)

var listRowsJS = fmt.Sprintf(`(() => {
	const content = document.querySelector(%q);
	if (!content) return [];
	const text = el => el ? (el.innerText || '').trim() : '';
	return Array.from(content.querySelectorAll(%q)).map(row => {
		const link = row.querySelector("div[header='SO#'] a._primaryLink_18702_1[href^='/transactions/sales-orders/']");
		return {
			href: link ? (link.getAttribute('href') || '') : '',
			id: text(row.querySelector('a._primaryLink_18702_1.py4.px8')),
			customer: text(row.querySelector("div[header='Customer'] a[href^='/customers/'] div.ml4")),
		};
	});
})()`, listContent, listRow)

var (
	tagRemoveJS = fmt.Sprintf(`(() => {
	const modal = document.querySelector(%q);
	if (!modal) return null;
	const chip = Array.from(modal.querySelectorAll('.css-1rdcdvo-multiValue'))
		.find(e => (e.textContent || '').includes(%q));
	return (chip && chip.querySelector("[role='button'][aria-label^='Remove']"))
		|| modal.querySelector("[role='button'][aria-label^='Remove']");
})()`, tagModal, notOrderYet)

	tagIndicatorJS = fmt.Sprintf(`(() => {
	const modal = document.querySelector(%q);
	if (!modal) return null;
	const last = list => list.length ? list[list.length - 1] : null;
	return last(modal.querySelectorAll('.css-1xb41ip-indicatorContainer'))
		|| last(modal.querySelectorAll("[class*='indicatorContainer']"))
		|| modal.querySelector("[role='combobox']");
})()`, tagModal)

	tagOptionJS = fmt.Sprintf(`(() => {
	const box = document.querySelector(%q);
	if (!box) return null;
	box.scrollIntoView({block: 'center'});
	return Array.from(box.querySelectorAll("[role='option'], div"))
		.find(o => (o.textContent || '').trim() === %q) || null;
})()`, tagListbox, orderedTag)

	tagSubmitJS = fmt.Sprintf(`(() => {
	const modal = document.querySelector(%q);
	if (!modal) return null;
	return modal.querySelector('button.ml4.css-12lhddq') || modal.querySelector("button[type='submit']");
})()`, tagModal)
)

// orderRow is one sales order row as read from the list view.
type orderRow struct {
	Href     string `json:"href"`
	ID       string `json:"id"`
	Customer string `json:"customer"`
}

// OrderBoard reads and tags sales orders.
type OrderBoard struct {
	cfg Config
}

// NewOrderBoard creates a new OrderBoard
func NewOrderBoard(cfg Config) *OrderBoard {
	return &OrderBoard{cfg: cfg.withDefaults()}
}

// ToOrder lists the sales orders in the "to order" view.
//
// The list is virtualized, so it is scrolled until the row count holds steady.
// A view that never renders its list is treated as empty.
func (b *OrderBoard) ToOrder(ctx context.Context) ([]fulfillment.OrderRef, error) {
	log := b.cfg.Logger

	if err := browser.Run(ctx, b.cfg.NavTimeout, chromedp.Navigate(b.cfg.url(b.cfg.ToOrderView))); err != nil {
		return nil, fmt.Errorf("open sales orders view: %w", err)
	}
	if err := browser.WaitTrue(ctx, b.cfg.NavTimeout, browser.VisibleExpr(browser.FindText("span", "Sales Orders"))); err != nil {
		return nil, fmt.Errorf("wait for sales orders view: %w", err)
	}
	if err := browser.Pause(ctx, listSettle); err != nil {
		return nil, err
	}

	if err := browser.WaitTrue(ctx, listContentWait, browser.VisibleExpr(browser.FindFirst(listContent))); err != nil {
		log.Info("Sales order list did not render", zap.Error(err))
		return []fulfillment.OrderRef{}, nil
	}
	if err := browser.WaitTrue(ctx, listRowWait, listRowCountJS+" > 0"); err != nil {
		log.Info("Sales order list has no rows", zap.Error(err))
		return []fulfillment.OrderRef{}, nil
	}

	count := func(ctx context.Context) (int, error) {
		var n int
		err := browser.Evaluate(ctx, b.cfg.ActionTimeout, listRowCountJS, &n)
		return n, err
	}
	advance := func(ctx context.Context) error {
		var ok bool
		return browser.Evaluate(ctx, b.cfg.ActionTimeout, listScrollJS, &ok)
	}
	n, err := browser.Stabilize(ctx, b.cfg.Stabilize, count, advance)
	switch {
	case errors.Is(err, browser.ErrUnstable):
		log.Warn("Sales order list kept growing; reading what is loaded", zap.Int("rows", n))
	case err != nil:
		return nil, fmt.Errorf("load sales order list: %w", err)
	}

	var rows []orderRow
	if err := browser.Evaluate(ctx, b.cfg.ActionTimeout, listRowsJS, &rows); err != nil {
		return nil, fmt.Errorf("read sales order list: %w", err)
	}
	refs := parseOrderRefs(b.cfg, rows)
	log.Debug("Sales orders listed", zap.Int("rows", len(rows)), zap.Int("orders", len(refs)))
	return refs, nil
}

// parseOrderRefs keeps rows that have a link and a numeric id.
func parseOrderRefs(cfg Config, rows []orderRow) []fulfillment.OrderRef {
	refs := make([]fulfillment.OrderRef, 0, len(rows))
	for _, r := range rows {
		href := strings.TrimSpace(r.Href)
		if href == "" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
		if err != nil || id == 0 {
			cfg.Logger.Debug("Skipping sales order row without id", zap.String("href", href), zap.String("id", r.ID))
			continue
		}
		refs = append(refs, fulfillment.OrderRef{
			ID:       id,
			URL:      cfg.url(href),
			Customer: strings.TrimSpace(r.Customer),
		})
	}
	return refs
}

// MarkOrdered replaces the NOT ORDER YET tag on a sales order with Ordered.
func (b *OrderBoard) MarkOrdered(ctx context.Context, orderURL string) error {
	log := b.cfg.Logger.With(zap.String("url", orderURL))

	if err := browser.Run(ctx, b.cfg.NavTimeout,
		chromedp.Navigate(b.cfg.url(orderURL)),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("open sales order: %w", err)
	}
	if err := browser.Pause(ctx, tagPageLoad); err != nil {
		return err
	}

	badge := browser.FindText("span", notOrderYet)
	if err := browser.WaitTrue(ctx, tagModalWait, browser.VisibleExpr(badge)); err != nil {
		return fmt.Errorf("tag %q not found: %w", notOrderYet, err)
	}
	if err := b.click(ctx, "sv-tag-badge", badge); err != nil {
		return fmt.Errorf("open tag editor: %w", err)
	}
	if err := browser.WaitTrue(ctx, tagModalWait, browser.VisibleExpr(browser.FindFirst(tagModal))); err != nil {
		return fmt.Errorf("tag editor did not open: %w", err)
	}

	if err := b.click(ctx, "sv-tag-remove", tagRemoveJS); err != nil {
		log.Debug("No removable tag in editor", zap.Error(err))
	}
	if err := b.click(ctx, "sv-tag-indicator", tagIndicatorJS); err != nil {
		log.Debug("Tag dropdown indicator not found", zap.Error(err))
	}

	if err := browser.WaitTrue(ctx, tagModalWait, browser.FindFirst(tagListbox)+" !== null"); err != nil {
		return fmt.Errorf("tag options did not open: %w", err)
	}
	if err := b.click(ctx, "sv-tag-option", tagOptionJS); err != nil {
		log.Warn("Ordered tag option not found", zap.Error(err))
	}

	submit, ok, err := browser.MarkFirst(ctx, b.cfg.ActionTimeout, "sv-tag-submit", tagSubmitJS)
	if err != nil {
		return fmt.Errorf("find tag submit: %w", err)
	}
	if !ok {
		return errors.New("tag editor has no submit button")
	}
	if err := browser.Run(ctx, tagModalWait,
		chromedp.WaitVisible(submit, chromedp.ByQuery),
		chromedp.Click(submit, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("submit tags: %w", err)
	}
	return browser.Pause(ctx, tagSubmitted)
}

var errNotFound = errors.New("element not found")

// click tags the element yielded by finder and clicks it.
func (b *OrderBoard) click(ctx context.Context, name, finder string) error {
	sel, ok, err := browser.MarkFirst(ctx, b.cfg.ActionTimeout, name, finder)
	if err != nil {
		return err
	}
	if !ok {
		return errNotFound
	}
	return browser.Run(ctx, b.cfg.ActionTimeout, chromedp.Click(sel, chromedp.ByQuery))
}

package shopvox

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"go.uber.org/zap"
)

const (
	detailSettle    = 5 * time.Second
	itemsHeaderWait = 15 * time.Second
	itemsWait       = 10 * time.Second
	itemsScrolls    = 8
	itemsScrollGap  = 200 * time.Millisecond
)

const itemsContainerJS = `(document.querySelector("[class^='_lineItemPreview_']")
	|| document.querySelector("[class^='_lineItemPreviewParameters_']")
	|| document.querySelector("main, div._contentWrapper_12otk_183"))`

const itemsAttachedJS = `document.querySelector(".PricingTemplateApparelItemsItemSizesSize, [class^='_lineItemPreviewName_']") !== null`

const itemsScrollJS = `(() => {
	const el = ` + itemsContainerJS + `;
	if (el) { el.scrollTop = el.scrollHeight; } else { window.scrollBy(0, document.body.scrollHeight); }
	return true;
})()`

// reads every line item card; apparel cards carry a description block and per-size rows
const cardsJS = `(() => {
	const text = el => el ? (el.innerText || '').trim() : '';
	const value = el => el ? (el.value || '').trim() : '';
	let cards = document.querySelectorAll("div.bg-white:has([class*='_apparelItemPricingDescriptionItemName_'])");
	if (!cards.length) cards = document.querySelectorAll('div.bg-white.borderRadius-8.p8');
	if (!cards.length) cards = document.querySelectorAll('div.bg-white');
	return Array.from(cards).map(card => {
		const desc = card.querySelector("[class*='_apparelItemPricingDescriptionItemName_']");
		const out = {apparel: !!desc, name: '', store: '', color: '', sizes: [], quantity: ''};
		if (desc) {
			out.store = text(desc.querySelector('p.css-i7pnfr:not(.mt4)'));
			out.name = text(desc.querySelector('p.mt4.css-i7pnfr'));
			out.color = text(desc.querySelector('p.css-ifbqr7'));
		} else {
			out.name = text(card.querySelector("[class^='_lineItemPreviewName_'] p.css-i7pnfr"));
			out.store = text(card.querySelector('p.css-i7pnfr:not(.mt4)'));
			out.color = text(card.querySelector('p.css-ifbqr7'));
		}
		const rows = card.querySelectorAll('div._apparelItemSizesPricing_tgx96_24 > div.PricingTemplateApparelItemsItemSizesSize');
		rows.forEach(r => out.sizes.push({
			label: text(r.querySelector('div._apparelItemSizesPricingLabel_tgx96_30')),
			value: value(r.querySelector("input[type='text']")),
		}));
		if (!rows.length) {
			out.quantity = value(card.querySelector("input[name*='.quantity'], input#quantity-input, input[name='quantity']"));
		}
		return out;
	});
})()`

type cardSize struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// itemCard is one line item card on a sales order page.
type itemCard struct {
	Apparel  bool       `json:"apparel"`
	Name     string     `json:"name"`
	Store    string     `json:"store"`
	Color    string     `json:"color"`
	Sizes    []cardSize `json:"sizes"`
	Quantity string     `json:"quantity"`
}

// RowSource reads the line item cards of a sales order page.
type RowSource struct {
	cfg Config
}

// NewRowSource creates a new RowSource
func NewRowSource(cfg Config) *RowSource {
	return &RowSource{cfg: cfg.withDefaults()}
}

// Rows opens the sales order and returns one row per (card, size).
func (s *RowSource) Rows(ctx context.Context, orderURL string) ([]fulfillment.RawRow, error) {
	if err := browser.Run(ctx, s.cfg.NavTimeout, chromedp.Navigate(s.cfg.url(orderURL))); err != nil {
		return nil, fmt.Errorf("open sales order: %w", err)
	}
	if err := browser.WaitTrue(ctx, itemsHeaderWait, browser.VisibleExpr(browser.FindText("h2.css-ycj89q", "Items"))); err != nil {
		return nil, fmt.Errorf("wait for items section: %w", err)
	}
	if err := browser.Pause(ctx, detailSettle); err != nil {
		return nil, err
	}

	if err := browser.WaitTrue(ctx, itemsWait, browser.VisibleExpr(itemsContainerJS)); err != nil {
		// cards sometimes render outside the expected wrapper
		s.cfg.Logger.Debug("Items container not visible", zap.String("url", orderURL))
	}
	if err := s.attachCards(ctx); err != nil {
		return nil, err
	}

	var cards []itemCard
	if err := browser.Evaluate(ctx, s.cfg.ActionTimeout, cardsJS, &cards); err != nil {
		return nil, fmt.Errorf("read line items: %w", err)
	}
	return cardRows(cards), nil
}

// attachCards scrolls the virtualized item list until some card content exists.
func (s *RowSource) attachCards(ctx context.Context) error {
	for i := 0; i < itemsScrolls; i++ {
		var attached bool
		if err := browser.Evaluate(ctx, s.cfg.ActionTimeout, itemsAttachedJS, &attached); err == nil && attached {
			return nil
		}
		var ok bool
		_ = browser.Evaluate(ctx, s.cfg.ActionTimeout, itemsScrollJS, &ok)
		if err := browser.Pause(ctx, itemsScrollGap); err != nil {
			return err
		}
	}
	return nil
}

// cardRows flattens cards into raw rows.
//
// Apparel cards yield one row per size row, with unreadable quantities as zero.
// Other cards yield a single "qty" row when their quantity is positive. Cards
// with nothing to emit are skipped.
func cardRows(cards []itemCard) []fulfillment.RawRow {
	var rows []fulfillment.RawRow
	for _, c := range cards {
		store := c.Store
		if store == "" {
			store = fulfillment.DefaultStore
		}
		base := fulfillment.RawRow{
			Name:  c.Name,
			Part:  ParsePartCode(c.Name),
			Color: c.Color,
			Store: store,
		}

		if len(c.Sizes) == 0 {
			q, ok := ParseQuantity(c.Quantity)
			if !ok || !q.IsPositive() {
				continue
			}
			row := base
			row.Size = fulfillment.SizeQty
			row.Quantity = q
			rows = append(rows, row)
			continue
		}

		for _, sz := range c.Sizes {
			q, _ := ParseQuantity(sz.Value)
			row := base
			row.Size = sz.Label
			row.Quantity = q
			rows = append(rows, row)
		}
	}
	return rows
}

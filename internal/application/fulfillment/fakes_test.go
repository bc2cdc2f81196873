package fulfillment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// fakePages hands out plain child contexts and counts open/close calls.
type fakePages struct {
	opened atomic.Int32
	closed atomic.Int32
	err    error
}

func (p *fakePages) NewPage(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	p.opened.Add(1)
	pageCtx, cancel := context.WithCancel(ctx)
	return pageCtx, func() {
		p.closed.Add(1)
		cancel()
	}, nil
}

type fakeRegistry map[string]fulfillment.VendorProcessor

func (r fakeRegistry) Lookup(store string) (fulfillment.VendorProcessor, bool) {
	p, ok := r[store]
	return p, ok
}

// fakeVendor serves fixed pools per part.
type fakeVendor struct {
	name      string
	pools     map[string]fulfillment.SizeStockPool
	openErr   map[string]error
	panicPart string
	commitErr error
	homeDelay time.Duration

	mu      sync.Mutex
	fills   []fulfillment.Fill
	commits int
	homes   int

	active    atomic.Int32
	maxActive atomic.Int32
}

func (v *fakeVendor) Name() string { return v.name }

func (v *fakeVendor) Home(ctx context.Context) error {
	n := v.active.Add(1)
	defer v.active.Add(-1)
	for {
		m := v.maxActive.Load()
		if n <= m || v.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	if v.homeDelay > 0 {
		time.Sleep(v.homeDelay)
	}
	v.mu.Lock()
	v.homes++
	v.mu.Unlock()
	return nil
}

func (v *fakeVendor) Open(_ context.Context, item fulfillment.LineItem) (fulfillment.StockSession, error) {
	if item.Part == v.panicPart && v.panicPart != "" {
		panic("selector engine crashed")
	}
	if err := v.openErr[item.Part]; err != nil {
		return nil, err
	}
	pool := fulfillment.SizeStockPool{}
	for k, cells := range v.pools[item.Part] {
		pool[k] = append([]fulfillment.StockCell(nil), cells...)
	}
	return &fakeSession{vendor: v, pool: pool}, nil
}

type fakeSession struct {
	vendor *fakeVendor
	pool   fulfillment.SizeStockPool
}

func (s *fakeSession) Pool() fulfillment.SizeStockPool { return s.pool }

func (s *fakeSession) Fill(_ context.Context, cell fulfillment.StockCell, quantity int) error {
	if cell.Ref == "broken" {
		return errors.New("element is not attached to the page document")
	}
	s.vendor.mu.Lock()
	defer s.vendor.mu.Unlock()
	s.vendor.fills = append(s.vendor.fills, fulfillment.Fill{Size: cell.SizeKey, Cell: cell, Quantity: quantity})
	return nil
}

func (s *fakeSession) Commit(context.Context) error {
	s.vendor.mu.Lock()
	defer s.vendor.mu.Unlock()
	if s.vendor.commitErr != nil {
		return s.vendor.commitErr
	}
	s.vendor.commits++
	return nil
}

func stock(wh, size string, avail int) fulfillment.StockCell {
	return fulfillment.StockCell{WarehouseID: wh, SizeKey: size, Available: avail, Committable: true, Ref: wh + ":" + size}
}

func lineItem(part, color, store string, sizes ...any) fulfillment.LineItem {
	item := fulfillment.LineItem{Name: part, Part: part, Color: color, Store: store}
	for i := 0; i+1 < len(sizes); i += 2 {
		q := decimal.NewFromInt(int64(sizes[i+1].(int)))
		item.Sizes = append(item.Sizes, fulfillment.SizeQuantity{Size: sizes[i].(string), Quantity: q})
		item.TotalQuantity = item.TotalQuantity.Add(q)
	}
	return item
}

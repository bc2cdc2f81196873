package fulfillment

import "context"

// StockCell is one (warehouse, size) inventory slot on a vendor page.
type StockCell struct {
	WarehouseID string
	SizeKey     string
	Available   int
	// Committable is false for disabled or missing inputs; such cells never receive a fill.
	Committable bool
	// Ref identifies the cell to the vendor processor that produced it.
	Ref string
}

// SizeStockPool maps a vendor size key to its cells in source row order.
type SizeStockPool map[string][]StockCell

// Fill records a quantity written into one cell.
type Fill struct {
	Size     string
	Cell     StockCell
	Quantity int
}

// Shortfall records how many units of a requested size could not be placed.
type Shortfall struct {
	Size    string
	Missing int
}

// AllocationOutcome is the result of allocating one line item against one pool.
type AllocationOutcome struct {
	AnyAdded        bool
	OutOfStockSizes []string
	Fills           []Fill
	Shortfalls      []Shortfall
}

// FilledUnits returns the number of units written across all fills.
func (o AllocationOutcome) FilledUnits() int {
	n := 0
	for _, f := range o.Fills {
		n += f.Quantity
	}
	return n
}

// CellFiller writes a quantity into a stock cell.
type CellFiller interface {
	Fill(ctx context.Context, cell StockCell, quantity int) error
}

// CellFillerFunc adapts a function to CellFiller.
type CellFillerFunc func(ctx context.Context, cell StockCell, quantity int) error

// Fill calls f.
func (f CellFillerFunc) Fill(ctx context.Context, cell StockCell, quantity int) error {
	return f(ctx, cell, quantity)
}

// Allocate places each demand entry against the pool, first fit in pool order.
//
// Entries are handled independently and in the order given. Only whole units are
// allocated; an entry whose integer quantity is not positive is skipped. A size with no
// matching pool key, or with units left after one pass over its cells, is reported by its
// requested label in OutOfStockSizes. A cell whose fill fails is skipped. The caller
// commits the fills once, and only when AnyAdded is true.
func Allocate(ctx context.Context, demand []SizeQuantity, pool SizeStockPool, filler CellFiller) AllocationOutcome {
	var out AllocationOutcome

	for _, d := range demand {
		want := int(d.Quantity.IntPart())
		if want <= 0 {
			continue
		}

		key, ok := pool.match(d.Size)
		if !ok {
			out.OutOfStockSizes = append(out.OutOfStockSizes, d.Size)
			out.Shortfalls = append(out.Shortfalls, Shortfall{Size: d.Size, Missing: want})
			continue
		}

		remaining := want
		for _, cell := range pool[key] {
			if remaining <= 0 {
				break
			}
			if !cell.Committable || cell.Available <= 0 {
				continue
			}

			take := min(cell.Available, remaining)
			if err := filler.Fill(ctx, cell, take); err != nil {
				continue
			}
			out.AnyAdded = true
			out.Fills = append(out.Fills, Fill{Size: d.Size, Cell: cell, Quantity: take})
			remaining -= take
		}

		if remaining > 0 {
			out.OutOfStockSizes = append(out.OutOfStockSizes, d.Size)
			out.Shortfalls = append(out.Shortfalls, Shortfall{Size: d.Size, Missing: remaining})
		}
	}
	return out
}

// match returns the first alias of size present in the pool.
func (p SizeStockPool) match(size string) (string, bool) {
	for _, alias := range ExpandSizeAliases(size) {
		if _, ok := p[alias]; ok {
			return alias, true
		}
	}
	return "", false
}

// WithOneSizeAliases exposes a single-column pool under ONE SIZE and OSFA as well,
// so accessories listed as "OS" or "ONE SIZE" match whatever the vendor calls its only column.
func (p SizeStockPool) WithOneSizeAliases() SizeStockPool {
	if len(p) != 1 {
		return p
	}
	var only string
	for key := range p {
		only = key
	}
	if only == SizeOneSize || only == SizeOSFA {
		return p
	}
	p[SizeOneSize] = p[only]
	p[SizeOSFA] = p[only]
	return p
}

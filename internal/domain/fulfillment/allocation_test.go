package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingFiller records every fill and fails for refs listed in failing.
type recordingFiller struct {
	fills   []Fill
	failing map[string]bool
}

func (r *recordingFiller) Fill(_ context.Context, cell StockCell, quantity int) error {
	if r.failing[cell.Ref] {
		return errors.New("input detached")
	}
	r.fills = append(r.fills, Fill{Size: cell.SizeKey, Cell: cell, Quantity: quantity})
	return nil
}

func cell(wh, size string, avail int) StockCell {
	return StockCell{WarehouseID: wh, SizeKey: size, Available: avail, Committable: true, Ref: wh + "/" + size}
}

func demand(size string, n int64) SizeQuantity {
	return SizeQuantity{Size: size, Quantity: decimal.NewFromInt(n)}
}

func TestAllocate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills first warehouse then the next", func(t *testing.T) {
		pool := SizeStockPool{"L": {cell("A", "L", 3), cell("B", "L", 10)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("L", 5)}, pool, filler)

		assert.True(t, out.AnyAdded)
		assert.Empty(t, out.OutOfStockSizes)
		require.Len(t, filler.fills, 2)
		assert.Equal(t, "A", filler.fills[0].Cell.WarehouseID)
		assert.Equal(t, 3, filler.fills[0].Quantity)
		assert.Equal(t, "B", filler.fills[1].Cell.WarehouseID)
		assert.Equal(t, 2, filler.fills[1].Quantity)
		assert.Equal(t, 5, out.FilledUnits())
	})

	t.Run("missing size is out of stock", func(t *testing.T) {
		pool := SizeStockPool{"L": {cell("A", "L", 3)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("XL", 4)}, pool, filler)

		assert.False(t, out.AnyAdded)
		assert.Equal(t, []string{"XL"}, out.OutOfStockSizes)
		assert.Equal(t, []Shortfall{{Size: "XL", Missing: 4}}, out.Shortfalls)
		assert.Empty(t, filler.fills)
	})

	t.Run("matches vendor spelling through aliases", func(t *testing.T) {
		pool := SizeStockPool{"XXL": {cell("A", "XXL", 9)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("2XL", 2)}, pool, filler)

		assert.True(t, out.AnyAdded)
		assert.Empty(t, out.OutOfStockSizes)
		require.Len(t, out.Fills, 1)
		assert.Equal(t, "2XL", out.Fills[0].Size)
		assert.Equal(t, "XXL", out.Fills[0].Cell.SizeKey)
	})

	t.Run("partial fill reports the requested label", func(t *testing.T) {
		pool := SizeStockPool{"XL": {cell("A", "XL", 1), cell("B", "XL", 1)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("X-Large", 5)}, pool, filler)

		assert.True(t, out.AnyAdded)
		assert.Equal(t, []string{"X-Large"}, out.OutOfStockSizes)
		assert.Equal(t, []Shortfall{{Size: "X-Large", Missing: 3}}, out.Shortfalls)
		assert.Equal(t, 2, out.FilledUnits())
	})

	t.Run("skips disabled and empty cells", func(t *testing.T) {
		disabled := cell("A", "M", 50)
		disabled.Committable = false
		pool := SizeStockPool{"M": {disabled, cell("B", "M", 0), cell("C", "M", -1), cell("D", "M", 4)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("M", 4)}, pool, filler)

		require.Len(t, filler.fills, 1)
		assert.Equal(t, "D", filler.fills[0].Cell.WarehouseID)
		assert.Empty(t, out.OutOfStockSizes)
	})

	t.Run("failed fill moves on to the next cell", func(t *testing.T) {
		pool := SizeStockPool{"S": {cell("A", "S", 10), cell("B", "S", 10)}}
		filler := &recordingFiller{failing: map[string]bool{"A/S": true}}

		out := Allocate(ctx, []SizeQuantity{demand("S", 6)}, pool, filler)

		assert.True(t, out.AnyAdded)
		require.Len(t, filler.fills, 1)
		assert.Equal(t, "B", filler.fills[0].Cell.WarehouseID)
		assert.Equal(t, 6, filler.fills[0].Quantity)
		assert.Empty(t, out.OutOfStockSizes)
	})

	t.Run("all cells failing behaves as out of stock", func(t *testing.T) {
		pool := SizeStockPool{"S": {cell("A", "S", 10)}}
		filler := &recordingFiller{failing: map[string]bool{"A/S": true}}

		out := Allocate(ctx, []SizeQuantity{demand("S", 2)}, pool, filler)

		assert.False(t, out.AnyAdded)
		assert.Equal(t, []string{"S"}, out.OutOfStockSizes)
	})

	t.Run("non positive and fractional quantities", func(t *testing.T) {
		pool := SizeStockPool{"S": {cell("A", "S", 10)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{
			demand("S", 0),
			demand("S", -3),
			{Size: "S", Quantity: decimal.NewFromFloat(0.5)},
			{Size: "S", Quantity: decimal.NewFromFloat(2.9)},
		}, pool, filler)

		require.Len(t, filler.fills, 1)
		assert.Equal(t, 2, filler.fills[0].Quantity)
		assert.Empty(t, out.OutOfStockSizes)
	})

	t.Run("demand entries are independent", func(t *testing.T) {
		pool := SizeStockPool{
			"S": {cell("A", "S", 1)},
			"M": {cell("A", "M", 5)},
		}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("S", 3), demand("XL", 1), demand("M", 2)}, pool, filler)

		assert.True(t, out.AnyAdded)
		assert.Equal(t, []string{"S", "XL"}, out.OutOfStockSizes)
		assert.Equal(t, 3, out.FilledUnits())
	})

	t.Run("cell is not reused within one demand entry", func(t *testing.T) {
		pool := SizeStockPool{"L": {cell("A", "L", 2)}}
		filler := &recordingFiller{}

		out := Allocate(ctx, []SizeQuantity{demand("L", 5)}, pool, filler)

		require.Len(t, filler.fills, 1)
		assert.Equal(t, 2, filler.fills[0].Quantity)
		assert.Equal(t, []string{"L"}, out.OutOfStockSizes)
	})
}

func TestAllocate_ConservationAndDeterminism(t *testing.T) {
	f := gofakeit.New(99)
	ctx := context.Background()
	sizes := []string{"S", "M", "L", "XL", "2XL", "XXL", "OS"}

	for round := 0; round < 50; round++ {
		pool := SizeStockPool{}
		for _, size := range sizes[:f.Number(1, len(sizes))] {
			cells := make([]StockCell, 0)
			for w := 0; w < f.Number(0, 4); w++ {
				c := cell(f.RandomString([]string{"Seattle", "Cincinnati", "Reno", "Dallas"}), size, f.Number(-2, 12))
				c.Committable = f.Number(0, 4) > 0
				cells = append(cells, c)
			}
			pool[size] = cells
		}

		var want []SizeQuantity
		requested := 0
		for i := 0; i < f.Number(1, 5); i++ {
			n := f.Number(0, 20)
			want = append(want, demand(f.RandomString(sizes), int64(n)))
			requested += n
		}

		first := &recordingFiller{}
		out := Allocate(ctx, want, pool, first)

		missing := 0
		for _, s := range out.Shortfalls {
			missing += s.Missing
		}
		assert.LessOrEqual(t, out.FilledUnits(), requested)
		assert.Equal(t, requested-missing, out.FilledUnits())
		assert.Equal(t, len(out.OutOfStockSizes), len(out.Shortfalls))
		assert.Equal(t, out.AnyAdded, len(out.Fills) > 0)

		second := &recordingFiller{}
		again := Allocate(ctx, want, pool, second)
		assert.Equal(t, first.fills, second.fills)
		assert.Equal(t, out, again)
	}
}

func TestSizeStockPool_WithOneSizeAliases(t *testing.T) {
	t.Run("single column is reachable as one size", func(t *testing.T) {
		pool := SizeStockPool{"ADJUSTABLE": {cell("A", "ADJUSTABLE", 4)}}.WithOneSizeAliases()

		assert.Len(t, pool[SizeOneSize], 1)
		assert.Len(t, pool[SizeOSFA], 1)

		out := Allocate(context.Background(), []SizeQuantity{demand("OS", 3)}, pool, &recordingFiller{})
		assert.True(t, out.AnyAdded)
		assert.Empty(t, out.OutOfStockSizes)
	})

	t.Run("multi column pool is untouched", func(t *testing.T) {
		pool := SizeStockPool{"S": nil, "M": nil}.WithOneSizeAliases()
		assert.Len(t, pool, 2)
	})

	t.Run("existing one size key is untouched", func(t *testing.T) {
		pool := SizeStockPool{SizeOSFA: nil}.WithOneSizeAliases()
		assert.Len(t, pool, 1)
	})
}

func TestCellFillerFunc(t *testing.T) {
	var got int
	f := CellFillerFunc(func(_ context.Context, _ StockCell, q int) error {
		got = q
		return nil
	})
	require.NoError(t, f.Fill(context.Background(), StockCell{}, 7))
	assert.Equal(t, 7, got)
}

package fulfillment

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultStore is used for line items whose store could not be read.
const DefaultStore = "Custom"

// quantityPlaces is the rounding applied to merged quantities.
const quantityPlaces = 2

// SizeQuantity is a requested quantity for one size.
type SizeQuantity struct {
	Size     string
	Quantity decimal.Decimal
}

// RawRow is one scraped (item, size, quantity) reading before merging.
type RawRow struct {
	Name     string
	Part     string
	Color    string
	Store    string
	Size     string
	Quantity decimal.Decimal
}

// LineItem is a canonical line item keyed by (part, color, store).
type LineItem struct {
	Name          string
	Part          string
	Color         string
	Store         string
	Sizes         []SizeQuantity
	TotalQuantity decimal.Decimal
}

// Tag returns the reporting tag for this item.
func (li LineItem) Tag() OrderItemResult {
	return OrderItemResult{Part: li.Part, Color: li.Color, Store: li.Store}
}

type lineItemKey struct {
	part, color, store string
}

type lineItemBucket struct {
	item  LineItem
	order []string
	sums  map[string]decimal.Decimal
}

// MergeRows folds raw rows into canonical line items.
//
// Rows sharing (part, color, store) collapse into one item; quantities for the same
// canonical size are summed, which absorbs duplicated reads of virtualized lists.
// Items are returned in the order their key was first seen.
func MergeRows(rows []RawRow) []LineItem {
	buckets := make(map[lineItemKey]*lineItemBucket)
	keys := make([]lineItemKey, 0)

	for _, row := range rows {
		store := strings.TrimSpace(row.Store)
		if store == "" {
			store = DefaultStore
		}
		key := lineItemKey{
			part:  strings.TrimSpace(row.Part),
			color: strings.TrimSpace(row.Color),
			store: store,
		}

		b, ok := buckets[key]
		if !ok {
			b = &lineItemBucket{
				item: LineItem{
					Name:          row.Name,
					Part:          key.part,
					Color:         key.color,
					Store:         key.store,
					TotalQuantity: decimal.Zero,
				},
				sums: make(map[string]decimal.Decimal),
			}
			buckets[key] = b
			keys = append(keys, key)
		}

		size := NormalizeSize(row.Size)
		prev, seen := b.sums[size]
		if !seen {
			b.order = append(b.order, size)
		}
		b.sums[size] = prev.Add(row.Quantity)
		b.item.TotalQuantity = b.item.TotalQuantity.Add(row.Quantity)
	}

	items := make([]LineItem, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		if len(b.order) == 0 {
			continue
		}

		sizes := make([]SizeQuantity, 0, len(b.order))
		for _, size := range b.order {
			sizes = append(sizes, SizeQuantity{
				Size:     size,
				Quantity: b.sums[size].Round(quantityPlaces),
			})
		}
		sort.SliceStable(sizes, func(i, j int) bool {
			return SizeRank(sizes[i].Size) < SizeRank(sizes[j].Size)
		})

		item := b.item
		item.Sizes = sizes
		item.TotalQuantity = item.TotalQuantity.Round(quantityPlaces)
		items = append(items, item)
	}
	return items
}

// SumTotals adds up the total quantity of every item.
func SumTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalQuantity)
	}
	return total
}

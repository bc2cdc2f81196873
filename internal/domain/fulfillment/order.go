package fulfillment

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// OrderStatus is the terminal status of one add-to-cart run for an order.
type OrderStatus string

const (
	OrderStatusCustomStoreOnly OrderStatus = "custom_store_only"
	OrderStatusOutOfStock      OrderStatus = "out_of_stock"
	OrderStatusPartial         OrderStatus = "partial"
	OrderStatusSuccess         OrderStatus = "success"
	OrderStatusNoItemsAdded    OrderStatus = "no_items_added"
	// OrderStatusFailed is set by the orchestrator when a vendor call fails outright.
	// Classify never returns it.
	OrderStatusFailed OrderStatus = "failed"
)

// String returns the wire value.
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItemResult tags an item in a report.
type OrderItemResult struct {
	Part  string
	Color string
	Store string
}

// OrderRef identifies a sales order listed on the order board.
type OrderRef struct {
	ID       int64
	URL      string
	Customer string
}

// Order is a sales order to be placed with vendors.
type Order struct {
	ID       int64
	URL      string
	Customer string
	Items    []LineItem
	Total    decimal.Decimal
}

// OrderDetails holds the per-item facts behind an order status.
type OrderDetails struct {
	OutOfStock      map[string][]string
	SkippedCustom   []OrderItemResult
	Processed       []OrderItemResult
	AnyAddedOverall bool
}

// OrderResult is returned to the caller for every submitted order.
type OrderResult struct {
	OrderID  int64
	URL      string
	Customer string
	Status   OrderStatus
	Message  string
	Details  OrderDetails
}

// NormalizeStore is the case-folded store key used to route items to vendors.
func NormalizeStore(store string) string {
	return cases.Fold().String(strings.TrimSpace(store))
}

// SortItemsByStore returns a copy of items ordered by lower-cased store, descending.
// Items with equal stores keep their relative order.
func SortItemsByStore(items []LineItem) []LineItem {
	sorted := make([]LineItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Store) > strings.ToLower(sorted[j].Store)
	})
	return sorted
}

// StoreGroup is a run of items sharing a normalized store.
type StoreGroup struct {
	Store string
	Items []LineItem
}

// GroupByStore buckets items by normalized store, in first-seen order.
func GroupByStore(items []LineItem) []StoreGroup {
	index := make(map[string]int)
	groups := make([]StoreGroup, 0)
	for _, it := range items {
		key := NormalizeStore(it.Store)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, StoreGroup{Store: key})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

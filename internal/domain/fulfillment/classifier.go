package fulfillment

import (
	"fmt"
	"sort"
	"strings"
)

// Classification is the order-level status and its human-readable message.
type Classification struct {
	Status  OrderStatus
	Message string
}

// Classify rolls per-item outcomes up into one order status.
//
// Rules are checked in order and the first match wins:
//
//	no processed items, some skipped      -> custom_store_only
//	processed, nothing added, some OOS    -> out_of_stock
//	some OOS and something added          -> partial
//	something added                       -> success
//	otherwise                             -> no_items_added
func Classify(processed []OrderItemResult, outOfStock map[string][]string, skipped []OrderItemResult, anyAdded bool) Classification {
	hasOOS := len(outOfStock) > 0

	switch {
	case len(processed) == 0 && len(skipped) > 0:
		return Classification{
			Status:  OrderStatusCustomStoreOnly,
			Message: "Order contains only unsupported-vendor items; none processed. Skipped: " + formatItems(skipped),
		}
	case len(processed) > 0 && !anyAdded && hasOOS:
		return Classification{
			Status:  OrderStatusOutOfStock,
			Message: "All requested sizes for processed items are out of stock: " + formatOutOfStock(outOfStock),
		}
	case hasOOS && anyAdded:
		return Classification{
			Status:  OrderStatusPartial,
			Message: "Some items were out of stock: " + formatOutOfStock(outOfStock),
		}
	case anyAdded:
		return Classification{Status: OrderStatusSuccess, Message: "All items added successfully"}
	default:
		return Classification{Status: OrderStatusNoItemsAdded, Message: "No items were added to cart."}
	}
}

func formatItems(items []OrderItemResult) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", it.Part, it.Color, it.Store))
	}
	return strings.Join(parts, ", ")
}

func formatOutOfStock(oos map[string][]string) string {
	parts := make([]string, 0, len(oos))
	for part := range oos {
		parts = append(parts, part)
	}
	sort.Strings(parts)

	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		entries = append(entries, part+": "+strings.Join(oos[part], ", "))
	}
	return strings.Join(entries, "; ")
}

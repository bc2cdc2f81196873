package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	pc54 := OrderItemResult{Part: "PC54", Color: "Red", Store: "sanmar"}
	mug := OrderItemResult{Part: "MUG11", Color: "White", Store: "Custom"}
	hat := OrderItemResult{Part: "C112", Color: "Black", Store: "etsy"}

	t.Run("only custom items", func(t *testing.T) {
		got := Classify(nil, nil, []OrderItemResult{mug, hat}, false)
		assert.Equal(t, OrderStatusCustomStoreOnly, got.Status)
		assert.Equal(t,
			"Order contains only unsupported-vendor items; none processed. Skipped: MUG11 (White, Custom), C112 (Black, etsy)",
			got.Message)
	})

	t.Run("everything out of stock", func(t *testing.T) {
		oos := map[string][]string{"PC54": {"XL", "2XL"}, "G500": {"S"}}
		got := Classify([]OrderItemResult{pc54}, oos, nil, false)
		assert.Equal(t, OrderStatusOutOfStock, got.Status)
		assert.Equal(t, "All requested sizes for processed items are out of stock: G500: S; PC54: XL, 2XL", got.Message)
	})

	t.Run("partial", func(t *testing.T) {
		got := Classify([]OrderItemResult{pc54}, map[string][]string{"PC54": {"XL"}}, []OrderItemResult{mug}, true)
		assert.Equal(t, OrderStatusPartial, got.Status)
		assert.Equal(t, "Some items were out of stock: PC54: XL", got.Message)
	})

	t.Run("success with skipped custom items", func(t *testing.T) {
		got := Classify([]OrderItemResult{pc54}, map[string][]string{}, []OrderItemResult{mug}, true)
		assert.Equal(t, OrderStatusSuccess, got.Status)
		assert.Equal(t, "All items added successfully", got.Message)
	})

	t.Run("processed but nothing added and nothing out of stock", func(t *testing.T) {
		got := Classify([]OrderItemResult{pc54}, nil, nil, false)
		assert.Equal(t, OrderStatusNoItemsAdded, got.Status)
		assert.Equal(t, "No items were added to cart.", got.Message)
	})

	t.Run("empty order", func(t *testing.T) {
		got := Classify(nil, nil, nil, false)
		assert.Equal(t, OrderStatusNoItemsAdded, got.Status)
	})
}

func TestClassify_IsTotal(t *testing.T) {
	items := [][]OrderItemResult{nil, {{Part: "PC54"}}}
	oos := []map[string][]string{nil, {"PC54": {"L"}}}
	valid := map[OrderStatus]bool{
		OrderStatusCustomStoreOnly: true,
		OrderStatusOutOfStock:      true,
		OrderStatusPartial:         true,
		OrderStatusSuccess:         true,
		OrderStatusNoItemsAdded:    true,
	}

	for _, processed := range items {
		for _, skipped := range items {
			for _, o := range oos {
				for _, added := range []bool{false, true} {
					got := Classify(processed, o, skipped, added)
					assert.True(t, valid[got.Status], "unexpected status %q", got.Status)
					assert.NotEmpty(t, got.Message)
					assert.NotEqual(t, OrderStatusFailed, got.Status)
				}
			}
		}
	}
}

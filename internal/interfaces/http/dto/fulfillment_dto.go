package dto

import (
	"github.com/orderbridge/backend/internal/application/fulfillment"
	domain "github.com/orderbridge/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// SizeItem is a requested quantity for one size
type SizeItem struct {
	Size     string  `json:"size" binding:"required" example:"XL"`
	Quantity float64 `json:"quantity" binding:"gte=0" example:"12"`
}

// Item is a merged sales-order line item
type Item struct {
	Name          string     `json:"name" example:"Port & Company Core Cotton Tee - PC54"`
	Part          string     `json:"part" example:"PC54"`
	Color         string     `json:"color" example:"Jet Black"`
	Store         string     `json:"store" example:"SanMar"`
	Sizes         []SizeItem `json:"sizes" binding:"dive"`
	TotalQuantity float64    `json:"total_quantity" example:"24"`
}

// SalesOrder is a ShopVox sales order ready to be placed with vendors
type SalesOrder struct {
	URL      string  `json:"url" binding:"required" example:"https://express.shopvox.com/transactions/sales-orders/7f3c"`
	ID       int64   `json:"id" example:"1042"`
	Items    []Item  `json:"items" binding:"dive"`
	Total    float64 `json:"total" example:"24"`
	Customer string  `json:"customer" example:"Acme Co"`
}

// ItemTag identifies an item inside an order result
type ItemTag struct {
	Part  string `json:"part" example:"PC54"`
	Color string `json:"color" example:"Jet Black"`
	Store string `json:"store" example:"SanMar"`
}

// OrderDetails lists the per-item facts behind an order status
type OrderDetails struct {
	OutOfStock      map[string][]string `json:"out_of_stock"`
	SkippedCustom   []ItemTag           `json:"skipped_custom"`
	Processed       []ItemTag           `json:"processed"`
	AnyAddedOverall bool                `json:"any_added_overall"`
}

// OrderResult is the add-to-cart outcome for one sales order
type OrderResult struct {
	OrderID  int64        `json:"order_id" example:"1042"`
	URL      string       `json:"url"`
	Customer string       `json:"customer" example:"Acme Co"`
	Status   string       `json:"status" enums:"custom_store_only,out_of_stock,partial,success,no_items_added,failed" example:"partial"`
	Message  string       `json:"message" example:"Some items were out of stock: PC54: 2XL"`
	Details  OrderDetails `json:"details"`
}

// TagResult is the outcome of re-tagging one sales order
type TagResult struct {
	URL    string `json:"url"`
	Status string `json:"status" enums:"updated,failed" example:"updated"`
	Error  string `json:"error,omitempty"`
}

// TagUpdateResponse is returned by the tag update endpoint
type TagUpdateResponse struct {
	Message string      `json:"message" example:"Updated"`
	Result  []TagResult `json:"result"`
}

// MFARequest submits a ShopVox MFA code
type MFARequest struct {
	Code        string `json:"code" binding:"required" example:"123456"`
	TrustDevice *bool  `json:"trust_device,omitempty" example:"true"`
	TimeoutMS   int    `json:"timeout_ms,omitempty" binding:"omitempty,gte=0,lte=120000" example:"15000"`
}

// AuthResponse reports a ShopVox sign-in state
type AuthResponse struct {
	Status  string `json:"status" enums:"ok,mfa_required,pending,error" example:"mfa_required"`
	Message string `json:"message" example:"MFA code requested"`
	URL     string `json:"url,omitempty"`
}

// TimeResponse is the liveness payload of the root endpoint
type TimeResponse struct {
	Time string `json:"time" example:"2026-10-16T09:30:00.123456789Z"`
}

// ToDomainOrders converts request orders to domain orders
func ToDomainOrders(orders []SalesOrder) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		items := make([]domain.LineItem, len(o.Items))
		for j, it := range o.Items {
			sizes := make([]domain.SizeQuantity, len(it.Sizes))
			for k, sz := range it.Sizes {
				sizes[k] = domain.SizeQuantity{Size: sz.Size, Quantity: decimal.NewFromFloat(sz.Quantity)}
			}
			items[j] = domain.LineItem{
				Name:          it.Name,
				Part:          it.Part,
				Color:         it.Color,
				Store:         it.Store,
				Sizes:         sizes,
				TotalQuantity: decimal.NewFromFloat(it.TotalQuantity),
			}
		}
		out[i] = domain.Order{
			ID:       o.ID,
			URL:      o.URL,
			Customer: o.Customer,
			Items:    items,
			Total:    decimal.NewFromFloat(o.Total),
		}
	}
	return out
}

// FromDomainOrders converts domain orders to their wire form. Totals are rounded to 2 dp.
func FromDomainOrders(orders []domain.Order) []SalesOrder {
	out := make([]SalesOrder, len(orders))
	for i, o := range orders {
		items := make([]Item, len(o.Items))
		for j, it := range o.Items {
			sizes := make([]SizeItem, len(it.Sizes))
			for k, sz := range it.Sizes {
				sizes[k] = SizeItem{Size: sz.Size, Quantity: sz.Quantity.InexactFloat64()}
			}
			items[j] = Item{
				Name:          it.Name,
				Part:          it.Part,
				Color:         it.Color,
				Store:         it.Store,
				Sizes:         sizes,
				TotalQuantity: it.TotalQuantity.Round(2).InexactFloat64(),
			}
		}
		out[i] = SalesOrder{
			URL:      o.URL,
			ID:       o.ID,
			Items:    items,
			Total:    o.Total.Round(2).InexactFloat64(),
			Customer: o.Customer,
		}
	}
	return out
}

// FromDomainResults converts add-to-cart results to their wire form
func FromDomainResults(results []domain.OrderResult) []OrderResult {
	out := make([]OrderResult, len(results))
	for i, r := range results {
		oos := r.Details.OutOfStock
		if oos == nil {
			oos = map[string][]string{}
		}
		out[i] = OrderResult{
			OrderID:  r.OrderID,
			URL:      r.URL,
			Customer: r.Customer,
			Status:   r.Status.String(),
			Message:  r.Message,
			Details: OrderDetails{
				OutOfStock:      oos,
				SkippedCustom:   fromItemTags(r.Details.SkippedCustom),
				Processed:       fromItemTags(r.Details.Processed),
				AnyAddedOverall: r.Details.AnyAddedOverall,
			},
		}
	}
	return out
}

func fromItemTags(tags []domain.OrderItemResult) []ItemTag {
	out := make([]ItemTag, len(tags))
	for i, t := range tags {
		out[i] = ItemTag{Part: t.Part, Color: t.Color, Store: t.Store}
	}
	return out
}

// FromTagResults converts tag cleanup outcomes to their wire form
func FromTagResults(results []fulfillment.TagResult) []TagResult {
	out := make([]TagResult, len(results))
	for i, r := range results {
		out[i] = TagResult{URL: r.URL, Status: string(r.Status), Error: r.Error}
	}
	return out
}

// FromAuthResult converts a sign-in result to its wire form
func FromAuthResult(res *fulfillment.AuthResult) AuthResponse {
	return AuthResponse{Status: string(res.Status), Message: res.Message, URL: res.URL}
}

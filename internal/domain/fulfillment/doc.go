// Package fulfillment holds the reconciliation and allocation rules for apparel orders:
// size normalization, merging scraped rows into line items, first-fit allocation across
// warehouse stock cells, and the order-level outcome classification.
//
// Nothing here touches a browser or the network; vendor sites and ShopVox are reached
// through the RowSource and VendorProcessor ports.
package fulfillment

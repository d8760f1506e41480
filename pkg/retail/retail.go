// Package retail defines the tabular domain model shared by the loader,
// the analytics, and the HTTP API: stores, products, customers, sale line
// items, and promotions. Tables are plain slices; once loaded they are
// treated as read-only for the duration of an analysis session, and every
// derived value (recency, recommended discounts, ...) is computed fresh by
// the consumer rather than written back.
package retail

import "time"

// LoyaltyTier is a customer loyalty level.
type LoyaltyTier string

// Loyalty tiers, lowest to highest.
const (
	TierBronze   LoyaltyTier = "Bronze"
	TierSilver   LoyaltyTier = "Silver"
	TierGold     LoyaltyTier = "Gold"
	TierPlatinum LoyaltyTier = "Platinum"
)

// loyaltyCodes is the fixed ordinal encoding of loyalty tiers used wherever
// a tier has to become a numeric feature. The mapping is part of the data
// contract: changing it changes model output.
var loyaltyCodes = map[LoyaltyTier]int{
	TierBronze:   0,
	TierSilver:   1,
	TierGold:     2,
	TierPlatinum: 3,
}

// Code returns the fixed ordinal encoding of the tier. Unknown tiers encode
// as 0, same as Bronze.
func (t LoyaltyTier) Code() int {
	return loyaltyCodes[t]
}

// Valid reports whether t is one of the four known tiers.
func (t LoyaltyTier) Valid() bool {
	_, ok := loyaltyCodes[t]
	return ok
}

// WildcardCategory marks a promotion applicable to every product category.
const WildcardCategory = "All"

// Store is a physical retail location.
type Store struct {
	ID       int    `json:"store_id"`
	Name     string `json:"store_name"`
	Location string `json:"location"`
	SizeSqFt int    `json:"size_sqft"`
}

// Product is a sellable item with its current inventory position.
type Product struct {
	ID                int     `json:"product_id"`
	Name              string  `json:"product_name"`
	Category          string  `json:"category"`
	StandardPrice     float64 `json:"standard_price"`
	CurrentStockLevel int     `json:"current_stock_level"`
}

// Customer is a loyalty-program member.
type Customer struct {
	ID                 int         `json:"customer_id"`
	FirstName          string      `json:"first_name"`
	Email              string      `json:"email"`
	Phone              string      `json:"customer_phone"`
	Since              time.Time   `json:"customer_since"`
	LoyaltyStatus      LoyaltyTier `json:"loyalty_status"`
	TotalLoyaltyPoints int         `json:"total_loyalty_points"`
	LastPurchaseDate   time.Time   `json:"last_purchase_date"`
	SegmentID          string      `json:"segment_id"`
}

// SaleLineItem is a single product line of a transaction. TotalAmount is the
// price actually paid and may already carry an implicit discount.
type SaleLineItem struct {
	TransactionID int       `json:"transaction_id"`
	Date          time.Time `json:"date"`
	CustomerID    int       `json:"customer_id"`
	ProductID     int       `json:"product_id"`
	StoreID       int       `json:"store_id"`
	Quantity      int       `json:"quantity"`
	TotalAmount   float64   `json:"total_amount"`
}

// Promotion is a time-bounded discount campaign. ApplicableCategory is a
// product category name, or WildcardCategory for all of them.
type Promotion struct {
	ID                 int       `json:"promotion_id"`
	Name               string    `json:"promotion_name"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	DiscountPercentage float64   `json:"discount_percentage"`
	ApplicableCategory string    `json:"applicable_category"`
}

// Active reports whether the promotion covers the given date (inclusive on
// both ends).
func (p Promotion) Active(on time.Time) bool {
	return !on.Before(p.StartDate) && !on.After(p.EndDate)
}

// Covers reports whether the promotion applies to the given product
// category.
func (p Promotion) Covers(category string) bool {
	return p.ApplicableCategory == WildcardCategory || p.ApplicableCategory == category
}

// Dataset groups the five tables making up one analysis session. All
// analyses take the tables they need from here and leave them untouched.
type Dataset struct {
	Stores     []Store
	Products   []Product
	Customers  []Customer
	Sales      []SaleLineItem
	Promotions []Promotion
}

// TotalRevenue sums TotalAmount over all sale line items.
func (d *Dataset) TotalRevenue() float64 {
	var total float64
	for _, s := range d.Sales {
		total += s.TotalAmount
	}
	return total
}

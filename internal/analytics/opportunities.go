package analytics

import (
	"fmt"

	"github.com/storesight-labs/storesight/pkg/retail"
)

// DefaultLowStockThreshold is the stock level below which a product counts
// as low-stock for missed-opportunity detection.
const DefaultLowStockThreshold = 10

// OpportunityCustomer is a customer who historically bought at least one
// product that is now low in stock. PotentialSpendIncrease is a fixed label,
// not an estimate.
type OpportunityCustomer struct {
	retail.Customer
	PotentialSpendIncrease string `json:"potential_spend_increase"`
}

// MissedOpportunities finds customers whose historical purchases include a
// product whose current stock sits below threshold, and reports how many
// products qualify as low-stock. A threshold <= 0 selects
// DefaultLowStockThreshold. Customers appear in input order, once each, no
// matter how many qualifying purchases they have.
func MissedOpportunities(sales []retail.SaleLineItem, products []retail.Product, customers []retail.Customer, threshold int) ([]OpportunityCustomer, int, error) {
	if len(products) == 0 {
		return nil, 0, fmt.Errorf("products table: %w", ErrMissingData)
	}
	if len(customers) == 0 {
		return nil, 0, fmt.Errorf("customers table: %w", ErrMissingData)
	}
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	lowStock := make(map[int]bool)
	for _, p := range products {
		if p.CurrentStockLevel < threshold {
			lowStock[p.ID] = true
		}
	}

	affected := make(map[int]bool)
	for _, s := range sales {
		if lowStock[s.ProductID] {
			affected[s.CustomerID] = true
		}
	}

	var rows []OpportunityCustomer
	for _, c := range customers {
		if !affected[c.ID] {
			continue
		}
		rows = append(rows, OpportunityCustomer{
			Customer:               c,
			PotentialSpendIncrease: "High",
		})
	}

	return rows, len(lowStock), nil
}

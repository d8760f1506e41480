// Package analytics implements the analytical core: the five pure
// transformations that turn the loaded retail tables into result tables and
// headline scalars. Every function takes its inputs explicitly (including
// the evaluation date where one is needed), never mutates them, and returns
// freshly allocated results, so repeated calls on the same data are
// idempotent.
package analytics

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/storesight-labs/storesight/pkg/retail"
)

// velocityWindowDays is the trailing window over which sales velocity is
// measured.
const velocityWindowDays = 30

// ProductVelocity is one row of the inventory/sales correlation table.
type ProductVelocity struct {
	ProductID         int    `json:"product_id"`
	ProductName       string `json:"product_name"`
	Category          string `json:"category"`
	CurrentStockLevel int    `json:"current_stock_level"`
	SalesVelocity30d  int    `json:"sales_velocity_30d"`
}

// InventoryCorrelation joins the trailing-30-day sales velocity of every
// product with its current stock level and computes the Pearson correlation
// between the two. The window is anchored at the most recent sale date, not
// the wall clock. Every input product gets exactly one row; products without
// sales in the window carry velocity 0.
//
// When the correlation has no defined value (fewer than two products, or
// zero variance in stock or velocity) the per-product table is still
// returned together with ErrUndefinedStatistic, so callers can render the
// rows while reporting the statistic as undefined.
func InventoryCorrelation(sales []retail.SaleLineItem, products []retail.Product) ([]ProductVelocity, float64, error) {
	if len(products) == 0 {
		return nil, 0, fmt.Errorf("products table: %w", ErrMissingData)
	}
	if len(sales) == 0 {
		return nil, 0, fmt.Errorf("sales table: %w", ErrMissingData)
	}

	maxDate := maxSaleDate(sales)
	cutoff := maxDate.AddDate(0, 0, -velocityWindowDays)

	velocity := make(map[int]int, len(products))
	for _, s := range sales {
		if s.Date.Before(cutoff) {
			continue
		}
		velocity[s.ProductID] += s.Quantity
	}

	rows := make([]ProductVelocity, 0, len(products))
	stock := make([]float64, 0, len(products))
	vel := make([]float64, 0, len(products))
	for _, p := range products {
		v := velocity[p.ID]
		rows = append(rows, ProductVelocity{
			ProductID:         p.ID,
			ProductName:       p.Name,
			Category:          p.Category,
			CurrentStockLevel: p.CurrentStockLevel,
			SalesVelocity30d:  v,
		})
		stock = append(stock, float64(p.CurrentStockLevel))
		vel = append(vel, float64(v))
	}

	if len(rows) < 2 {
		return rows, 0, fmt.Errorf("correlation needs at least 2 products: %w", ErrUndefinedStatistic)
	}
	if stat.Variance(stock, nil) == 0 || stat.Variance(vel, nil) == 0 {
		return rows, 0, fmt.Errorf("stock or velocity has zero variance: %w", ErrUndefinedStatistic)
	}

	return rows, stat.Correlation(stock, vel, nil), nil
}

// maxSaleDate returns the latest sale date in the table. The table must be
// non-empty.
func maxSaleDate(sales []retail.SaleLineItem) time.Time {
	max := sales[0].Date
	for _, s := range sales[1:] {
		if s.Date.After(max) {
			max = s.Date
		}
	}
	return max
}

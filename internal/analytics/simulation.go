package analytics

import (
	"fmt"

	"github.com/storesight-labs/storesight/pkg/retail"
)

// Restocking what-if constants. MissedUnits = AvgDailyUnits * horizon *
// recovery rate for products below the stockout threshold.
const (
	stockoutThreshold = 5
	recoveryRate      = 0.2
	horizonDays       = 30
)

// ProductImpact is one row of the optimization simulation table.
type ProductImpact struct {
	ProductID                 int     `json:"product_id"`
	ProductName               string  `json:"product_name"`
	Category                  string  `json:"category"`
	StandardPrice             float64 `json:"standard_price"`
	CurrentStockLevel         int     `json:"current_stock_level"`
	AvgDailyUnits             float64 `json:"avg_daily_units"`
	EstimatedMissedSalesUnits float64 `json:"estimated_missed_sales_units"`
	EstimatedMissedRevenue    float64 `json:"estimated_missed_revenue"`
}

// OptimizationImpact estimates the revenue recoverable if stockouts were
// eliminated. Per product it computes the average units sold per day and,
// for products below the stockout threshold, projects missed units over a
// 30-day horizon at a 20% recovery rate; missed revenue is missed units at
// standard price. The returned scalar is the summed missed revenue.
//
// The daily average divides by the number of distinct calendar days on which
// the product actually sold, not the full span: days without sales do not
// enter the denominator. Reproducing exactly this averaging is what keeps
// the simulation deterministic across runs.
func OptimizationImpact(sales []retail.SaleLineItem, products []retail.Product) ([]ProductImpact, float64, error) {
	if len(products) == 0 {
		return nil, 0, fmt.Errorf("products table: %w", ErrMissingData)
	}

	type perProduct struct {
		units int
		days  map[string]bool
	}
	byProduct := make(map[int]*perProduct)
	for _, s := range sales {
		pp := byProduct[s.ProductID]
		if pp == nil {
			pp = &perProduct{days: make(map[string]bool)}
			byProduct[s.ProductID] = pp
		}
		pp.units += s.Quantity
		pp.days[s.Date.Format("2006-01-02")] = true
	}

	rows := make([]ProductImpact, 0, len(products))
	var totalUplift float64
	for _, p := range products {
		var avg float64
		if pp := byProduct[p.ID]; pp != nil && len(pp.days) > 0 {
			avg = float64(pp.units) / float64(len(pp.days))
		}

		var missedUnits float64
		if p.CurrentStockLevel < stockoutThreshold {
			missedUnits = avg * horizonDays * recoveryRate
		}
		missedRevenue := missedUnits * p.StandardPrice
		totalUplift += missedRevenue

		rows = append(rows, ProductImpact{
			ProductID:                 p.ID,
			ProductName:               p.Name,
			Category:                  p.Category,
			StandardPrice:             p.StandardPrice,
			CurrentStockLevel:         p.CurrentStockLevel,
			AvgDailyUnits:             avg,
			EstimatedMissedSalesUnits: missedUnits,
			EstimatedMissedRevenue:    missedRevenue,
		})
	}

	return rows, totalUplift, nil
}

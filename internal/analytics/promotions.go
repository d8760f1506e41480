package analytics

import (
	"fmt"
	"time"

	"github.com/storesight-labs/storesight/pkg/retail"
)

// Discount rule constants. Base plus a loyalty boost plus a retention boost
// for lapsed customers, capped.
const (
	baseDiscount      = 0.05
	retentionBoost    = 0.10
	retentionAfterDay = 90
	maxDiscount       = 0.40
)

// loyaltyBoosts maps each tier to its additive discount boost.
var loyaltyBoosts = map[retail.LoyaltyTier]float64{
	retail.TierBronze:   0,
	retail.TierSilver:   0.05,
	retail.TierGold:     0.10,
	retail.TierPlatinum: 0.15,
}

// PromotionRecommendation is one row of the promotion recommendation table.
type PromotionRecommendation struct {
	CustomerID            int                `json:"customer_id"`
	Name                  string             `json:"first_name"`
	LoyaltyStatus         retail.LoyaltyTier `json:"loyalty_status"`
	DaysSinceLastPurchase int                `json:"days_since_last_purchase"`
	RecommendedDiscount   float64            `json:"recommended_discount"`
}

// RecommendPromotions assigns a discount to every customer from their
// loyalty tier and purchase recency relative to evalDate. The rule is pure
// per row: no cross-customer state. evalDate is explicit so the result is a
// deterministic function of its inputs rather than of the process clock.
func RecommendPromotions(customers []retail.Customer, evalDate time.Time) ([]PromotionRecommendation, error) {
	if len(customers) == 0 {
		return nil, fmt.Errorf("customers table: %w", ErrMissingData)
	}

	rows := make([]PromotionRecommendation, 0, len(customers))
	for _, c := range customers {
		days := daysBetween(c.LastPurchaseDate, evalDate)
		rows = append(rows, PromotionRecommendation{
			CustomerID:            c.ID,
			Name:                  c.FirstName,
			LoyaltyStatus:         c.LoyaltyStatus,
			DaysSinceLastPurchase: days,
			RecommendedDiscount:   recommendDiscount(c.LoyaltyStatus, days),
		})
	}
	return rows, nil
}

// recommendDiscount applies the discount rule for a single customer.
func recommendDiscount(tier retail.LoyaltyTier, daysSinceLast int) float64 {
	d := baseDiscount + loyaltyBoosts[tier]
	if daysSinceLast > retentionAfterDay {
		d += retentionBoost
	}
	return min(d, maxDiscount)
}

// daysBetween returns whole days from a to b, negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

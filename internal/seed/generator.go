// Package seed generates a synthetic retail dataset: the five CSV files the
// loader expects, with referentially consistent ids and customer loyalty
// fields derived from the generated sales. Output is fully deterministic
// for a fixed seed.
package seed

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/exp/rand"

	"github.com/storesight-labs/storesight/internal/loader"
	"github.com/storesight-labs/storesight/pkg/retail"
)

// Default dataset shape.
const (
	DefaultSeed         = 42
	DefaultStores       = 5
	DefaultProducts     = 50
	DefaultCustomers    = 200
	DefaultTransactions = 2000
)

var (
	categories = []string{"Electronics", "Apparel", "Home", "Beauty", "Sports"}
	segments   = []string{"HS", "AR", "New", "Loyal"}

	cities = []string{
		"Springfield", "Riverton", "Fairview", "Lakewood", "Ashland",
		"Milton", "Georgetown", "Clayton", "Dayton", "Oakdale",
	}
	states = []string{
		"California", "Texas", "New York", "Florida", "Ohio",
		"Oregon", "Colorado", "Georgia", "Arizona", "Vermont",
	}
	firstNames = []string{
		"Alex", "Sam", "Jordan", "Taylor", "Morgan", "Casey", "Riley",
		"Jamie", "Avery", "Quinn", "Drew", "Reese", "Skyler", "Rowan",
		"Harper", "Emerson", "Finley", "Sage", "Blake", "Dana",
	}
)

// Config controls dataset generation. Zero fields take the defaults; Today
// anchors all generated dates and defaults to the current UTC date.
type Config struct {
	Dir          string
	Seed         uint64
	Stores       int
	Products     int
	Customers    int
	Transactions int
	Today        time.Time
}

func (c *Config) applyDefaults() {
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.Stores <= 0 {
		c.Stores = DefaultStores
	}
	if c.Products <= 0 {
		c.Products = DefaultProducts
	}
	if c.Customers <= 0 {
		c.Customers = DefaultCustomers
	}
	if c.Transactions <= 0 {
		c.Transactions = DefaultTransactions
	}
	if c.Today.IsZero() {
		c.Today = time.Now().UTC().Truncate(24 * time.Hour)
	}
}

// Generate builds a dataset and writes the five CSV files into cfg.Dir,
// creating the directory if needed.
func Generate(cfg Config, logger *slog.Logger) (*retail.Dataset, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.applyDefaults()

	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := build(cfg, rng)

	if err := writeAll(cfg.Dir, ds); err != nil {
		return nil, err
	}

	logger.Info("dataset generated",
		"dir", cfg.Dir,
		"stores", len(ds.Stores),
		"products", len(ds.Products),
		"customers", len(ds.Customers),
		"sales", len(ds.Sales),
		"promotions", len(ds.Promotions),
	)
	return ds, nil
}

// build assembles the in-memory dataset. Customer loyalty fields are derived
// from the generated sales: 1 point per $10 spent plus a bounded random
// bonus, tier by point thresholds, last purchase date from the latest
// transaction (join date when the customer never bought anything).
func build(cfg Config, rng *rand.Rand) *retail.Dataset {
	ds := &retail.Dataset{}

	for i := 0; i < cfg.Stores; i++ {
		ds.Stores = append(ds.Stores, retail.Store{
			ID:       i + 1,
			Name:     "Store_" + cities[rng.Intn(len(cities))],
			Location: states[rng.Intn(len(states))],
			SizeSqFt: 1000 + rng.Intn(4000),
		})
	}

	for i := 0; i < cfg.Products; i++ {
		cat := categories[rng.Intn(len(categories))]
		ds.Products = append(ds.Products, retail.Product{
			ID:                i + 1,
			Name:              fmt.Sprintf("%s_Item_%d", cat, i),
			Category:          cat,
			StandardPrice:     round2(10 + rng.Float64()*490),
			CurrentStockLevel: rng.Intn(100),
		})
	}

	for i := 0; i < cfg.Customers; i++ {
		name := firstNames[rng.Intn(len(firstNames))]
		since := cfg.Today.AddDate(0, 0, -rng.Intn(2*365))
		ds.Customers = append(ds.Customers, retail.Customer{
			ID:        i + 1,
			FirstName: name,
			Email:     fmt.Sprintf("%s%d@example.com", name, i+1),
			Phone:     fmt.Sprintf("555-%04d", rng.Intn(10000)),
			Since:     since,
			SegmentID: segments[rng.Intn(len(segments))],
		})
	}

	for i := 0; i < cfg.Transactions; i++ {
		cust := ds.Customers[rng.Intn(len(ds.Customers))]
		prod := ds.Products[rng.Intn(len(ds.Products))]
		store := ds.Stores[rng.Intn(len(ds.Stores))]

		// Transactions never predate the customer's join date.
		daysActive := int(cfg.Today.Sub(cust.Since).Hours() / 24)
		date := cust.Since
		if daysActive > 0 {
			date = cust.Since.AddDate(0, 0, rng.Intn(daysActive))
		}

		qty := 1 + rng.Intn(4)
		amount := round2(prod.StandardPrice * float64(qty) * (0.8 + rng.Float64()*0.2))

		ds.Sales = append(ds.Sales, retail.SaleLineItem{
			TransactionID: i + 1,
			Date:          date,
			CustomerID:    cust.ID,
			ProductID:     prod.ID,
			StoreID:       store.ID,
			Quantity:      qty,
			TotalAmount:   amount,
		})
	}

	enrichCustomers(ds, rng)
	ds.Promotions = promotionCalendar(cfg.Today)

	return ds
}

func enrichCustomers(ds *retail.Dataset, rng *rand.Rand) {
	type agg struct {
		last  time.Time
		spend float64
	}
	byCustomer := make(map[int]*agg)
	for _, s := range ds.Sales {
		a := byCustomer[s.CustomerID]
		if a == nil {
			a = &agg{}
			byCustomer[s.CustomerID] = a
		}
		a.spend += s.TotalAmount
		if s.Date.After(a.last) {
			a.last = s.Date
		}
	}

	for i := range ds.Customers {
		c := &ds.Customers[i]
		a := byCustomer[c.ID]
		if a == nil {
			c.LastPurchaseDate = c.Since
			c.TotalLoyaltyPoints = 0
			c.LoyaltyStatus = retail.TierBronze
			continue
		}
		c.LastPurchaseDate = a.last
		c.TotalLoyaltyPoints = int(a.spend/10) + rng.Intn(50)
		switch {
		case c.TotalLoyaltyPoints > 1000:
			c.LoyaltyStatus = retail.TierPlatinum
		case c.TotalLoyaltyPoints > 500:
			c.LoyaltyStatus = retail.TierGold
		case c.TotalLoyaltyPoints > 200:
			c.LoyaltyStatus = retail.TierSilver
		default:
			c.LoyaltyStatus = retail.TierBronze
		}
	}
}

// promotionCalendar returns the fixed promotion set, anchored to the year of
// the generation date.
func promotionCalendar(today time.Time) []retail.Promotion {
	y := today.Year()
	date := func(m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []retail.Promotion{
		{ID: 1, Name: "Summer Sale", StartDate: date(time.June, 1), EndDate: date(time.June, 15), DiscountPercentage: 0.20, ApplicableCategory: "Apparel"},
		{ID: 2, Name: "Tech Fest", StartDate: date(time.September, 1), EndDate: date(time.September, 10), DiscountPercentage: 0.15, ApplicableCategory: "Electronics"},
		{ID: 3, Name: "Clearance", StartDate: date(time.November, 20), EndDate: date(time.November, 30), DiscountPercentage: 0.50, ApplicableCategory: retail.WildcardCategory},
		{ID: 4, Name: "Loyalty Bonus", StartDate: date(time.January, 1), EndDate: date(time.December, 31), DiscountPercentage: 0.05, ApplicableCategory: retail.WildcardCategory},
	}
}

func writeAll(dir string, ds *retail.Dataset) error {
	if err := writeCSV(filepath.Join(dir, loader.StoresFile),
		[]string{"store_id", "store_name", "location", "size_sqft"},
		len(ds.Stores), func(i int) []string {
			s := ds.Stores[i]
			return []string{itoa(s.ID), s.Name, s.Location, itoa(s.SizeSqFt)}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, loader.ProductsFile),
		[]string{"product_id", "product_name", "category", "standard_price", "current_stock_level"},
		len(ds.Products), func(i int) []string {
			p := ds.Products[i]
			return []string{itoa(p.ID), p.Name, p.Category, ftoa(p.StandardPrice), itoa(p.CurrentStockLevel)}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, loader.CustomersFile),
		[]string{"customer_id", "first_name", "email", "customer_phone", "customer_since", "loyalty_status", "total_loyalty_points", "last_purchase_date", "segment_id"},
		len(ds.Customers), func(i int) []string {
			c := ds.Customers[i]
			return []string{
				itoa(c.ID), c.FirstName, c.Email, c.Phone,
				c.Since.Format(loader.DateLayout),
				string(c.LoyaltyStatus), itoa(c.TotalLoyaltyPoints),
				c.LastPurchaseDate.Format(loader.DateLayout), c.SegmentID,
			}
		}); err != nil {
		return err
	}

	if err := writeCSV(filepath.Join(dir, loader.SalesFile),
		[]string{"transaction_id", "date", "customer_id", "product_id", "store_id", "quantity", "total_amount"},
		len(ds.Sales), func(i int) []string {
			s := ds.Sales[i]
			return []string{
				itoa(s.TransactionID), s.Date.Format(loader.DateLayout),
				itoa(s.CustomerID), itoa(s.ProductID), itoa(s.StoreID),
				itoa(s.Quantity), ftoa(s.TotalAmount),
			}
		}); err != nil {
		return err
	}

	return writeCSV(filepath.Join(dir, loader.PromotionsFile),
		[]string{"promotion_id", "promotion_name", "start_date", "end_date", "discount_percentage", "applicable_category"},
		len(ds.Promotions), func(i int) []string {
			p := ds.Promotions[i]
			return []string{
				itoa(p.ID), p.Name,
				p.StartDate.Format(loader.DateLayout), p.EndDate.Format(loader.DateLayout),
				ftoa(p.DiscountPercentage), p.ApplicableCategory,
			}
		})
}

func writeCSV(path string, header []string, n int, record func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

package seed

import (
	"errors"
	"testing"
	"time"

	"github.com/storesight-labs/storesight/internal/analytics"
	"github.com/storesight-labs/storesight/internal/loader"
	"github.com/storesight-labs/storesight/internal/testutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Dir:          t.TempDir(),
		Seed:         42,
		Stores:       3,
		Products:     10,
		Customers:    20,
		Transactions: 100,
		Today:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_Shape(t *testing.T) {
	cfg := testConfig(t)

	ds, err := Generate(cfg, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if len(ds.Stores) != cfg.Stores {
		t.Errorf("stores = %d, want %d", len(ds.Stores), cfg.Stores)
	}
	if len(ds.Products) != cfg.Products {
		t.Errorf("products = %d, want %d", len(ds.Products), cfg.Products)
	}
	if len(ds.Customers) != cfg.Customers {
		t.Errorf("customers = %d, want %d", len(ds.Customers), cfg.Customers)
	}
	if len(ds.Sales) != cfg.Transactions {
		t.Errorf("sales = %d, want %d", len(ds.Sales), cfg.Transactions)
	}
	if len(ds.Promotions) != 4 {
		t.Errorf("promotions = %d, want 4", len(ds.Promotions))
	}
}

func TestGenerate_ReferentialIntegrity(t *testing.T) {
	cfg := testConfig(t)

	ds, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	customerSince := make(map[int]time.Time, len(ds.Customers))
	for _, c := range ds.Customers {
		customerSince[c.ID] = c.Since
	}
	products := make(map[int]bool, len(ds.Products))
	for _, p := range ds.Products {
		products[p.ID] = true
	}
	stores := make(map[int]bool, len(ds.Stores))
	for _, s := range ds.Stores {
		stores[s.ID] = true
	}

	for _, s := range ds.Sales {
		since, ok := customerSince[s.CustomerID]
		if !ok {
			t.Fatalf("sale %d references unknown customer %d", s.TransactionID, s.CustomerID)
		}
		if s.Date.Before(since) {
			t.Errorf("sale %d predates customer %d join date", s.TransactionID, s.CustomerID)
		}
		if !products[s.ProductID] {
			t.Errorf("sale %d references unknown product %d", s.TransactionID, s.ProductID)
		}
		if !stores[s.StoreID] {
			t.Errorf("sale %d references unknown store %d", s.TransactionID, s.StoreID)
		}
		if s.Quantity < 1 || s.Quantity > 4 {
			t.Errorf("sale %d quantity %d out of [1, 4]", s.TransactionID, s.Quantity)
		}
		if s.TotalAmount <= 0 {
			t.Errorf("sale %d non-positive amount %v", s.TransactionID, s.TotalAmount)
		}
	}

	for _, c := range ds.Customers {
		if !c.LoyaltyStatus.Valid() {
			t.Errorf("customer %d has invalid tier %q", c.ID, c.LoyaltyStatus)
		}
		if c.LastPurchaseDate.Before(c.Since) {
			t.Errorf("customer %d last purchase predates join date", c.ID)
		}
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	cfgA := testConfig(t)
	cfgB := testConfig(t)

	a, err := Generate(cfgA, nil)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	b, err := Generate(cfgB, nil)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	for i := range a.Sales {
		if a.Sales[i] != b.Sales[i] {
			t.Fatalf("sale %d differs across runs: %+v vs %+v", i, a.Sales[i], b.Sales[i])
		}
	}
	for i := range a.Customers {
		if a.Customers[i] != b.Customers[i] {
			t.Fatalf("customer %d differs across runs", i)
		}
	}

	cfgC := testConfig(t)
	cfgC.Seed = 7
	c, err := Generate(cfgC, nil)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	same := true
	for i := range a.Sales {
		if a.Sales[i] != c.Sales[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sales")
	}
}

func TestGenerate_RoundTripsThroughLoader(t *testing.T) {
	cfg := testConfig(t)

	gen, err := Generate(cfg, nil)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	ds, err := loader.Load(cfg.Dir, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Load() failed on generated output: %v", err)
	}

	if len(ds.Sales) != len(gen.Sales) {
		t.Fatalf("loaded %d sales, generated %d", len(ds.Sales), len(gen.Sales))
	}
	if ds.Customers[0] != gen.Customers[0] {
		t.Errorf("first customer did not round-trip: %+v vs %+v", ds.Customers[0], gen.Customers[0])
	}

	// The generated dataset must be analyzable end to end. An undefined
	// correlation is acceptable for a small sample, missing data is not.
	if _, _, err := analytics.InventoryCorrelation(ds.Sales, ds.Products); err != nil && !errors.Is(err, analytics.ErrUndefinedStatistic) {
		t.Errorf("InventoryCorrelation on generated data: %v", err)
	}
	if _, _, err := analytics.MissedOpportunities(ds.Sales, ds.Products, ds.Customers, 0); err != nil {
		t.Errorf("MissedOpportunities on generated data: %v", err)
	}
	if _, _, err := analytics.OptimizationImpact(ds.Sales, ds.Products); err != nil {
		t.Errorf("OptimizationImpact on generated data: %v", err)
	}
	if _, err := analytics.RecommendPromotions(ds.Customers, cfg.Today); err != nil {
		t.Errorf("RecommendPromotions on generated data: %v", err)
	}
	if _, _, err := analytics.FutureSpend(ds.Sales, ds.Customers, analytics.SpendOptions{Trees: 10}); err != nil {
		t.Errorf("FutureSpend on generated data: %v", err)
	}
}

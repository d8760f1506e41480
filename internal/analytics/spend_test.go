package analytics

import (
	"errors"
	"testing"

	"github.com/storesight-labs/storesight/pkg/retail"
)

func spendFixture() ([]retail.SaleLineItem, []retail.Customer) {
	customers := []retail.Customer{
		{ID: 1, FirstName: "Ada", LoyaltyStatus: retail.TierPlatinum, TotalLoyaltyPoints: 900},
		{ID: 2, FirstName: "Ben", LoyaltyStatus: retail.TierSilver, TotalLoyaltyPoints: 120},
		{ID: 3, FirstName: "Cleo", LoyaltyStatus: retail.TierBronze, TotalLoyaltyPoints: 10},
		{ID: 4, FirstName: "Dov", LoyaltyStatus: retail.TierGold, TotalLoyaltyPoints: 400},
	}
	sales := []retail.SaleLineItem{
		{TransactionID: 1, Date: day(2026, 8, 29), CustomerID: 1, ProductID: 1, Quantity: 2, TotalAmount: 240},
		{TransactionID: 2, Date: day(2026, 8, 1), CustomerID: 1, ProductID: 2, Quantity: 1, TotalAmount: 80},
		{TransactionID: 3, Date: day(2026, 6, 15), CustomerID: 2, ProductID: 1, Quantity: 1, TotalAmount: 120},
		{TransactionID: 4, Date: day(2026, 8, 30), CustomerID: 3, ProductID: 3, Quantity: 3, TotalAmount: 45},
	}
	return sales, customers
}

func TestFutureSpend_RowPerCustomerInOrder(t *testing.T) {
	sales, customers := spendFixture()

	rows, model, err := FutureSpend(sales, customers, SpendOptions{Trees: 20})
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}
	if model == nil {
		t.Fatal("expected a fitted model")
	}
	if model.NumTrees() != 20 {
		t.Errorf("NumTrees() = %d, want 20", model.NumTrees())
	}
	if len(rows) != len(customers) {
		t.Fatalf("expected %d rows, got %d", len(customers), len(rows))
	}
	for i, r := range rows {
		if r.CustomerID != customers[i].ID {
			t.Errorf("row %d: customer %d, want %d", i, r.CustomerID, customers[i].ID)
		}
		if r.PredictedFutureSpend < 0 {
			t.Errorf("customer %d: negative prediction %v", r.CustomerID, r.PredictedFutureSpend)
		}
		if r.FutureSpendTarget < 0 {
			t.Errorf("customer %d: negative target %v", r.CustomerID, r.FutureSpendTarget)
		}
	}
}

func TestFutureSpend_DeterministicForSeed(t *testing.T) {
	sales, customers := spendFixture()
	opts := SpendOptions{Seed: 7, Trees: 15}

	first, _, err := FutureSpend(sales, customers, opts)
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}
	second, _, err := FutureSpend(sales, customers, opts)
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("row %d differs across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFutureSpend_SeedChangesTarget(t *testing.T) {
	sales, customers := spendFixture()

	a, _, err := FutureSpend(sales, customers, SpendOptions{Seed: 1, Trees: 5})
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}
	b, _, err := FutureSpend(sales, customers, SpendOptions{Seed: 2, Trees: 5})
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}

	same := true
	for i := range a {
		if a[i].FutureSpendTarget != b[i].FutureSpendTarget {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical targets")
	}
}

func TestFutureSpend_CustomersWithoutSalesAreKept(t *testing.T) {
	sales, customers := spendFixture()
	customers = append(customers, retail.Customer{ID: 99, FirstName: "Eve", LoyaltyStatus: retail.TierBronze})

	rows, _, err := FutureSpend(sales, customers, SpendOptions{Trees: 10})
	if err != nil {
		t.Fatalf("FutureSpend() failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[4].CustomerID != 99 {
		t.Errorf("last row customer = %d, want 99", rows[4].CustomerID)
	}
}

func TestFutureSpend_NoCustomers(t *testing.T) {
	sales, _ := spendFixture()

	rows, model, err := FutureSpend(sales, nil, SpendOptions{})
	if !errors.Is(err, ErrDegenerateTraining) {
		t.Fatalf("expected ErrDegenerateTraining, got %v", err)
	}
	if rows != nil || model != nil {
		t.Error("expected no rows and no model on degenerate input")
	}
}

func TestCustomerMetrics(t *testing.T) {
	sales, _ := spendFixture()

	metrics := customerMetrics(sales)

	ada := metrics[1]
	if ada.frequency != 2 {
		t.Errorf("frequency = %v, want 2", ada.frequency)
	}
	if ada.totalSpend != 320 {
		t.Errorf("total spend = %v, want 320", ada.totalSpend)
	}
	// Latest sale in the table is 2026-08-30; Ada last bought on 08-29.
	if ada.recency != 1 {
		t.Errorf("recency = %v, want 1", ada.recency)
	}

	cleo := metrics[3]
	if cleo.recency != 0 {
		t.Errorf("recency of the most recent buyer = %v, want 0", cleo.recency)
	}

	if _, ok := metrics[4]; ok {
		t.Error("customer without sales should have no metrics entry")
	}
}

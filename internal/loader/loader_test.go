package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storesight-labs/storesight/internal/analytics"
	"github.com/storesight-labs/storesight/internal/testutil"
	"github.com/storesight-labs/storesight/pkg/retail"
)

const (
	storesCSV = `store_id,store_name,location,size_sqft
1,Downtown,Springfield,12000
2,Mall,Shelbyville,8000
`
	productsCSV = `product_id,product_name,category,standard_price,current_stock_level
1,Desk Lamp,Home,34.50,3
2,Notebook,Stationery,4.99,120
`
	customersCSV = `customer_id,first_name,email,customer_phone,customer_since,loyalty_status,total_loyalty_points,last_purchase_date,segment_id
1,Ada,ada@example.com,555-0101,2022-03-14,Platinum,1200,2026-08-29,SEG-1
2,Ben,ben@example.com,555-0102,2024-11-02,Bronze,40,2026-06-01,SEG-2
`
	salesCSV = `transaction_id,date,customer_id,product_id,store_id,quantity,total_amount
1,2026-08-29,1,1,1,2,69.00
2,2026-08-30,2,2,2,1,4.99
`
	promotionsCSV = `promotion_id,promotion_name,start_date,end_date,discount_percentage,applicable_category
1,Summer Sale,2026-07-01,2026-08-31,15,All
`
)

func writeFixture(t *testing.T, dir string, overrides map[string]string) {
	t.Helper()
	files := map[string]string{
		StoresFile:     storesCSV,
		ProductsFile:   productsCSV,
		CustomersFile:  customersCSV,
		SalesFile:      salesCSV,
		PromotionsFile: promotionsCSV,
	}
	for name, body := range overrides {
		files[name] = body
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, nil)

	ds, err := Load(dir, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(ds.Stores) != 2 || len(ds.Products) != 2 || len(ds.Customers) != 2 || len(ds.Sales) != 2 || len(ds.Promotions) != 1 {
		t.Fatalf("unexpected table sizes: %d/%d/%d/%d/%d",
			len(ds.Stores), len(ds.Products), len(ds.Customers), len(ds.Sales), len(ds.Promotions))
	}

	if ds.Products[0].StandardPrice != 34.50 {
		t.Errorf("product price = %v, want 34.50", ds.Products[0].StandardPrice)
	}
	if ds.Customers[0].LoyaltyStatus != retail.TierPlatinum {
		t.Errorf("loyalty tier = %q, want Platinum", ds.Customers[0].LoyaltyStatus)
	}
	want := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if !ds.Sales[0].Date.Equal(want) {
		t.Errorf("sale date = %v, want %v", ds.Sales[0].Date, want)
	}
	if ds.Promotions[0].ApplicableCategory != retail.WildcardCategory {
		t.Errorf("applicable category = %q, want %q", ds.Promotions[0].ApplicableCategory, retail.WildcardCategory)
	}
}

func TestLoad_HeaderCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		StoresFile: "Store_ID,Store_Name,Location,Size_SqFt\n1,Downtown,Springfield,12000\n",
	})

	ds, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if ds.Stores[0].Name != "Downtown" {
		t.Errorf("store name = %q, want Downtown", ds.Stores[0].Name)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, map[string]string{
		ProductsFile: "product_id,product_name,category,standard_price\n1,Desk Lamp,Home,34.50\n",
	})

	_, err := Load(dir, nil)
	if !errors.Is(err, analytics.ErrMissingData) {
		t.Fatalf("expected ErrMissingData for a missing column, got %v", err)
	}
}

func TestLoad_EmptyFileAndNoRows(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty file", ""},
		{"header only", "transaction_id,date,customer_id,product_id,store_id,quantity,total_amount\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, map[string]string{SalesFile: tt.body})

			_, err := Load(dir, nil)
			if !errors.Is(err, analytics.ErrMissingData) {
				t.Fatalf("expected ErrMissingData, got %v", err)
			}
		})
	}
}

func TestLoad_BadValues(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			"bad date",
			SalesFile,
			"transaction_id,date,customer_id,product_id,store_id,quantity,total_amount\n1,29/08/2026,1,1,1,2,69.00\n",
		},
		{
			"negative stock",
			ProductsFile,
			"product_id,product_name,category,standard_price,current_stock_level\n1,Desk Lamp,Home,34.50,-4\n",
		},
		{
			"unknown loyalty tier",
			CustomersFile,
			"customer_id,first_name,email,customer_phone,customer_since,loyalty_status,total_loyalty_points,last_purchase_date,segment_id\n1,Ada,a@x.com,555,2022-03-14,Diamond,10,2026-08-29,SEG-1\n",
		},
		{
			"non-numeric quantity",
			SalesFile,
			"transaction_id,date,customer_id,product_id,store_id,quantity,total_amount\n1,2026-08-29,1,1,1,two,69.00\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFixture(t, dir, map[string]string{tt.file: tt.body})

			if _, err := Load(dir, nil); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, nil)
	if err := os.Remove(filepath.Join(dir, PromotionsFile)); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir, nil); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}

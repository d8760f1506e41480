// Package loader parses the five retail CSV sources into typed in-memory
// tables, normalizing date-bearing columns. One Load call materializes the
// whole dataset for an analysis session; nothing is streamed or re-read
// afterwards.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/storesight-labs/storesight/internal/analytics"
	"github.com/storesight-labs/storesight/pkg/retail"
)

// Source file names inside the data directory.
const (
	StoresFile     = "stores.csv"
	ProductsFile   = "products.csv"
	CustomersFile  = "customer_details.csv"
	SalesFile      = "store_sales_line_items.csv"
	PromotionsFile = "promotion_details.csv"
)

// DateLayout is the on-disk date format for all date columns.
const DateLayout = "2006-01-02"

// Load reads the five CSV files from dir into a Dataset. Referential
// integrity between the tables is not checked here; joins downstream drop
// dangling references.
func Load(dir string, logger *slog.Logger) (*retail.Dataset, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ds := &retail.Dataset{}

	var err error
	if ds.Stores, err = loadTable(filepath.Join(dir, StoresFile), parseStore); err != nil {
		return nil, err
	}
	if ds.Products, err = loadTable(filepath.Join(dir, ProductsFile), parseProduct); err != nil {
		return nil, err
	}
	if ds.Customers, err = loadTable(filepath.Join(dir, CustomersFile), parseCustomer); err != nil {
		return nil, err
	}
	if ds.Sales, err = loadTable(filepath.Join(dir, SalesFile), parseSale); err != nil {
		return nil, err
	}
	if ds.Promotions, err = loadTable(filepath.Join(dir, PromotionsFile), parsePromotion); err != nil {
		return nil, err
	}

	logger.Debug("dataset loaded",
		"dir", dir,
		"stores", len(ds.Stores),
		"products", len(ds.Products),
		"customers", len(ds.Customers),
		"sales", len(ds.Sales),
		"promotions", len(ds.Promotions),
	)
	return ds, nil
}

// row gives a record parser named access to the columns of one CSV line.
type row struct {
	header map[string]int
	fields []string
	line   int
}

func (r row) get(col string) (string, error) {
	i, ok := r.header[col]
	if !ok || i >= len(r.fields) {
		return "", fmt.Errorf("column %q: %w", col, analytics.ErrMissingData)
	}
	return strings.TrimSpace(r.fields[i]), nil
}

func (r row) getInt(col string) (int, error) {
	s, err := r.get(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("line %d, column %q: %q is not an integer", r.line, col, s)
	}
	return v, nil
}

func (r row) getFloat(col string) (float64, error) {
	s, err := r.get(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d, column %q: %q is not a number", r.line, col, s)
	}
	return v, nil
}

func (r row) getDate(col string) (time.Time, error) {
	s, err := r.get(col)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("line %d, column %q: %q is not a %s date", r.line, col, s, DateLayout)
	}
	return t, nil
}

// loadTable reads one CSV file and parses every data row with parse. An
// empty file or a file with a header but no data rows is a missing-data
// error: every analysis needs all five tables present.
func loadTable[T any](path string, parse func(row) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty: %w", path, analytics.ErrMissingData)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	header := make(map[string]int, len(head))
	for i, col := range head {
		header[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var out []T
	line := 1
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line++

		rec, err := parse(row{header: header, fields: fields, line: line})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, rec)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s has no data rows: %w", path, analytics.ErrMissingData)
	}
	return out, nil
}

func parseStore(r row) (retail.Store, error) {
	var s retail.Store
	var err error
	if s.ID, err = r.getInt("store_id"); err != nil {
		return s, err
	}
	if s.Name, err = r.get("store_name"); err != nil {
		return s, err
	}
	if s.Location, err = r.get("location"); err != nil {
		return s, err
	}
	if s.SizeSqFt, err = r.getInt("size_sqft"); err != nil {
		return s, err
	}
	return s, nil
}

func parseProduct(r row) (retail.Product, error) {
	var p retail.Product
	var err error
	if p.ID, err = r.getInt("product_id"); err != nil {
		return p, err
	}
	if p.Name, err = r.get("product_name"); err != nil {
		return p, err
	}
	if p.Category, err = r.get("category"); err != nil {
		return p, err
	}
	if p.StandardPrice, err = r.getFloat("standard_price"); err != nil {
		return p, err
	}
	if p.CurrentStockLevel, err = r.getInt("current_stock_level"); err != nil {
		return p, err
	}
	if p.CurrentStockLevel < 0 {
		return p, fmt.Errorf("line %d: negative stock level %d for product %d", r.line, p.CurrentStockLevel, p.ID)
	}
	return p, nil
}

func parseCustomer(r row) (retail.Customer, error) {
	var c retail.Customer
	var err error
	if c.ID, err = r.getInt("customer_id"); err != nil {
		return c, err
	}
	if c.FirstName, err = r.get("first_name"); err != nil {
		return c, err
	}
	if c.Email, err = r.get("email"); err != nil {
		return c, err
	}
	if c.Phone, err = r.get("customer_phone"); err != nil {
		return c, err
	}
	if c.Since, err = r.getDate("customer_since"); err != nil {
		return c, err
	}
	tier, err := r.get("loyalty_status")
	if err != nil {
		return c, err
	}
	c.LoyaltyStatus = retail.LoyaltyTier(tier)
	if !c.LoyaltyStatus.Valid() {
		return c, fmt.Errorf("line %d: unknown loyalty tier %q", r.line, tier)
	}
	if c.TotalLoyaltyPoints, err = r.getInt("total_loyalty_points"); err != nil {
		return c, err
	}
	if c.LastPurchaseDate, err = r.getDate("last_purchase_date"); err != nil {
		return c, err
	}
	if c.SegmentID, err = r.get("segment_id"); err != nil {
		return c, err
	}
	return c, nil
}

func parseSale(r row) (retail.SaleLineItem, error) {
	var s retail.SaleLineItem
	var err error
	if s.TransactionID, err = r.getInt("transaction_id"); err != nil {
		return s, err
	}
	if s.Date, err = r.getDate("date"); err != nil {
		return s, err
	}
	if s.CustomerID, err = r.getInt("customer_id"); err != nil {
		return s, err
	}
	if s.ProductID, err = r.getInt("product_id"); err != nil {
		return s, err
	}
	if s.StoreID, err = r.getInt("store_id"); err != nil {
		return s, err
	}
	if s.Quantity, err = r.getInt("quantity"); err != nil {
		return s, err
	}
	if s.TotalAmount, err = r.getFloat("total_amount"); err != nil {
		return s, err
	}
	return s, nil
}

func parsePromotion(r row) (retail.Promotion, error) {
	var p retail.Promotion
	var err error
	if p.ID, err = r.getInt("promotion_id"); err != nil {
		return p, err
	}
	if p.Name, err = r.get("promotion_name"); err != nil {
		return p, err
	}
	if p.StartDate, err = r.getDate("start_date"); err != nil {
		return p, err
	}
	if p.EndDate, err = r.getDate("end_date"); err != nil {
		return p, err
	}
	if p.DiscountPercentage, err = r.getFloat("discount_percentage"); err != nil {
		return p, err
	}
	if p.ApplicableCategory, err = r.get("applicable_category"); err != nil {
		return p, err
	}
	return p, nil
}

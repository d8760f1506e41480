package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storesight-labs/storesight/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var (
		stores       int
		products     int
		customers    int
		transactions int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic dataset",
		Long: `Generate the five CSV files (stores, products, customers, sale line
items, promotions) into the data directory. Output is deterministic for a
fixed --seed.`,
		Example: `  # Default dataset (5 stores, 50 products, 200 customers, 2000 sales)
  storesight seed

  # A bigger dataset in a custom directory
  storesight seed --data-dir ./fixtures --customers 1000 --transactions 10000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutStore(cmd)

			ds, err := seed.Generate(seed.Config{
				Dir:          cmdCtx.Cfg.DataDir,
				Seed:         cmdCtx.Cfg.Seed,
				Stores:       stores,
				Products:     products,
				Customers:    customers,
				Transactions: transactions,
			}, cmdCtx.Logger)
			if err != nil {
				return fmt.Errorf("generate dataset: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Generated %d stores, %d products, %d customers, %d sales, %d promotions in %s\n",
				len(ds.Stores), len(ds.Products), len(ds.Customers), len(ds.Sales), len(ds.Promotions),
				cmdCtx.Cfg.DataDir)
			return nil
		},
	}

	cmd.Flags().IntVar(&stores, "stores", 0, "Number of stores to generate")
	cmd.Flags().IntVar(&products, "products", 0, "Number of products to generate")
	cmd.Flags().IntVar(&customers, "customers", 0, "Number of customers to generate")
	cmd.Flags().IntVar(&transactions, "transactions", 0, "Number of sale line items to generate")

	return cmd
}

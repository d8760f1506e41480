package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/storesight-labs/storesight/internal/analytics"
	"github.com/storesight-labs/storesight/internal/loader"
	"github.com/storesight-labs/storesight/pkg/retail"
)

// Analysis names accepted as arguments to analyze.
const (
	AnalysisCorrelation   = "correlation"
	AnalysisOpportunities = "opportunities"
	AnalysisSimulation    = "simulation"
	AnalysisPredictions   = "predictions"
	AnalysisPromotions    = "promotions"
)

var analysisOrder = []string{
	AnalysisCorrelation,
	AnalysisOpportunities,
	AnalysisSimulation,
	AnalysisPredictions,
	AnalysisPromotions,
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [analysis]...",
		Short: "Run analyses over the loaded dataset",
		Long: `Load the five CSV tables from the data directory and run the selected
analyses (all of them when none are named). Each run is recorded in the
run-history database.

Analyses:
  correlation     inventory level vs 30-day sales velocity (Pearson)
  opportunities   customers who bought products that are now low in stock
  simulation      revenue uplift if stockouts were eliminated
  predictions     per-customer future spend (RFM + regression ensemble)
  promotions      per-customer recommended discount`,
		Example: `  # Run everything
  storesight analyze

  # Only the inventory correlation, as JSON
  storesight analyze correlation -o json

  # Pin the evaluation date for reproducible recency
  storesight analyze promotions --eval-date 2026-08-01`,
		ValidArgs: analysisOrder,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args)
		},
	}
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := loader.Load(cmdCtx.Cfg.DataDir, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	evalDate, err := cmdCtx.Cfg.EvalTime()
	if err != nil {
		return err
	}

	selected := args
	if len(selected) == 0 {
		selected = analysisOrder
	}

	w := cmd.OutOrStdout()
	for _, name := range selected {
		if err := runRecorded(cmdCtx, w, name, ds, evalDate); err != nil {
			return err
		}
	}
	return nil
}

// runRecorded executes one analysis and records it in the run-history
// store, whether it succeeds or fails.
func runRecorded(ctx *CommandContext, w io.Writer, name string, ds *retail.Dataset, evalDate time.Time) error {
	run, err := ctx.Store.BeginRun(name)
	if err != nil {
		return err
	}

	headline, rows, err := dispatch(ctx, w, name, ds, evalDate)
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	if recErr := ctx.Store.CompleteRun(run.ID, headline, rows, errMsg); recErr != nil {
		ctx.Logger.Warn("failed to record run", "analysis", name, "error", recErr)
	}
	return err
}

func dispatch(ctx *CommandContext, w io.Writer, name string, ds *retail.Dataset, evalDate time.Time) (*float64, int, error) {
	switch name {
	case AnalysisCorrelation:
		return analyzeCorrelation(ctx, w, ds)
	case AnalysisOpportunities:
		return analyzeOpportunities(ctx, w, ds)
	case AnalysisSimulation:
		return analyzeSimulation(ctx, w, ds)
	case AnalysisPredictions:
		return analyzePredictions(ctx, w, ds)
	case AnalysisPromotions:
		return analyzePromotions(ctx, w, ds, evalDate)
	default:
		return nil, 0, fmt.Errorf("unknown analysis: %s", name)
	}
}

func analyzeCorrelation(ctx *CommandContext, w io.Writer, ds *retail.Dataset) (*float64, int, error) {
	rows, corr, err := analytics.InventoryCorrelation(ds.Sales, ds.Products)
	undefined := errors.Is(err, analytics.ErrUndefinedStatistic)
	if err != nil && !undefined {
		return nil, 0, err
	}

	fmt.Fprintln(w, "== Inventory / Sales Correlation ==")
	header := table.Row{"Product ID", "Product", "Category", "Stock", "Velocity 30d"}
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.ProductID, r.ProductName, r.Category, r.CurrentStockLevel, r.SalesVelocity30d}
	}
	payload := struct {
		Rows        []analytics.ProductVelocity `json:"rows"`
		Correlation *float64                    `json:"correlation"`
	}{Rows: rows}
	if !undefined {
		payload.Correlation = &corr
	}
	if err := renderRows(w, ctx.Cfg.OutputFormat, header, out, payload); err != nil {
		return nil, 0, err
	}

	if undefined {
		fmt.Fprintln(w, "Correlation: undefined (zero variance in stock or velocity)")
		return nil, len(rows), nil
	}
	fmt.Fprintf(w, "Correlation (stock vs velocity): %.4f\n", corr)
	return &corr, len(rows), nil
}

func analyzeOpportunities(ctx *CommandContext, w io.Writer, ds *retail.Dataset) (*float64, int, error) {
	rows, lowStock, err := analytics.MissedOpportunities(ds.Sales, ds.Products, ds.Customers, ctx.Cfg.LowStockThreshold)
	if err != nil {
		return nil, 0, err
	}

	fmt.Fprintln(w, "== Missed Opportunities ==")
	header := table.Row{"Customer ID", "Name", "Tier", "Segment", "Potential"}
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.ID, r.FirstName, r.LoyaltyStatus, r.SegmentID, r.PotentialSpendIncrease}
	}
	payload := struct {
		Rows          []analytics.OpportunityCustomer `json:"rows"`
		LowStockCount int                             `json:"low_stock_count"`
	}{rows, lowStock}
	if err := renderRows(w, ctx.Cfg.OutputFormat, header, out, payload); err != nil {
		return nil, 0, err
	}
	fmt.Fprintf(w, "Low-stock products: %d\n", lowStock)

	headline := float64(lowStock)
	return &headline, len(rows), nil
}

func analyzeSimulation(ctx *CommandContext, w io.Writer, ds *retail.Dataset) (*float64, int, error) {
	rows, uplift, err := analytics.OptimizationImpact(ds.Sales, ds.Products)
	if err != nil {
		return nil, 0, err
	}

	fmt.Fprintln(w, "== Optimization Impact ==")
	header := table.Row{"Product ID", "Product", "Stock", "Avg Daily Units", "Missed Units", "Missed Revenue"}
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{
			r.ProductID, r.ProductName, r.CurrentStockLevel,
			fmt.Sprintf("%.2f", r.AvgDailyUnits),
			fmt.Sprintf("%.2f", r.EstimatedMissedSalesUnits),
			fmt.Sprintf("$%.2f", r.EstimatedMissedRevenue),
		}
	}
	payload := struct {
		Rows        []analytics.ProductImpact `json:"rows"`
		TotalUplift float64                   `json:"total_potential_uplift"`
	}{rows, uplift}
	if err := renderRows(w, ctx.Cfg.OutputFormat, header, out, payload); err != nil {
		return nil, 0, err
	}
	fmt.Fprintf(w, "Total potential uplift: $%.2f\n", uplift)
	return &uplift, len(rows), nil
}

func analyzePredictions(ctx *CommandContext, w io.Writer, ds *retail.Dataset) (*float64, int, error) {
	rows, _, err := analytics.FutureSpend(ds.Sales, ds.Customers, analytics.SpendOptions{
		Seed:  ctx.Cfg.Seed,
		Trees: ctx.Cfg.Trees,
	})
	if err != nil {
		return nil, 0, err
	}

	fmt.Fprintln(w, "== Future Spend Predictions ==")
	header := table.Row{"Customer ID", "Name", "Predicted Spend", "Training Target"}
	out := make([]table.Row, len(rows))
	var sum float64
	for i, r := range rows {
		out[i] = table.Row{
			r.CustomerID, r.Name,
			fmt.Sprintf("$%.2f", r.PredictedFutureSpend),
			fmt.Sprintf("$%.2f", r.FutureSpendTarget),
		}
		sum += r.PredictedFutureSpend
	}
	payload := struct {
		Rows []analytics.SpendPrediction `json:"rows"`
	}{rows}
	if err := renderRows(w, ctx.Cfg.OutputFormat, header, out, payload); err != nil {
		return nil, 0, err
	}

	avg := sum / float64(len(rows))
	fmt.Fprintf(w, "Average predicted spend: $%.2f\n", avg)
	return &avg, len(rows), nil
}

func analyzePromotions(ctx *CommandContext, w io.Writer, ds *retail.Dataset, evalDate time.Time) (*float64, int, error) {
	rows, err := analytics.RecommendPromotions(ds.Customers, evalDate)
	if err != nil {
		return nil, 0, err
	}

	fmt.Fprintln(w, "== Promotion Recommendations ==")
	header := table.Row{"Customer ID", "Name", "Tier", "Days Since Purchase", "Discount"}
	out := make([]table.Row, len(rows))
	var sum float64
	for i, r := range rows {
		out[i] = table.Row{
			r.CustomerID, r.Name, r.LoyaltyStatus, r.DaysSinceLastPurchase,
			fmt.Sprintf("%.0f%%", r.RecommendedDiscount*100),
		}
		sum += r.RecommendedDiscount
	}
	payload := struct {
		Rows     []analytics.PromotionRecommendation `json:"rows"`
		EvalDate string                              `json:"eval_date"`
	}{rows, evalDate.Format("2006-01-02")}
	if err := renderRows(w, ctx.Cfg.OutputFormat, header, out, payload); err != nil {
		return nil, 0, err
	}

	avg := sum / float64(len(rows))
	fmt.Fprintf(w, "Average recommended discount: %.1f%%\n", avg*100)
	return &avg, len(rows), nil
}

package ui

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/storesight-labs/storesight/internal/analytics"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleOverview(w http.ResponseWriter, _ *http.Request) {
	activePromotions := 0
	for _, p := range s.dataset.Promotions {
		if p.Active(s.evalDate) {
			activePromotions++
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"stores":            len(s.dataset.Stores),
		"products":          len(s.dataset.Products),
		"customers":         len(s.dataset.Customers),
		"sales":             len(s.dataset.Sales),
		"promotions":        len(s.dataset.Promotions),
		"active_promotions": activePromotions,
		"total_revenue":     s.dataset.TotalRevenue(),
		"eval_date":         s.evalDate.Format("2006-01-02"),
	})
}

func (s *Server) handleCorrelation(w http.ResponseWriter, _ *http.Request) {
	rows, corr, err := analytics.InventoryCorrelation(s.dataset.Sales, s.dataset.Products)
	if errors.Is(err, analytics.ErrUndefinedStatistic) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"rows":        rows,
			"correlation": nil,
			"undefined":   true,
		})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":        rows,
		"correlation": corr,
	})
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	threshold := s.lowStockThreshold
	if q := r.URL.Query().Get("threshold"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v <= 0 {
			s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "threshold must be a positive integer"})
			return
		}
		threshold = v
	}

	rows, lowStock, err := analytics.MissedOpportunities(s.dataset.Sales, s.dataset.Products, s.dataset.Customers, threshold)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":            rows,
		"low_stock_count": lowStock,
		"threshold":       threshold,
	})
}

func (s *Server) handleSimulation(w http.ResponseWriter, _ *http.Request) {
	rows, uplift, err := analytics.OptimizationImpact(s.dataset.Sales, s.dataset.Products)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":                   rows,
		"total_potential_uplift": uplift,
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, _ *http.Request) {
	rows, _, err := analytics.FutureSpend(s.dataset.Sales, s.dataset.Customers, analytics.SpendOptions{
		Seed:  s.seed,
		Trees: s.trees,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) handlePromotions(w http.ResponseWriter, _ *http.Request) {
	rows, err := analytics.RecommendPromotions(s.dataset.Customers, s.evalDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"rows":      rows,
		"eval_date": s.evalDate.Format("2006-01-02"),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps analysis failure modes onto status codes: data-shape
// problems are 422, anything else is 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analytics.ErrMissingData),
		errors.Is(err, analytics.ErrUndefinedStatistic),
		errors.Is(err, analytics.ErrDegenerateTraining):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]any{"error": err.Error()})
}

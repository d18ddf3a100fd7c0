package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/steamlytics/steamglass/internal/domain"
	"github.com/steamlytics/steamglass/internal/report"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	store   domain.Store
	cache   domain.Cache
	builder *report.Builder
	version string
}

// NewHandler creates a new API handler.
func NewHandler(store domain.Store, cache domain.Cache, builder *report.Builder, version string) *Handler {
	return &Handler{
		store:   store,
		cache:   cache,
		builder: builder,
		version: version,
	}
}

// Health returns service health, degraded when a dependency fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	ds := h.store.Snapshot()
	if ds == nil || len(ds.Transactions) == 0 {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListReports returns the available view names.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"views": report.ViewNames(),
	})
}

// GetReport renders one view with the query-string filter applied.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := chi.URLParam(r, "view")

	spec, err := parseFilterSpec(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	raw, err := h.builder.Build(ctx, view, spec)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrUnknownView):
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": fmt.Sprintf("unknown view %q", view),
			})
		case errors.Is(err, report.ErrBadExpression):
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
		default:
			slog.Error("failed to build report", "view", view, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to build report",
			})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// SimulateRequest is the request body for POST /simulate.
type SimulateRequest struct {
	ChurnReductionPct float64 `json:"churnReductionPct"`
	PriceIncreasePct  float64 `json:"priceIncreasePct"`
	MAUGrowthPct      float64 `json:"mauGrowthPct"`
}

// Simulate runs the what-if model. Levers come from the JSON body,
// the filter from the query string like every report endpoint.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec, err := parseFilterSpec(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	levers := domain.ScenarioLevers{
		ChurnReductionPct: req.ChurnReductionPct,
		PriceIncreasePct:  req.PriceIncreasePct,
		MAUGrowthPct:      req.MAUGrowthPct,
	}

	result, err := h.builder.Simulate(ctx, spec, levers)
	if err != nil {
		if errors.Is(err, report.ErrBadExpression) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		slog.Error("simulation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "simulation failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// FilterOptions returns the selectable values for the filter bar.
func (h *Handler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.builder.FilterOptions(r.Context()))
}

// Export streams the filtered transactions as a CSV download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spec, err := parseFilterSpec(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	out, err := h.builder.ExportCSV(ctx, spec)
	if err != nil {
		if errors.Is(err, report.ErrBadExpression) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		slog.Error("export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "export failed",
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Reload re-reads the CSV exports and swaps in a fresh snapshot.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.store.Reload(ctx); err != nil {
		slog.Error("dataset reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "reload failed: " + err.Error(),
		})
		return
	}

	ds := h.store.Snapshot()
	slog.Info("dataset reloaded", "generation", ds.Generation, "transactions", len(ds.Transactions))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "dataset reloaded",
		"generation":   ds.Generation,
		"transactions": len(ds.Transactions),
	})
}

// parseFilterSpec reads the filter from the query string. Dimension
// parameters take comma-separated value lists.
func parseFilterSpec(r *http.Request) (domain.FilterSpec, error) {
	q := r.URL.Query()
	var spec domain.FilterSpec

	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return spec, fmt.Errorf("invalid from date %q, want YYYY-MM-DD", v)
		}
		spec.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return spec, fmt.Errorf("invalid to date %q, want YYYY-MM-DD", v)
		}
		spec.To = t
	}
	if !spec.From.IsZero() && !spec.To.IsZero() && spec.To.Before(spec.From) {
		return spec, fmt.Errorf("to date precedes from date")
	}

	spec.Continents = splitParam(q.Get("continents"))
	spec.Regions = splitParam(q.Get("regions"))
	spec.Genres = splitParam(q.Get("genres"))
	spec.Publishers = splitParam(q.Get("publishers"))
	spec.AgeGroups = splitParam(q.Get("ageGroups"))
	spec.ChurnRisks = splitParam(q.Get("churnRisks"))
	spec.Expression = q.Get("expr")

	return spec, nil
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

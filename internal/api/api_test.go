package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/steamlytics/steamglass/internal/cache"
	"github.com/steamlytics/steamglass/internal/domain"
	"github.com/steamlytics/steamglass/internal/report"
)

type stubStore struct {
	ds      *domain.Dataset
	reloads int
}

func (s *stubStore) Snapshot() *domain.Dataset { return s.ds }
func (s *stubStore) Close() error              { return nil }

func (s *stubStore) Reload(ctx context.Context) error {
	s.reloads++
	next := *s.ds
	next.Generation++
	s.ds = &next
	return nil
}

func testDay(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func testDataset() *domain.Dataset {
	mk := func(id, date, region, genre, pub, risk string, revenue float64) domain.Transaction {
		d := testDay(date)
		return domain.Transaction{
			CustomerID:     id,
			PurchaseDate:   d,
			Region:         region,
			Continent:      domain.ContinentForRegion(region),
			Genre:          genre,
			Publisher:      pub,
			AgeGroup:       "18-24",
			ChurnRisk:      risk,
			NetRevenue:     revenue,
			PlaytimeHours:  5,
			GamesPurchased: 1,
			AvgGamePrice:   revenue,
			DiscountPct:    0,
			RetentionDays:  20,
			YearMonth:      domain.MonthKey(d),
		}
	}
	return &domain.Dataset{
		Transactions: []domain.Transaction{
			mk("C001", "2024-01-10", "Europe", "Action", "Valve", "Low", 60),
			mk("C002", "2024-02-14", "Asia", "RPG", "Sega", "High", 45),
			mk("C003", "2024-02-21", "Europe", "Action", "Valve", "Low", 30),
		},
		MAU: []domain.SeriesPoint{
			{Period: testDay("2024-01-01"), Value: 1},
			{Period: testDay("2024-02-01"), Value: 2},
		},
		ScenarioDefaults: domain.ScenarioLevers{ChurnReductionPct: 5, PriceIncreasePct: 5, MAUGrowthPct: 8},
		Generation:       1,
		MinDate:          testDay("2024-01-10"),
		MaxDate:          testDay("2024-02-21"),
	}
}

// createTestServer wires a server against an in-memory dataset.
func createTestServer() (*Server, *stubStore) {
	cfg := domain.ServerConfig{
		Host:         "localhost",
		Port:         8080,
		ReadTimeout:  30,
		WriteTimeout: 30,
	}

	store := &stubStore{ds: testDataset()}
	c := cache.NewLRUCache(64)
	builder := report.NewBuilder(store, c, time.Minute, nil)

	return NewServer(cfg, store, c, builder, "test-v1"), store
}

func TestHealthEndpoints(t *testing.T) {
	server, _ := createTestServer()

	t.Run("Health", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if resp["status"] != "healthy" {
			t.Errorf("status = %q, want healthy", resp["status"])
		}
		if resp["version"] != "test-v1" {
			t.Errorf("version = %q", resp["version"])
		}
	})

	t.Run("Ready", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})
}

func TestGetReportEndpoint(t *testing.T) {
	server, _ := createTestServer()

	t.Run("AllViews", func(t *testing.T) {
		for _, view := range report.ViewNames() {
			req := httptest.NewRequest(http.MethodGet, "/reports/"+view, nil)
			rr := httptest.NewRecorder()
			server.Router().ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("view %s: expected 200, got %d: %s", view, rr.Code, rr.Body.String())
				continue
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("view %s: content type %q", view, ct)
			}
		}
	})

	t.Run("UnknownView", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/bogus", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("FilterApplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/executive?regions=Europe", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var view report.ExecutiveView
		if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if view.Meta.Transactions != 2 {
			t.Errorf("transactions = %d, want 2", view.Meta.Transactions)
		}
	})

	t.Run("BadFromDate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/executive?from=01-2024", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("InvertedDateRange", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/executive?from=2024-03-01&to=2024-01-01", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("BadExpression", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/executive?expr=net_revenue+%3E", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("NoDataFilter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reports/executive?genres=Strategy", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var view report.ExecutiveView
		if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !view.Meta.NoData {
			t.Error("expected noData flag")
		}
	})
}

func TestListReportsEndpoint(t *testing.T) {
	server, _ := createTestServer()

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp struct {
		Views []string `json:"views"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Views) != 10 {
		t.Errorf("views = %d, want 10", len(resp.Views))
	}
}

func TestSimulateEndpoint(t *testing.T) {
	server, _ := createTestServer()

	t.Run("Success", func(t *testing.T) {
		body, _ := json.Marshal(SimulateRequest{
			ChurnReductionPct: 10,
			PriceIncreasePct:  5,
			MAUGrowthPct:      10,
		})
		req := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var result domain.ScenarioResult
		if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if result.Levers.ChurnReductionPct != 10 {
			t.Errorf("churn lever = %v, want 10", result.Levers.ChurnReductionPct)
		}
		if result.Revenue <= result.Baseline.Revenue {
			t.Errorf("revenue %v should exceed baseline %v for growth levers",
				result.Revenue, result.Baseline.Revenue)
		}
	})

	t.Run("LeversClamped", func(t *testing.T) {
		body, _ := json.Marshal(SimulateRequest{ChurnReductionPct: 500})
		req := httptest.NewRequest(http.MethodPost, "/simulate", bytes.NewBuffer(body))
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}

		var result domain.ScenarioResult
		if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if result.Levers.ChurnReductionPct != domain.MaxChurnReductionPct {
			t.Errorf("churn lever = %v, want clamped to %v",
				result.Levers.ChurnReductionPct, domain.MaxChurnReductionPct)
		}
	})

	t.Run("InvalidBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader("{broken"))
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestFilterOptionsEndpoint(t *testing.T) {
	server, _ := createTestServer()

	req := httptest.NewRequest(http.MethodGet, "/filters/options", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var opts report.OptionsPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &opts); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(opts.Regions) != 2 {
		t.Errorf("regions = %v, want 2 distinct", opts.Regions)
	}
	if len(opts.Genres) != 2 {
		t.Errorf("genres = %v, want 2 distinct", opts.Genres)
	}
}

func TestExportEndpoint(t *testing.T) {
	server, _ := createTestServer()

	req := httptest.NewRequest(http.MethodGet, "/export?regions=Europe", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Errorf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header + 2 rows, got %d lines", len(lines))
	}
}

func TestReloadEndpoint(t *testing.T) {
	server, store := createTestServer()

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	rr := httptest.NewRecorder()
	server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if store.reloads != 1 {
		t.Errorf("reloads = %d, want 1", store.reloads)
	}

	var resp struct {
		Generation uint64 `json:"generation"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Generation != 2 {
		t.Errorf("generation = %d, want 2", resp.Generation)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	server, _ := createTestServer()

	t.Run("Generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Header().Get(RequestIDHeader) == "" {
			t.Error("expected generated request id header")
		}
	})

	t.Run("Preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if got := rr.Header().Get(RequestIDHeader); got != "req-42" {
			t.Errorf("request id = %q, want req-42", got)
		}
	})
}

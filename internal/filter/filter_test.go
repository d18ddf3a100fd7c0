package filter

import (
	"testing"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleTransactions() []domain.Transaction {
	mk := func(id, day, region, genre, pub, age, risk string, rev float64) domain.Transaction {
		d := date(day)
		return domain.Transaction{
			CustomerID:   id,
			PurchaseDate: d,
			Region:       region,
			Continent:    domain.ContinentForRegion(region),
			Genre:        genre,
			Publisher:    pub,
			AgeGroup:     age,
			ChurnRisk:    risk,
			NetRevenue:   rev,
			YearMonth:    domain.MonthKey(d),
		}
	}
	return []domain.Transaction{
		mk("C1", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 59.99),
		mk("C2", "2024-01-20", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 19.99),
		mk("C3", "2024-02-10", "Europe", "Indie", "Devolver", "35-44", domain.RiskMedium, 9.99),
		mk("C1", "2024-03-01", "North America", "RPG", "Valve", "25-34", domain.RiskLow, 39.99),
	}
}

func TestTransactions(t *testing.T) {
	txs := sampleTransactions()

	t.Run("empty spec restricts nothing", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{})
		if len(got) != len(txs) {
			t.Errorf("expected all %d rows, got %d", len(txs), len(got))
		}
	})

	t.Run("single dimension", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{Genres: []string{"RPG"}})
		if len(got) != 2 {
			t.Fatalf("expected 2 RPG rows, got %d", len(got))
		}
		for _, tx := range got {
			if tx.Genre != "RPG" {
				t.Errorf("non-RPG row leaked through: %+v", tx)
			}
		}
	})

	t.Run("values within a dimension are OR-ed", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{Genres: []string{"RPG", "Indie"}})
		if len(got) != 3 {
			t.Errorf("expected 3 rows, got %d", len(got))
		}
	})

	t.Run("dimensions are AND-ed", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{
			Genres:  []string{"RPG"},
			Regions: []string{"Europe"},
		})
		if len(got) != 1 || got[0].CustomerID != "C1" {
			t.Errorf("expected the single Europe RPG row, got %+v", got)
		}
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{Publishers: []string{"valve"}})
		if len(got) != 2 {
			t.Errorf("expected 2 Valve rows, got %d", len(got))
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{
			From: date("2024-01-20"),
			To:   date("2024-02-10"),
		})
		if len(got) != 2 {
			t.Errorf("expected 2 rows in range, got %d", len(got))
		}
	})

	t.Run("empty result is valid", func(t *testing.T) {
		got := Transactions(txs, domain.FilterSpec{Regions: []string{"Oceania"}})
		if got == nil {
			t.Fatal("expected non-nil empty slice")
		}
		if len(got) != 0 {
			t.Errorf("expected no rows, got %d", len(got))
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		spec := domain.FilterSpec{Genres: []string{"RPG"}}
		once := Transactions(txs, spec)
		twice := Transactions(once, spec)
		if len(once) != len(twice) {
			t.Errorf("second application changed result: %d vs %d", len(once), len(twice))
		}
	})
}

func TestChurnPredictions(t *testing.T) {
	preds := []domain.ChurnPrediction{
		{CustomerID: "C1", Region: "Europe", Genre: "RPG", Publisher: "Valve", ChurnProbability: 0.1},
		{CustomerID: "C2", Region: "Asia", Genre: "Action", Publisher: "Ubisoft", ChurnProbability: 0.8},
	}

	t.Run("region applies", func(t *testing.T) {
		got := ChurnPredictions(preds, domain.FilterSpec{Regions: []string{"Asia"}})
		if len(got) != 1 || got[0].CustomerID != "C2" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("dimensions without prediction fields are ignored", func(t *testing.T) {
		got := ChurnPredictions(preds, domain.FilterSpec{
			AgeGroups:  []string{"25-34"},
			ChurnRisks: []string{domain.RiskHigh},
			From:       date("2024-06-01"),
		})
		if len(got) != 2 {
			t.Errorf("expected both predictions, got %d", len(got))
		}
	})
}

func TestCollectOptions(t *testing.T) {
	opts := CollectOptions(sampleTransactions())

	if want := []string{"Action", "Indie", "RPG"}; !equalStrings(opts.Genres, want) {
		t.Errorf("genres = %v, want %v", opts.Genres, want)
	}
	if want := []string{"Asia", "Europe", "North America"}; !equalStrings(opts.Regions, want) {
		t.Errorf("regions = %v, want %v", opts.Regions, want)
	}
	if len(opts.ChurnRisks) != 3 {
		t.Errorf("churn risks = %v", opts.ChurnRisks)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCompileExpr(t *testing.T) {
	t.Run("valid predicate", func(t *testing.T) {
		f, err := CompileExpr(`net_revenue > 30.0 && genre == "RPG"`)
		if err != nil {
			t.Fatalf("CompileExpr failed: %v", err)
		}
		got, err := f.Apply(sampleTransactions())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 matches, got %d", len(got))
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		if _, err := CompileExpr(`net_revenue >`); err == nil {
			t.Error("expected compile error")
		}
	})

	t.Run("non-bool output rejected", func(t *testing.T) {
		if _, err := CompileExpr(`net_revenue * 2.0`); err == nil {
			t.Error("expected output type error")
		}
	})

	t.Run("unknown variable rejected", func(t *testing.T) {
		if _, err := CompileExpr(`tenant_id == "x"`); err == nil {
			t.Error("expected compile error for unknown variable")
		}
	})

	t.Run("int and string fields", func(t *testing.T) {
		f, err := CompileExpr(`games_purchased >= 0 && churn_risk == "High"`)
		if err != nil {
			t.Fatalf("CompileExpr failed: %v", err)
		}
		got, err := f.Apply(sampleTransactions())
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if len(got) != 1 || got[0].CustomerID != "C2" {
			t.Errorf("unexpected matches: %+v", got)
		}
	})
}

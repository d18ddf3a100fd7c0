package analytics

import (
	"testing"

	"github.com/steamlytics/steamglass/internal/domain"
)

func TestDescribe(t *testing.T) {
	t.Run("known distribution", func(t *testing.T) {
		s := Describe([]float64{1, 2, 3, 4, 5})
		if s.Count != 5 {
			t.Errorf("count = %d", s.Count)
		}
		approx(t, s.Mean, 3, 1e-9, "mean")
		approx(t, s.Median, 3, 1e-9, "median")
		approx(t, s.P25, 2, 1e-9, "p25")
		approx(t, s.P75, 4, 1e-9, "p75")
		approx(t, s.Min, 1, 1e-9, "min")
		approx(t, s.Max, 5, 1e-9, "max")
		approx(t, s.Std, 1.5811, 1e-3, "std")
	})

	t.Run("single value", func(t *testing.T) {
		s := Describe([]float64{42})
		if s.Std != 0 || s.Mean != 42 || s.Median != 42 {
			t.Errorf("single value stats: %+v", s)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if s := Describe(nil); s.Count != 0 {
			t.Errorf("empty stats: %+v", s)
		}
	})
}

func TestCorrelation(t *testing.T) {
	t.Run("perfect positive", func(t *testing.T) {
		approx(t, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1, 1e-9, "correlation")
	})

	t.Run("perfect negative", func(t *testing.T) {
		approx(t, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), -1, 1e-9, "correlation")
	})

	t.Run("constant column", func(t *testing.T) {
		if got := Correlation([]float64{1, 2, 3}, []float64{5, 5, 5}); got != 0 {
			t.Errorf("correlation with constant = %v, want 0", got)
		}
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		if got := Correlation([]float64{1, 2}, []float64{1}); got != 0 {
			t.Errorf("correlation = %v, want 0", got)
		}
	})
}

func TestCorrelations(t *testing.T) {
	txs := []domain.Transaction{
		tx("C1", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 2),
		tx("C2", "2024-01-20", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
		tx("C3", "2024-02-15", "Asia", "Indie", "Devolver", "35-44", domain.RiskMedium, 75, 3),
	}
	m := Correlations(txs)
	if len(m.Columns) != 5 || len(m.Values) != 5 {
		t.Fatalf("matrix shape: %d columns", len(m.Columns))
	}
	for i := range m.Values {
		if m.Values[i][i] != 1 {
			t.Errorf("diagonal[%d] = %v, want 1", i, m.Values[i][i])
		}
		for j := range m.Values[i] {
			approx(t, m.Values[i][j], m.Values[j][i], 1e-9, "symmetry")
		}
	}
}

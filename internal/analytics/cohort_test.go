package analytics

import (
	"testing"

	"github.com/steamlytics/steamglass/internal/domain"
)

func TestCohortRetention(t *testing.T) {
	txs := []domain.Transaction{
		// January cohort: A and B. A returns in February and March,
		// B never returns.
		tx("A", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		tx("B", "2024-01-10", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		tx("A", "2024-02-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		tx("A", "2024-03-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		// February cohort: C.
		tx("C", "2024-02-15", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
	}

	rows := CohortRetention(txs, 0)
	if len(rows) != 2 {
		t.Fatalf("expected 2 cohorts, got %d", len(rows))
	}

	jan := rows[0]
	t.Run("cohort identity", func(t *testing.T) {
		if jan.Cohort != "2024-01" || jan.Size != 2 {
			t.Errorf("january cohort: %+v", jan)
		}
		if rows[1].Cohort != "2024-02" || rows[1].Size != 1 {
			t.Errorf("february cohort: %+v", rows[1])
		}
	})

	t.Run("offset zero is always 100 percent", func(t *testing.T) {
		for _, row := range rows {
			if row.Retention[0] != 100 {
				t.Errorf("cohort %s offset 0 = %v", row.Cohort, row.Retention[0])
			}
		}
	})

	t.Run("retention declines with churn", func(t *testing.T) {
		approx(t, jan.Retention[1], 50, 1e-9, "january M1")
		approx(t, jan.Retention[2], 50, 1e-9, "january M2")
	})

	t.Run("curves share a common length", func(t *testing.T) {
		for _, row := range rows {
			if len(row.Retention) != len(jan.Retention) {
				t.Errorf("ragged curves: %d vs %d", len(row.Retention), len(jan.Retention))
			}
		}
	})

	t.Run("year boundary offsets", func(t *testing.T) {
		span := []domain.Transaction{
			tx("X", "2023-12-20", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 10, 1),
			tx("X", "2024-01-20", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 10, 1),
		}
		got := CohortRetention(span, 0)
		if len(got) != 1 || got[0].Cohort != "2023-12" {
			t.Fatalf("unexpected cohorts: %+v", got)
		}
		approx(t, got[0].Retention[1], 100, 1e-9, "cross-year M1")
	})
}

func TestCohortRetentionByGenre(t *testing.T) {
	txs := []domain.Transaction{
		// A and B join in January via RPG; A crosses into Action in
		// February, where C makes a first purchase.
		tx("A", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		tx("B", "2024-01-10", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
		tx("A", "2024-02-05", "Europe", "Action", "Ubisoft", "25-34", domain.RiskLow, 50, 1),
		tx("C", "2024-02-15", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
	}

	byGenre := CohortRetentionByGenre(txs, 0)
	if len(byGenre) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(byGenre))
	}

	t.Run("genre activity only", func(t *testing.T) {
		rpg := byGenre["RPG"]
		if len(rpg) != 1 || rpg[0].Cohort != "2024-01" || rpg[0].Size != 2 {
			t.Fatalf("rpg cohorts: %+v", rpg)
		}
		approx(t, rpg[0].Retention[0], 100, 1e-9, "rpg M0")
	})

	t.Run("cohort follows overall first purchase", func(t *testing.T) {
		action := byGenre["Action"]
		if len(action) != 2 {
			t.Fatalf("action cohorts: %+v", action)
		}
		// A belongs to the January cohort even though its first Action
		// purchase is in February.
		jan := action[0]
		if jan.Cohort != "2024-01" || jan.Size != 1 {
			t.Fatalf("january action cohort: %+v", jan)
		}
		approx(t, jan.Retention[0], 0, 1e-9, "january action M0")
		approx(t, jan.Retention[1], 100, 1e-9, "january action M1")

		feb := action[1]
		if feb.Cohort != "2024-02" || feb.Size != 1 {
			t.Fatalf("february action cohort: %+v", feb)
		}
		approx(t, feb.Retention[0], 100, 1e-9, "february action M0")
	})

	if got := CohortRetentionByGenre(nil, 0); got != nil {
		t.Errorf("empty input = %v, want nil", got)
	}
}

func TestAvgRetentionAt(t *testing.T) {
	rows := []CohortRow{
		{Cohort: "2024-01", Size: 2, Retention: []float64{100, 50, 50}},
		{Cohort: "2024-02", Size: 1, Retention: []float64{100, 0, 0}},
	}
	approx(t, AvgRetentionAt(rows, 1), 25, 1e-9, "avg M1")
	if got := AvgRetentionAt(rows, 5); got != 0 {
		t.Errorf("offset beyond curves = %v, want 0", got)
	}
}

func TestHighRiskShare(t *testing.T) {
	txs := []domain.Transaction{
		tx("A", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskHigh, 100, 1),
		tx("B", "2024-01-10", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 1),
	}
	approx(t, HighRiskShare(txs), 50, 1e-9, "high risk share")
	if got := HighRiskShare(nil); got != 0 {
		t.Errorf("empty share = %v, want 0", got)
	}
}

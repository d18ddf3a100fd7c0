package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

func tx(id, day, region, genre, pub, age, risk string, rev float64, games int) domain.Transaction {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.Transaction{
		CustomerID:     id,
		PurchaseDate:   d,
		Region:         region,
		Continent:      domain.ContinentForRegion(region),
		Genre:          genre,
		Publisher:      pub,
		AgeGroup:       age,
		ChurnRisk:      risk,
		NetRevenue:     rev,
		GamesPurchased: games,
		AvgGamePrice:   rev / float64(max(games, 1)),
		PlaytimeHours:  float64(games) * 5,
		RetentionDays:  30,
		YearMonth:      domain.MonthKey(d),
	}
}

func approx(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestKPIs(t *testing.T) {
	txs := []domain.Transaction{
		tx("C1", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 2),
		tx("C2", "2024-01-20", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
		tx("C1", "2024-02-10", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 150, 3),
		tx("C3", "2024-02-15", "Asia", "Indie", "Devolver", "35-44", domain.RiskHigh, 50, 1),
		tx("C2", "2024-02-20", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
	}

	k := KPIs(txs)

	t.Run("totals", func(t *testing.T) {
		approx(t, k.TotalRevenue, 400, 1e-9, "total revenue")
		if k.UniqueBuyers != 3 {
			t.Errorf("unique buyers = %d, want 3", k.UniqueBuyers)
		}
		if k.Months != 2 {
			t.Errorf("months = %d, want 2", k.Months)
		}
	})

	t.Run("average MAU", func(t *testing.T) {
		// Jan: C1, C2. Feb: C1, C2, C3.
		approx(t, k.AvgMAU, 2.5, 1e-9, "avg MAU")
	})

	t.Run("ARPU", func(t *testing.T) {
		approx(t, k.ARPU, 160, 1e-9, "ARPU") // 400 / 2.5
	})

	t.Run("growth from previous month", func(t *testing.T) {
		// Jan 150, Feb 250 -> +66.67%
		approx(t, k.RevenueGrowthPct, 66.666, 0.01, "revenue growth")
	})

	t.Run("churn rate over distinct customers", func(t *testing.T) {
		// C2 and C3 are high risk out of 3 buyers.
		approx(t, k.ChurnRatePct, 200.0/3.0, 0.01, "churn rate")
	})

	t.Run("conversion", func(t *testing.T) {
		approx(t, k.ConversionRate, 0.6, 1e-9, "conversion") // 3 buyers / 5 rows
	})
}

func TestKPIsEmpty(t *testing.T) {
	k := KPIs(nil)
	if k != (KPISet{}) {
		t.Errorf("expected zero KPI set, got %+v", k)
	}
}

func TestRevenueGrowth(t *testing.T) {
	t.Run("single month yields zero", func(t *testing.T) {
		if g := RevenueGrowth([]Entry{{Key: "2024-01", Value: 100}}); g != 0 {
			t.Errorf("growth = %v, want 0", g)
		}
	})

	t.Run("zero base yields zero, not infinity", func(t *testing.T) {
		monthly := []Entry{{Key: "2024-01", Value: 0}, {Key: "2024-02", Value: 500}}
		if g := RevenueGrowth(monthly); g != 0 {
			t.Errorf("growth = %v, want 0", g)
		}
	})

	t.Run("decline is negative", func(t *testing.T) {
		monthly := []Entry{{Key: "2024-01", Value: 200}, {Key: "2024-02", Value: 100}}
		approx(t, RevenueGrowth(monthly), -50, 1e-9, "growth")
	})
}

func TestMonthlySeries(t *testing.T) {
	txs := []domain.Transaction{
		tx("C1", "2024-02-10", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 150, 3),
		tx("C1", "2024-01-05", "Europe", "RPG", "Valve", "25-34", domain.RiskLow, 100, 2),
		tx("C2", "2024-01-20", "Asia", "Action", "Ubisoft", "18-24", domain.RiskHigh, 50, 1),
	}

	rev := MonthlyRevenue(txs)
	if len(rev) != 2 || rev[0].Key != "2024-01" || rev[1].Key != "2024-02" {
		t.Fatalf("monthly revenue not sorted: %+v", rev)
	}
	approx(t, rev[0].Value, 150, 1e-9, "january revenue")

	mau := MonthlyActiveUsers(txs)
	if len(mau) != 2 || mau[0].Value != 2 || mau[1].Value != 1 {
		t.Errorf("unexpected MAU series: %+v", mau)
	}

	daily := DailyActivity(txs)
	if len(daily) != 3 {
		t.Errorf("expected 3 active days, got %d", len(daily))
	}
}

package analytics

import (
	"sort"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

// CohortRow is one acquisition-month cohort with its retention curve.
// Retention[k] is the percent of the cohort active k months after the
// cohort month; Retention[0] is 100 by construction.
type CohortRow struct {
	Cohort    string    `json:"cohort"` // "2006-01"
	Size      int       `json:"size"`
	Retention []float64 `json:"retention"`
}

func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func firstPurchaseMonth(txs []domain.Transaction) map[string]int {
	firstMonth := make(map[string]int, len(txs))
	for _, tx := range txs {
		idx := monthIndex(tx.PurchaseDate)
		if cur, ok := firstMonth[tx.CustomerID]; !ok || idx < cur {
			firstMonth[tx.CustomerID] = idx
		}
	}
	return firstMonth
}

// cohortCurves builds retention rows from the given purchases, using the
// supplied cohort assignment. The cohort size is the number of distinct
// customers assigned to the cohort that appear in txs at all, so when
// txs is a subset the curve can start below 100.
func cohortCurves(txs []domain.Transaction, firstMonth map[string]int, maxOffset int) []CohortRow {
	if len(txs) == 0 {
		return nil
	}

	// cohort month index -> offset -> set of active customers
	active := make(map[int]map[int]map[string]struct{})
	members := make(map[int]map[string]struct{})
	maxSeen := 0
	for _, tx := range txs {
		cohort := firstMonth[tx.CustomerID]
		offset := monthIndex(tx.PurchaseDate) - cohort
		if offset > maxSeen {
			maxSeen = offset
		}
		byOffset, ok := active[cohort]
		if !ok {
			byOffset = make(map[int]map[string]struct{})
			active[cohort] = byOffset
		}
		customers, ok := byOffset[offset]
		if !ok {
			customers = make(map[string]struct{})
			byOffset[offset] = customers
		}
		customers[tx.CustomerID] = struct{}{}

		all, ok := members[cohort]
		if !ok {
			all = make(map[string]struct{})
			members[cohort] = all
		}
		all[tx.CustomerID] = struct{}{}
	}

	if maxOffset <= 0 || maxOffset > maxSeen {
		maxOffset = maxSeen
	}

	cohortIdxs := make([]int, 0, len(active))
	for idx := range active {
		cohortIdxs = append(cohortIdxs, idx)
	}
	sort.Ints(cohortIdxs)

	out := make([]CohortRow, 0, len(cohortIdxs))
	for _, idx := range cohortIdxs {
		byOffset := active[idx]
		size := len(members[idx])
		row := CohortRow{
			Cohort:    time.Date(idx/12, time.Month(idx%12+1), 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
			Size:      size,
			Retention: make([]float64, maxOffset+1),
		}
		for offset := 0; offset <= maxOffset; offset++ {
			if size > 0 {
				row.Retention[offset] = float64(len(byOffset[offset])) / float64(size) * 100
			}
		}
		out = append(out, row)
	}
	return out
}

// CohortRetention groups customers by first purchase month and tracks
// what share of each cohort is still purchasing in later months. The
// curves extend to maxOffset months; pass 0 to cover the whole range.
func CohortRetention(txs []domain.Transaction, maxOffset int) []CohortRow {
	if len(txs) == 0 {
		return nil
	}
	return cohortCurves(txs, firstPurchaseMonth(txs), maxOffset)
}

// CohortRetentionByGenre recomputes the retention curves restricted to
// each genre's purchases. Cohort assignment still comes from the
// customer's first purchase overall, so a curve shows how much of that
// acquisition wave keeps buying within the genre.
func CohortRetentionByGenre(txs []domain.Transaction, maxOffset int) map[string][]CohortRow {
	if len(txs) == 0 {
		return nil
	}
	firstMonth := firstPurchaseMonth(txs)
	byGenre := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		byGenre[tx.Genre] = append(byGenre[tx.Genre], tx)
	}
	out := make(map[string][]CohortRow, len(byGenre))
	for genre, subset := range byGenre {
		out[genre] = cohortCurves(subset, firstMonth, maxOffset)
	}
	return out
}

// AvgRetentionAt averages the retention of all cohorts that have data
// at the given offset.
func AvgRetentionAt(rows []CohortRow, offset int) float64 {
	var sum float64
	var n int
	for _, row := range rows {
		if offset < len(row.Retention) && row.Size > 0 {
			sum += row.Retention[offset]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// HighRiskShare is the percent of rows labeled high churn risk.
func HighRiskShare(txs []domain.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	var high int
	for _, tx := range txs {
		if tx.ChurnRisk == domain.RiskHigh {
			high++
		}
	}
	return float64(high) / float64(len(txs)) * 100
}

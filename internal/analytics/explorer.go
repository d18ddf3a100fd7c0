package analytics

import (
	"math"
	"sort"

	"github.com/steamlytics/steamglass/internal/domain"
)

// Stats is a describe-style summary of one numeric column.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// numericColumns in display order.
var numericColumns = []string{
	"games_purchased", "net_revenue", "avg_game_price",
	"playtime_hours", "retention_days",
}

// NumericColumns extracts the numeric measure columns as float slices.
func NumericColumns(txs []domain.Transaction) map[string][]float64 {
	out := make(map[string][]float64, len(numericColumns))
	for _, col := range numericColumns {
		out[col] = make([]float64, 0, len(txs))
	}
	for _, tx := range txs {
		out["games_purchased"] = append(out["games_purchased"], float64(tx.GamesPurchased))
		out["net_revenue"] = append(out["net_revenue"], tx.NetRevenue)
		out["avg_game_price"] = append(out["avg_game_price"], tx.AvgGamePrice)
		out["playtime_hours"] = append(out["playtime_hours"], tx.PlaytimeHours)
		out["retention_days"] = append(out["retention_days"], tx.RetentionDays)
	}
	return out
}

// Describe summarizes one numeric column. Standard deviation is the
// sample estimate (n-1 denominator); a single value yields std 0.
func Describe(values []float64) Stats {
	s := Stats{Count: len(values)}
	if len(values) == 0 {
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(len(sorted))
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.P25 = percentile(sorted, 0.25)
	s.Median = percentile(sorted, 0.5)
	s.P75 = percentile(sorted, 0.75)

	if len(sorted) > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - s.Mean
			ss += d * d
		}
		s.Std = math.Sqrt(ss / float64(len(sorted)-1))
	}
	return s
}

// percentile uses linear interpolation between closest ranks over a
// sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// CorrelationMatrix holds pairwise Pearson correlations between the
// numeric columns.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlations computes the Pearson correlation between every pair of
// numeric columns. A constant column correlates 0 with everything
// except itself.
func Correlations(txs []domain.Transaction) CorrelationMatrix {
	cols := NumericColumns(txs)
	m := CorrelationMatrix{Columns: numericColumns}
	m.Values = make([][]float64, len(numericColumns))
	for i, a := range numericColumns {
		m.Values[i] = make([]float64, len(numericColumns))
		for j, b := range numericColumns {
			if i == j {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = Correlation(cols[a], cols[b])
		}
	}
	return m
}

// Correlation is the Pearson coefficient of two equally sized samples.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

package analytics

import (
	"github.com/steamlytics/steamglass/internal/domain"
)

// ParetoPoint is one ranked entity with its cumulative revenue share.
type ParetoPoint struct {
	Key           string  `json:"key"`
	Value         float64 `json:"value"`
	CumulativePct float64 `json:"cumulativePct"`
}

// ParetoResult is a full 80/20 curve over one dimension.
type ParetoResult struct {
	Points []ParetoPoint `json:"points"`

	// Rank80 is the 1-based rank where the cumulative share first
	// reaches 80%. Zero when there is no revenue at all.
	Rank80 int `json:"rank80"`

	// Rank80Pct is Rank80 as a share of all entities, in percent.
	Rank80Pct float64 `json:"rank80Pct"`

	Entities     int     `json:"entities"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// Pareto ranks entities by value descending and computes the running
// cumulative share. The curve ends at 100% whenever total revenue is
// positive.
func Pareto(entries []Entry) ParetoResult {
	var res ParetoResult
	res.Entities = len(entries)
	if len(entries) == 0 {
		return res
	}

	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sortEntriesDesc(ranked)

	for _, e := range ranked {
		res.TotalRevenue += e.Value
	}

	res.Points = make([]ParetoPoint, len(ranked))
	var running float64
	for i, e := range ranked {
		running += e.Value
		p := ParetoPoint{Key: e.Key, Value: e.Value}
		if res.TotalRevenue > 0 {
			p.CumulativePct = running / res.TotalRevenue * 100
		}
		res.Points[i] = p
		if res.Rank80 == 0 && res.TotalRevenue > 0 && p.CumulativePct >= 80 {
			res.Rank80 = i + 1
		}
	}
	if res.Rank80 > 0 {
		res.Rank80Pct = float64(res.Rank80) / float64(res.Entities) * 100
	}
	return res
}

// ParetoBy builds the curve for one transaction dimension.
func ParetoBy(txs []domain.Transaction, dim Dimension) ParetoResult {
	return Pareto(RevenueBy(txs, dim))
}

// Concentration returns the revenue share, in percent, held by the top
// fraction (e.g. 0.2) of entities. The head count is truncated, matching
// a strict "top 20%" reading; zero entities means zero share.
func Concentration(entries []Entry, topFraction float64) float64 {
	if len(entries) == 0 {
		return 0
	}
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)
	sortEntriesDesc(ranked)

	var total float64
	for _, e := range ranked {
		total += e.Value
	}
	if total == 0 {
		return 0
	}

	head := int(float64(len(ranked)) * topFraction)
	if head > len(ranked) {
		head = len(ranked)
	}
	var top float64
	for _, e := range ranked[:head] {
		top += e.Value
	}
	return top / total * 100
}

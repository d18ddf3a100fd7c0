package analytics

import (
	"sort"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

// RFM segment labels.
const (
	SegmentChampions     = "Champions"
	SegmentLoyal         = "Loyal Customers"
	SegmentAtRisk        = "At Risk"
	SegmentChurned       = "Churned"
	SegmentNeedAttention = "Need Attention"
	SegmentPotential     = "Potential"
)

// AllSegments lists the segments in presentation order.
func AllSegments() []string {
	return []string{
		SegmentChampions, SegmentLoyal, SegmentAtRisk,
		SegmentChurned, SegmentNeedAttention, SegmentPotential,
	}
}

// RFMScore is one customer's recency/frequency/monetary profile with
// quintile scores (1..5, 5 best) and the derived segment.
type RFMScore struct {
	CustomerID  string  `json:"customerId"`
	RecencyDays int     `json:"recencyDays"`
	Frequency   float64 `json:"frequency"` // transaction count
	Monetary    float64 `json:"monetary"`  // total net revenue
	R           int     `json:"r"`
	F           int     `json:"f"`
	M           int     `json:"m"`
	Segment     string  `json:"segment"`
}

// SegmentFor maps quintile scores to a segment. Rules apply in order;
// the first match wins.
func SegmentFor(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case r >= 3 && f >= 3 && m >= 3:
		return SegmentLoyal
	case r >= 4 && f <= 2:
		return SegmentAtRisk
	case r <= 2 && f >= 3:
		return SegmentChurned
	case r >= 3 && f <= 2:
		return SegmentNeedAttention
	default:
		return SegmentPotential
	}
}

// RFM scores every customer in the filtered transactions. Recency is
// measured against the latest purchase date in the slice. Quintiles are
// equal-frequency: customers are ranked and split into five bins, the
// lower bins absorbing the remainder when the count is not divisible
// by five. Recency scoring is inverted so recent buyers score high.
func RFM(txs []domain.Transaction) []RFMScore {
	if len(txs) == 0 {
		return nil
	}

	type acc struct {
		last      time.Time
		frequency float64
		monetary  float64
	}
	accs := make(map[string]*acc)
	var maxDate time.Time
	for _, tx := range txs {
		a, ok := accs[tx.CustomerID]
		if !ok {
			a = &acc{}
			accs[tx.CustomerID] = a
		}
		if tx.PurchaseDate.After(a.last) {
			a.last = tx.PurchaseDate
		}
		a.frequency++
		a.monetary += tx.NetRevenue
		if tx.PurchaseDate.After(maxDate) {
			maxDate = tx.PurchaseDate
		}
	}

	scores := make([]RFMScore, 0, len(accs))
	for id, a := range accs {
		scores = append(scores, RFMScore{
			CustomerID:  id,
			RecencyDays: int(maxDate.Sub(a.last).Hours() / 24),
			Frequency:   a.frequency,
			Monetary:    a.monetary,
		})
	}

	// Recency: ascending days, then monetary desc then customer id for
	// stable ties. Low days = best, so invert the quintile.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].RecencyDays != scores[j].RecencyDays {
			return scores[i].RecencyDays < scores[j].RecencyDays
		}
		if scores[i].Monetary != scores[j].Monetary {
			return scores[i].Monetary > scores[j].Monetary
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})
	for i, q := range quintiles(len(scores)) {
		scores[i].R = 6 - q
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Frequency != scores[j].Frequency {
			return scores[i].Frequency < scores[j].Frequency
		}
		if scores[i].Monetary != scores[j].Monetary {
			return scores[i].Monetary < scores[j].Monetary
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})
	for i, q := range quintiles(len(scores)) {
		scores[i].F = q
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Monetary != scores[j].Monetary {
			return scores[i].Monetary < scores[j].Monetary
		}
		if scores[i].Frequency != scores[j].Frequency {
			return scores[i].Frequency < scores[j].Frequency
		}
		return scores[i].CustomerID < scores[j].CustomerID
	})
	for i, q := range quintiles(len(scores)) {
		scores[i].M = q
	}

	for i := range scores {
		scores[i].Segment = SegmentFor(scores[i].R, scores[i].F, scores[i].M)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].CustomerID < scores[j].CustomerID })
	return scores
}

// quintiles returns the quintile (1..5) for each rank position of n
// ranked items. When n is not divisible by five the lower quintiles
// take the extra members.
func quintiles(n int) []int {
	out := make([]int, n)
	base := n / 5
	rem := n % 5
	idx := 0
	for q := 1; q <= 5; q++ {
		size := base
		if q <= rem {
			size++
		}
		for i := 0; i < size; i++ {
			out[idx] = q
			idx++
		}
	}
	return out
}

// SegmentSummary aggregates one RFM segment.
type SegmentSummary struct {
	Segment     string  `json:"segment"`
	Customers   int     `json:"customers"`
	TotalValue  float64 `json:"totalValue"`
	AvgValue    float64 `json:"avgValue"`
	AvgRecency  float64 `json:"avgRecency"`
	AvgFrequency float64 `json:"avgFrequency"`
}

// SegmentDistribution rolls RFM scores up per segment, in presentation
// order, skipping empty segments.
func SegmentDistribution(scores []RFMScore) []SegmentSummary {
	accs := make(map[string]*SegmentSummary)
	for _, s := range scores {
		a, ok := accs[s.Segment]
		if !ok {
			a = &SegmentSummary{Segment: s.Segment}
			accs[s.Segment] = a
		}
		a.Customers++
		a.TotalValue += s.Monetary
		a.AvgRecency += float64(s.RecencyDays)
		a.AvgFrequency += s.Frequency
	}
	out := make([]SegmentSummary, 0, len(accs))
	for _, segment := range AllSegments() {
		a, ok := accs[segment]
		if !ok {
			continue
		}
		n := float64(a.Customers)
		a.AvgValue = a.TotalValue / n
		a.AvgRecency /= n
		a.AvgFrequency /= n
		out = append(out, *a)
	}
	return out
}

// Package insight turns metric values into tiered narrative statements
// via ordered threshold band tables.
package insight

import (
	"fmt"
	"math"

	"github.com/steamlytics/steamglass/internal/domain"
)

// Band maps a half-open value range [Lower, Upper) to a tier and a
// message template. A nil bound means unbounded on that side.
type Band struct {
	Lower   *float64           `json:"lower,omitempty"`
	Upper   *float64           `json:"upper,omitempty"`
	Tier    domain.InsightTier `json:"tier"`
	Message string             `json:"message"`
}

// Table is an ordered band list for one metric. Bands are evaluated
// top to bottom; the first match wins.
type Table struct {
	Metric string `json:"metric"`
	Bands  []Band `json:"bands"`
}

// Validate checks that the bands are ordered, non-overlapping,
// contiguous, and together cover (-inf, +inf), so every value matches
// exactly one band.
func (t Table) Validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("table %s has no bands", t.Metric)
	}
	if t.Bands[0].Lower != nil {
		return fmt.Errorf("table %s: first band must be open below", t.Metric)
	}
	if t.Bands[len(t.Bands)-1].Upper != nil {
		return fmt.Errorf("table %s: last band must be open above", t.Metric)
	}
	for i := 0; i < len(t.Bands)-1; i++ {
		upper := t.Bands[i].Upper
		lower := t.Bands[i+1].Lower
		if upper == nil || lower == nil {
			return fmt.Errorf("table %s: interior bound missing between bands %d and %d", t.Metric, i, i+1)
		}
		if *upper != *lower {
			return fmt.Errorf("table %s: gap or overlap at %v/%v", t.Metric, *upper, *lower)
		}
	}
	for i, b := range t.Bands {
		if b.Lower != nil && b.Upper != nil && *b.Lower >= *b.Upper {
			return fmt.Errorf("table %s: band %d is empty", t.Metric, i)
		}
	}
	return nil
}

// Evaluate matches value against the bands and renders the message
// template with args. Matching is lower-inclusive, upper-exclusive.
func (t Table) Evaluate(value float64, args ...any) domain.Insight {
	for _, band := range t.Bands {
		lower := math.Inf(-1)
		upper := math.Inf(1)
		if band.Lower != nil {
			lower = *band.Lower
		}
		if band.Upper != nil {
			upper = *band.Upper
		}
		if value >= lower && value < upper {
			return domain.Insight{
				Metric:  t.Metric,
				Tier:    band.Tier,
				Message: fmt.Sprintf(band.Message, args...),
				Value:   value,
			}
		}
	}
	// Unreachable for a validated table.
	return domain.Insight{Metric: t.Metric, Tier: domain.TierNeutral, Value: value}
}

func ptr(v float64) *float64 { return &v }

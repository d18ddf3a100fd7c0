package domain

import "fmt"

// Lever bounds for the what-if simulator. Out-of-range values are
// clamped, never rejected.
const (
	MaxChurnReductionPct = 30.0
	MaxPriceIncreasePct  = 20.0
	MaxMAUGrowthPct      = 25.0
)

// ScenarioLevers are the three adjustable inputs of the what-if simulator.
type ScenarioLevers struct {
	ChurnReductionPct float64 `json:"churnReductionPct"` // 0..30
	PriceIncreasePct  float64 `json:"priceIncreasePct"`  // 0..20
	MAUGrowthPct      float64 `json:"mauGrowthPct"`      // 0..25
}

// Clamped returns a copy with each lever forced into its valid range.
func (l ScenarioLevers) Clamped() ScenarioLevers {
	return ScenarioLevers{
		ChurnReductionPct: clamp(l.ChurnReductionPct, 0, MaxChurnReductionPct),
		PriceIncreasePct:  clamp(l.PriceIncreasePct, 0, MaxPriceIncreasePct),
		MAUGrowthPct:      clamp(l.MAUGrowthPct, 0, MaxMAUGrowthPct),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// String renders the levers for log lines.
func (l ScenarioLevers) String() string {
	return fmt.Sprintf("churn-%.0f%% price+%.0f%% mau+%.0f%%",
		l.ChurnReductionPct, l.PriceIncreasePct, l.MAUGrowthPct)
}

// ScenarioBaseline holds the current-state metrics a simulation starts from.
type ScenarioBaseline struct {
	Revenue   float64 `json:"revenue"`
	ChurnRate float64 `json:"churnRate"` // percent
	MAU       float64 `json:"mau"`
	CLV       float64 `json:"clv"`
}

// ScenarioResult is a simulator output: projected metrics alongside the
// baseline and the (clamped) levers that produced them.
type ScenarioResult struct {
	Baseline ScenarioBaseline `json:"baseline"`
	Levers   ScenarioLevers   `json:"levers"`

	Revenue   float64 `json:"revenue"`
	ChurnRate float64 `json:"churnRate"` // percent
	MAU       float64 `json:"mau"`
	CLV       float64 `json:"clv"`

	// Deltas against the baseline.
	RevenueDeltaPct float64 `json:"revenueDeltaPct"`
	ChurnDeltaPts   float64 `json:"churnDeltaPts"`
	MAUDelta        float64 `json:"mauDelta"`
	CLVDeltaPct     float64 `json:"clvDeltaPct"`
}

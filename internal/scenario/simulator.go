// Package scenario implements the what-if simulator.
package scenario

import (
	"github.com/steamlytics/steamglass/internal/domain"
)

// retentionWeight dampens how strongly a churn reduction feeds back
// into the revenue projection.
const retentionWeight = 0.25

// Simulator projects baseline KPIs under adjusted levers. It holds no
// state between runs; every Run is independent.
type Simulator struct{}

// New returns a simulator.
func New() *Simulator {
	return &Simulator{}
}

// Run clamps the levers into range and applies the fixed adjustment
// model to the baseline. A zero-MAU scenario yields CLV 0.
func (s *Simulator) Run(base domain.ScenarioBaseline, levers domain.ScenarioLevers) domain.ScenarioResult {
	levers = levers.Clamped()

	churn := levers.ChurnReductionPct / 100
	price := levers.PriceIncreasePct / 100
	growth := levers.MAUGrowthPct / 100

	res := domain.ScenarioResult{
		Baseline: base,
		Levers:   levers,
	}
	res.ChurnRate = base.ChurnRate * (1 - churn)
	res.MAU = base.MAU * (1 + growth)
	res.Revenue = base.Revenue * (1 + price) * (1 + growth) * (1 - churn*retentionWeight)
	if res.MAU > 0 {
		res.CLV = res.Revenue / res.MAU
	}

	if base.Revenue != 0 {
		res.RevenueDeltaPct = (res.Revenue - base.Revenue) / base.Revenue * 100
	}
	res.ChurnDeltaPts = res.ChurnRate - base.ChurnRate
	res.MAUDelta = res.MAU - base.MAU
	if base.CLV != 0 {
		res.CLVDeltaPct = (res.CLV - base.CLV) / base.CLV * 100
	}
	return res
}

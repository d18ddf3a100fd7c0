package domain

// InsightTier classifies an insight for presentation.
type InsightTier string

const (
	TierPositive InsightTier = "positive"
	TierNeutral  InsightTier = "neutral"
	TierNegative InsightTier = "negative"
)

// Insight is a generated narrative statement about one metric.
type Insight struct {
	Metric  string      `json:"metric"`
	Tier    InsightTier `json:"tier"`
	Message string      `json:"message"`
	Value   float64     `json:"value"`
}

package insight

import (
	"fmt"

	"github.com/steamlytics/steamglass/internal/analytics"
	"github.com/steamlytics/steamglass/internal/domain"
)

// Builtin tables. Thresholds and messages are data; the matching
// algorithm never changes when these are tuned.
//
// Template arguments by table:
//   RevenueGrowth: total revenue, growth pct
//   MAUGrowth:     average MAU, growth pct
//   ARPU:          arpu value
//   ChurnRate:     churn rate pct
//   Conversion:    conversion rate (0..1)

// RevenueGrowthTable classifies month-over-month revenue growth.
var RevenueGrowthTable = Table{
	Metric: "revenue_growth",
	Bands: []Band{
		{Upper: ptr(0), Tier: domain.TierNegative,
			Message: "Declining: revenue at $%.0f with %.1f%% decline. Immediate action needed."},
		{Lower: ptr(0), Upper: ptr(10), Tier: domain.TierNeutral,
			Message: "Steady: revenue at $%.0f with %.1f%% growth. Maintain current strategies."},
		{Lower: ptr(10), Tier: domain.TierPositive,
			Message: "Strong performance: revenue at $%.0f with %.1f%% growth. Momentum is excellent."},
	},
}

// MAUGrowthTable classifies user-base growth.
var MAUGrowthTable = Table{
	Metric: "mau_growth",
	Bands: []Band{
		{Upper: ptr(0), Tier: domain.TierNegative,
			Message: "Declining users: %.0f MAU with %.1f%% decline. Retention focus needed."},
		{Lower: ptr(0), Upper: ptr(5), Tier: domain.TierNeutral,
			Message: "Slow growth: %.0f MAU with %.1f%% growth. Consider engagement tactics."},
		{Lower: ptr(5), Upper: ptr(15), Tier: domain.TierPositive,
			Message: "Healthy growth: %.0f MAU with %.1f%% growth. User base expanding well."},
		{Lower: ptr(15), Tier: domain.TierPositive,
			Message: "Explosive growth: %.0f MAU with %.1f%% growth. Exceptional user acquisition."},
	},
}

// ARPUTable classifies average revenue per user.
var ARPUTable = Table{
	Metric: "arpu",
	Bands: []Band{
		{Upper: ptr(100), Tier: domain.TierNegative,
			Message: "Low ARPU: $%.2f. Implement pricing and bundling strategies."},
		{Lower: ptr(100), Upper: ptr(150), Tier: domain.TierNeutral,
			Message: "Moderate ARPU: $%.2f. Opportunity to increase average spend."},
		{Lower: ptr(150), Upper: ptr(200), Tier: domain.TierPositive,
			Message: "Strong monetization: ARPU at $%.2f. Revenue per user is healthy."},
		{Lower: ptr(200), Tier: domain.TierPositive,
			Message: "Premium performance: ARPU at $%.2f. High monetization efficiency."},
	},
}

// ChurnRateTable classifies the high-risk customer share, in percent.
var ChurnRateTable = Table{
	Metric: "churn_rate",
	Bands: []Band{
		{Upper: ptr(10), Tier: domain.TierPositive,
			Message: "Excellent retention: %.1f%% churn rate. Customer loyalty is strong."},
		{Lower: ptr(10), Upper: ptr(20), Tier: domain.TierNeutral,
			Message: "Good retention: %.1f%% churn rate. Acceptable performance."},
		{Lower: ptr(20), Upper: ptr(30), Tier: domain.TierNegative,
			Message: "Moderate churn: %.1f%% churn rate. Retention programs needed."},
		{Lower: ptr(30), Tier: domain.TierNegative,
			Message: "High churn: %.1f%% churn rate. Critical intervention required."},
	},
}

// ConversionTable classifies the buyer conversion rate (0..1).
var ConversionTable = Table{
	Metric: "conversion",
	Bands: []Band{
		{Upper: ptr(0.05), Tier: domain.TierNegative,
			Message: "Low conversion: %.1f%%. Testing and optimization urgent."},
		{Lower: ptr(0.05), Upper: ptr(0.10), Tier: domain.TierNeutral,
			Message: "Fair conversion: %.1f%%. Optimization opportunities exist."},
		{Lower: ptr(0.10), Upper: ptr(0.15), Tier: domain.TierPositive,
			Message: "Good conversion: %.1f%%. Performance is solid."},
		{Lower: ptr(0.15), Tier: domain.TierPositive,
			Message: "Excellent conversion: %.1f%%. Marketing funnel is highly effective."},
	},
}

// BuiltinTables returns every threshold table, for validation.
func BuiltinTables() []Table {
	return []Table{
		RevenueGrowthTable,
		MAUGrowthTable,
		ARPUTable,
		ChurnRateTable,
		ConversionTable,
	}
}

// SegmentInsight renders the recommendation for one RFM segment.
func SegmentInsight(s analytics.SegmentSummary) domain.Insight {
	var tier domain.InsightTier
	var msg string
	switch s.Segment {
	case analytics.SegmentChampions:
		tier = domain.TierPositive
		msg = fmt.Sprintf("%d customers generating $%.0f. VIP treatment and exclusive perks essential.",
			s.Customers, s.TotalValue)
	case analytics.SegmentLoyal:
		tier = domain.TierPositive
		msg = fmt.Sprintf("%d customers with $%.0f value. Retention programs and upsell opportunities.",
			s.Customers, s.TotalValue)
	case analytics.SegmentAtRisk:
		tier = domain.TierNegative
		msg = fmt.Sprintf("%d customers showing decline. Win-back campaigns and special offers needed.",
			s.Customers)
	case analytics.SegmentChurned:
		tier = domain.TierNegative
		msg = fmt.Sprintf("%d customers lost. Re-engagement campaigns and surveys to understand churn reasons.",
			s.Customers)
	case analytics.SegmentNeedAttention:
		tier = domain.TierNeutral
		msg = fmt.Sprintf("%d customers recently inactive. Engagement campaigns and personalized offers.",
			s.Customers)
	default:
		tier = domain.TierNeutral
		msg = fmt.Sprintf("%d potential customers with $%.0f value. Nurture and convert strategies.",
			s.Customers, s.TotalValue)
	}
	return domain.Insight{
		Metric:  "segment_" + s.Segment,
		Tier:    tier,
		Message: msg,
		Value:   float64(s.Customers),
	}
}

// ConcentrationInsight states how concentrated revenue is across one
// entity kind. Above threshold counts as concentrated.
func ConcentrationInsight(metric string, sharePct, threshold float64, concentrated, balanced string) domain.Insight {
	ins := domain.Insight{
		Metric: metric,
		Value:  sharePct,
	}
	if sharePct > threshold {
		ins.Tier = domain.TierNegative
		ins.Message = fmt.Sprintf("Top performers hold %.1f%% of revenue. %s", sharePct, concentrated)
	} else {
		ins.Tier = domain.TierPositive
		ins.Message = fmt.Sprintf("Top performers hold %.1f%% of revenue. %s", sharePct, balanced)
	}
	return ins
}

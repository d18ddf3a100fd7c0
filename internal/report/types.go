// Package report assembles filtered transactions, aggregations, and
// insights into the dashboard's view payloads.
package report

import (
	"time"

	"github.com/steamlytics/steamglass/internal/analytics"
	"github.com/steamlytics/steamglass/internal/domain"
)

// View names, one per dashboard page.
const (
	ViewExecutive   = "executive"
	ViewSeasonality = "seasonality"
	ViewProducts    = "products"
	ViewRegions     = "regions"
	ViewCustomers   = "customers"
	ViewPredictive  = "predictive"
	ViewPublishers  = "publishers"
	ViewPareto      = "pareto"
	ViewCohorts     = "cohorts"
	ViewExplorer    = "explorer"
)

// ViewNames lists every view in presentation order.
func ViewNames() []string {
	return []string{
		ViewExecutive, ViewSeasonality, ViewProducts, ViewRegions,
		ViewCustomers, ViewPredictive, ViewPublishers, ViewPareto,
		ViewCohorts, ViewExplorer,
	}
}

// Meta is attached to every payload.
type Meta struct {
	View         string            `json:"view"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Generation   uint64            `json:"generation"`
	Filter       domain.FilterSpec `json:"filter"`
	Transactions int               `json:"transactions"`
	NoData       bool              `json:"noData"`
}

// ExecutiveView is the headline overview.
type ExecutiveView struct {
	Meta           Meta              `json:"meta"`
	KPIs           analytics.KPISet  `json:"kpis"`
	MonthlyRevenue []analytics.Entry `json:"monthlyRevenue"`
	MonthlyActives []analytics.Entry `json:"monthlyActives"`
	RevenueByGenre []analytics.Entry `json:"revenueByGenre"`
	RevenueByRegion []analytics.Entry `json:"revenueByRegion"`
	Insights       []domain.Insight  `json:"insights"`
}

// SeasonalityView covers time-of-year and day-of-week patterns.
type SeasonalityView struct {
	Meta           Meta                `json:"meta"`
	MonthlyRevenue []analytics.Entry   `json:"monthlyRevenue"`
	DailyRevenue   []analytics.Entry   `json:"dailyRevenue"`
	Heatmap        analytics.Heatmap   `json:"heatmap"`
	WeekdayRevenue []analytics.Entry   `json:"weekdayRevenue"`
	MAUSeries      []domain.SeriesPoint `json:"mauSeries"`
	DAUSeries      []domain.SeriesPoint `json:"dauSeries"`
	ARPUSeries     []domain.SeriesPoint `json:"arpuSeries"`
}

// ProductsView covers genres, pricing, and discounting.
type ProductsView struct {
	Meta           Meta                          `json:"meta"`
	RevenueByGenre []analytics.Entry             `json:"revenueByGenre"`
	AvgPriceByGenre []analytics.Entry            `json:"avgPriceByGenre"`
	GenreSummary   []analytics.DimensionSummary  `json:"genreSummary"`
	GenreMonthly   []analytics.MonthlySeries     `json:"genreMonthly"`
	DiscountBands  []analytics.DiscountBand      `json:"discountBands"`
	Elasticity     []analytics.ElasticityPoint   `json:"elasticity"`
}

// RegionsView covers geography.
type RegionsView struct {
	Meta               Meta                         `json:"meta"`
	RevenueByContinent []analytics.Entry            `json:"revenueByContinent"`
	RevenueByRegion    []analytics.Entry            `json:"revenueByRegion"`
	RegionSummary      []analytics.DimensionSummary `json:"regionSummary"`
	RegionMonthly      []analytics.MonthlySeries    `json:"regionMonthly"`
	Heatmap            analytics.Heatmap            `json:"heatmap"`
}

// CustomersView covers RFM segmentation and demographics.
type CustomersView struct {
	Meta              Meta                         `json:"meta"`
	Segments          []analytics.SegmentSummary   `json:"segments"`
	Scores            []analytics.RFMScore         `json:"scores"`
	RevenueByAgeGroup []analytics.Entry            `json:"revenueByAgeGroup"`
	AgeGroupSummary   []analytics.DimensionSummary `json:"ageGroupSummary"`
	AverageCLV        float64                      `json:"averageCLV"`
	Insights          []domain.Insight             `json:"insights"`
}

// PredictiveView covers churn predictions, the revenue forecast, and
// the what-if baseline.
type PredictiveView struct {
	Meta               Meta                      `json:"meta"`
	FlagDistribution   []analytics.Entry         `json:"flagDistribution"`
	ProbabilityHist    []analytics.HistogramBin  `json:"probabilityHistogram"`
	ChurnProbByGenre   []analytics.Entry         `json:"churnProbByGenre"`
	ChurnProbByPublisher []analytics.Entry       `json:"churnProbByPublisher"`
	ForecastByGenre    []analytics.ForecastEntry `json:"forecastByGenre"`
	ForecastByRegion   []analytics.ForecastEntry `json:"forecastByRegion"`
	AverageCLV         float64                   `json:"averageCLV"`
	Baseline           domain.ScenarioBaseline   `json:"baseline"`
	DefaultLevers      domain.ScenarioLevers     `json:"defaultLevers"`
	DefaultScenario    domain.ScenarioResult     `json:"defaultScenario"`
	Insights           []domain.Insight          `json:"insights"`
}

// PublishersView covers publisher performance.
type PublishersView struct {
	Meta                 Meta                         `json:"meta"`
	RevenueByPublisher   []analytics.Entry            `json:"revenueByPublisher"`
	PublisherSummary     []analytics.DimensionSummary `json:"publisherSummary"`
	PublisherMonthly     []analytics.MonthlySeries    `json:"publisherMonthly"`
	ChurnProbByPublisher []analytics.Entry            `json:"churnProbByPublisher"`
}

// ParetoView covers revenue concentration.
type ParetoView struct {
	Meta               Meta                  `json:"meta"`
	ByPublisher        analytics.ParetoResult `json:"byPublisher"`
	ByGenre            analytics.ParetoResult `json:"byGenre"`
	ByRegion           analytics.ParetoResult `json:"byRegion"`
	ByCustomer         analytics.ParetoResult `json:"byCustomer"`
	Top20PublisherPct  float64               `json:"top20PublisherPct"`
	Top20GenrePct      float64               `json:"top20GenrePct"`
	Top10CustomerPct   float64               `json:"top10CustomerPct"`
	Insights           []domain.Insight      `json:"insights"`
}

// CohortsView covers acquisition-month retention.
type CohortsView struct {
	Meta          Meta                             `json:"meta"`
	Cohorts       []analytics.CohortRow            `json:"cohorts"`
	ByGenre       map[string][]analytics.CohortRow `json:"byGenre"`
	M1Retention   float64                          `json:"m1Retention"`
	M3Retention   float64                          `json:"m3Retention"`
	HighRiskShare float64                          `json:"highRiskShare"`
}

// ExplorerView covers raw-data summaries.
type ExplorerView struct {
	Meta         Meta                        `json:"meta"`
	Records      int                         `json:"records"`
	Customers    int                         `json:"customers"`
	From         time.Time                   `json:"from"`
	To           time.Time                   `json:"to"`
	TotalRevenue float64                     `json:"totalRevenue"`
	Stats        map[string]analytics.Stats  `json:"stats"`
	Correlations analytics.CorrelationMatrix `json:"correlations"`
}

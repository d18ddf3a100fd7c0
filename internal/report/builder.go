package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/steamlytics/steamglass/internal/analytics"
	"github.com/steamlytics/steamglass/internal/domain"
	"github.com/steamlytics/steamglass/internal/filter"
	"github.com/steamlytics/steamglass/internal/insight"
	"github.com/steamlytics/steamglass/internal/scenario"
)

var (
	// ErrUnknownView means the requested view name is not one of the ten.
	ErrUnknownView = errors.New("unknown report view")

	// ErrBadExpression means the ad-hoc filter expression failed to
	// compile or evaluate.
	ErrBadExpression = errors.New("invalid filter expression")
)

var tracer = otel.Tracer("steamglass-report")

const histogramBins = 20

// Builder assembles view payloads from the current dataset snapshot.
type Builder struct {
	store  domain.Store
	cache  domain.Cache
	sim    *scenario.Simulator
	ttl    time.Duration
	logger *slog.Logger
}

// NewBuilder creates a report builder. cache may be nil to disable
// payload caching.
func NewBuilder(store domain.Store, cache domain.Cache, ttl time.Duration, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:  store,
		cache:  cache,
		sim:    scenario.New(),
		ttl:    ttl,
		logger: logger,
	}
}

// Build renders one view as JSON, serving from cache when the dataset
// generation and filter fingerprint match a previous build.
func (b *Builder) Build(ctx context.Context, view string, spec domain.FilterSpec) (json.RawMessage, error) {
	ds := b.store.Snapshot()
	key := fmt.Sprintf("report:%s:gen%d:%s", view, ds.Generation, spec.Fingerprint())

	if b.cache != nil {
		if raw, err := b.cache.Get(ctx, key); err == nil && raw != nil {
			return raw, nil
		}
	}

	ctx, span := tracer.Start(ctx, "report.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.view", view),
		attribute.Int64("dataset.generation", int64(ds.Generation)),
	)

	start := time.Now()
	payload, err := b.assemble(ctx, view, ds, spec)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s view: %w", view, err)
	}

	if b.cache != nil {
		_ = b.cache.Set(ctx, key, raw, b.ttl)
	}

	b.logger.Debug("report built",
		"view", view,
		"generation", ds.Generation,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(raw))

	return raw, nil
}

func (b *Builder) assemble(ctx context.Context, view string, ds *domain.Dataset, spec domain.FilterSpec) (any, error) {
	txs, err := b.filtered(ds, spec)
	if err != nil {
		return nil, err
	}

	meta := Meta{
		View:         view,
		GeneratedAt:  time.Now().UTC(),
		Generation:   ds.Generation,
		Filter:       spec,
		Transactions: len(txs),
		NoData:       len(txs) == 0,
	}

	switch view {
	case ViewExecutive:
		return b.executive(meta, txs), nil
	case ViewSeasonality:
		return b.seasonality(meta, ds, txs, spec), nil
	case ViewProducts:
		return b.products(meta, txs), nil
	case ViewRegions:
		return b.regions(meta, txs), nil
	case ViewCustomers:
		return b.customers(meta, ds, txs), nil
	case ViewPredictive:
		return b.predictive(meta, ds, txs, spec), nil
	case ViewPublishers:
		return b.publishers(meta, ds, txs, spec), nil
	case ViewPareto:
		return b.pareto(meta, txs), nil
	case ViewCohorts:
		return b.cohorts(meta, txs), nil
	case ViewExplorer:
		return b.explorer(meta, txs), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}
}

// filtered applies the dimension/date filter and then the optional
// expression predicate.
func (b *Builder) filtered(ds *domain.Dataset, spec domain.FilterSpec) ([]domain.Transaction, error) {
	txs := filter.Transactions(ds.Transactions, spec)
	if spec.Expression == "" {
		return txs, nil
	}
	f, err := filter.CompileExpr(spec.Expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExpression, err)
	}
	txs, err = f.Apply(txs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExpression, err)
	}
	return txs, nil
}

func (b *Builder) executive(meta Meta, txs []domain.Transaction) ExecutiveView {
	k := analytics.KPIs(txs)
	actives := analytics.MonthlyActiveUsers(txs)
	mauGrowth := analytics.RevenueGrowth(actives)

	return ExecutiveView{
		Meta:            meta,
		KPIs:            k,
		MonthlyRevenue:  analytics.MonthlyRevenue(txs),
		MonthlyActives:  actives,
		RevenueByGenre:  analytics.RevenueBy(txs, analytics.DimGenre),
		RevenueByRegion: analytics.RevenueBy(txs, analytics.DimRegion),
		Insights: []domain.Insight{
			insight.RevenueGrowthTable.Evaluate(k.RevenueGrowthPct, k.TotalRevenue, k.RevenueGrowthPct),
			insight.MAUGrowthTable.Evaluate(mauGrowth, k.AvgMAU, mauGrowth),
			insight.ARPUTable.Evaluate(k.ARPU, k.ARPU),
			insight.ChurnRateTable.Evaluate(k.ChurnRatePct, k.ChurnRatePct),
			insight.ConversionTable.Evaluate(k.ConversionRate, k.ConversionRate*100),
		},
	}
}

func (b *Builder) seasonality(meta Meta, ds *domain.Dataset, txs []domain.Transaction, spec domain.FilterSpec) SeasonalityView {
	return SeasonalityView{
		Meta:           meta,
		MonthlyRevenue: analytics.MonthlyRevenue(txs),
		DailyRevenue:   analytics.DailyActivity(txs),
		Heatmap:        analytics.RevenueHeatmap(txs),
		WeekdayRevenue: analytics.RevenueByWeekday(txs),
		MAUSeries:      seriesWindow(ds.MAU, spec.From, spec.To),
		DAUSeries:      seriesWindow(ds.DAU, spec.From, spec.To),
		ARPUSeries:     seriesWindow(ds.ARPU, spec.From, spec.To),
	}
}

func (b *Builder) products(meta Meta, txs []domain.Transaction) ProductsView {
	return ProductsView{
		Meta:            meta,
		RevenueByGenre:  analytics.RevenueBy(txs, analytics.DimGenre),
		AvgPriceByGenre: analytics.AvgPriceBy(txs, analytics.DimGenre),
		GenreSummary:    analytics.SummaryBy(txs, analytics.DimGenre),
		GenreMonthly:    analytics.MonthlyRevenueBy(txs, analytics.DimGenre),
		DiscountBands:   analytics.DiscountImpact(txs),
		Elasticity:      analytics.PriceElasticity(txs, analytics.DimGenre),
	}
}

func (b *Builder) regions(meta Meta, txs []domain.Transaction) RegionsView {
	return RegionsView{
		Meta:               meta,
		RevenueByContinent: analytics.RevenueBy(txs, analytics.DimContinent),
		RevenueByRegion:    analytics.RevenueBy(txs, analytics.DimRegion),
		RegionSummary:      analytics.SummaryBy(txs, analytics.DimRegion),
		RegionMonthly:      analytics.MonthlyRevenueBy(txs, analytics.DimRegion),
		Heatmap:            analytics.RevenueHeatmap(txs),
	}
}

func (b *Builder) customers(meta Meta, ds *domain.Dataset, txs []domain.Transaction) CustomersView {
	scores := analytics.RFM(txs)
	segments := analytics.SegmentDistribution(scores)

	insights := make([]domain.Insight, 0, len(segments))
	for _, s := range segments {
		insights = append(insights, insight.SegmentInsight(s))
	}

	return CustomersView{
		Meta:              meta,
		Segments:          segments,
		Scores:            scores,
		RevenueByAgeGroup: analytics.RevenueBy(txs, analytics.DimAgeGroup),
		AgeGroupSummary:   analytics.SummaryBy(txs, analytics.DimAgeGroup),
		AverageCLV:        analytics.AverageCLV(ds.CLV),
		Insights:          insights,
	}
}

func (b *Builder) predictive(meta Meta, ds *domain.Dataset, txs []domain.Transaction, spec domain.FilterSpec) PredictiveView {
	preds := filter.ChurnPredictions(ds.ChurnPredictions, spec)
	forecast := filter.Forecast(ds.Forecast, spec)

	baseline := b.baseline(txs)
	levers := ds.ScenarioDefaults
	k := analytics.KPIs(txs)

	return PredictiveView{
		Meta:                 meta,
		FlagDistribution:     analytics.FlagDistribution(preds),
		ProbabilityHist:      analytics.ProbabilityHistogram(preds, histogramBins),
		ChurnProbByGenre:     analytics.AvgChurnProbabilityByGenre(preds),
		ChurnProbByPublisher: analytics.AvgChurnProbabilityByPublisher(preds),
		ForecastByGenre:      analytics.ForecastByGenre(forecast),
		ForecastByRegion:     analytics.ForecastByRegion(forecast),
		AverageCLV:           analytics.AverageCLV(ds.CLV),
		Baseline:             baseline,
		DefaultLevers:        levers,
		DefaultScenario:      b.sim.Run(baseline, levers),
		Insights: []domain.Insight{
			insight.ChurnRateTable.Evaluate(k.ChurnRatePct, k.ChurnRatePct),
		},
	}
}

func (b *Builder) publishers(meta Meta, ds *domain.Dataset, txs []domain.Transaction, spec domain.FilterSpec) PublishersView {
	preds := filter.ChurnPredictions(ds.ChurnPredictions, spec)
	return PublishersView{
		Meta:                 meta,
		RevenueByPublisher:   analytics.RevenueBy(txs, analytics.DimPublisher),
		PublisherSummary:     analytics.SummaryBy(txs, analytics.DimPublisher),
		PublisherMonthly:     analytics.MonthlyRevenueBy(txs, analytics.DimPublisher),
		ChurnProbByPublisher: analytics.AvgChurnProbabilityByPublisher(preds),
	}
}

func (b *Builder) pareto(meta Meta, txs []domain.Transaction) ParetoView {
	top20Pub := analytics.Concentration(analytics.RevenueBy(txs, analytics.DimPublisher), 0.20)
	top20Genre := analytics.Concentration(analytics.RevenueBy(txs, analytics.DimGenre), 0.20)
	top10Cust := analytics.Concentration(analytics.RevenueBy(txs, analytics.DimCustomer), 0.10)

	return ParetoView{
		Meta:              meta,
		ByPublisher:       analytics.ParetoBy(txs, analytics.DimPublisher),
		ByGenre:           analytics.ParetoBy(txs, analytics.DimGenre),
		ByRegion:          analytics.ParetoBy(txs, analytics.DimRegion),
		ByCustomer:        analytics.ParetoBy(txs, analytics.DimCustomer),
		Top20PublisherPct: top20Pub,
		Top20GenrePct:     top20Genre,
		Top10CustomerPct:  top10Cust,
		Insights: []domain.Insight{
			insight.ConcentrationInsight("pareto_publisher", top20Pub, 75,
				"Highly concentrated publisher base. Diversification reduces dependency risk.",
				"Balanced distribution across publishers."),
			insight.ConcentrationInsight("pareto_genre", top20Genre, 75,
				"Highly concentrated genre mix. Consider broadening the catalog.",
				"Balanced distribution across genres."),
			insight.ConcentrationInsight("pareto_customer", top10Cust, 60,
				"Revenue depends on few customers. VIP retention focus essential.",
				"Healthy customer distribution."),
		},
	}
}

func (b *Builder) cohorts(meta Meta, txs []domain.Transaction) CohortsView {
	rows := analytics.CohortRetention(txs, 0)
	return CohortsView{
		Meta:          meta,
		Cohorts:       rows,
		ByGenre:       analytics.CohortRetentionByGenre(txs, 0),
		M1Retention:   analytics.AvgRetentionAt(rows, 1),
		M3Retention:   analytics.AvgRetentionAt(rows, 3),
		HighRiskShare: analytics.HighRiskShare(txs),
	}
}

func (b *Builder) explorer(meta Meta, txs []domain.Transaction) ExplorerView {
	view := ExplorerView{
		Meta:         meta,
		Records:      len(txs),
		Stats:        make(map[string]analytics.Stats),
		Correlations: analytics.Correlations(txs),
	}

	customers := make(map[string]struct{})
	for i, tx := range txs {
		customers[tx.CustomerID] = struct{}{}
		view.TotalRevenue += tx.NetRevenue
		if i == 0 || tx.PurchaseDate.Before(view.From) {
			view.From = tx.PurchaseDate
		}
		if i == 0 || tx.PurchaseDate.After(view.To) {
			view.To = tx.PurchaseDate
		}
	}
	view.Customers = len(customers)

	for name, values := range analytics.NumericColumns(txs) {
		view.Stats[name] = analytics.Describe(values)
	}
	return view
}

// baseline derives the simulator starting point from the filtered view.
func (b *Builder) baseline(txs []domain.Transaction) domain.ScenarioBaseline {
	k := analytics.KPIs(txs)
	base := domain.ScenarioBaseline{
		Revenue:   k.TotalRevenue,
		ChurnRate: k.ChurnRatePct,
		MAU:       k.AvgMAU,
	}
	if base.MAU > 0 {
		base.CLV = base.Revenue / base.MAU
	}
	return base
}

// Simulate runs the what-if model against the filtered baseline.
func (b *Builder) Simulate(ctx context.Context, spec domain.FilterSpec, levers domain.ScenarioLevers) (domain.ScenarioResult, error) {
	ds := b.store.Snapshot()
	key := fmt.Sprintf("simulate:gen%d:%s:%s", ds.Generation, spec.Fingerprint(), leverKey(levers))

	if b.cache != nil {
		if raw, err := b.cache.Get(ctx, key); err == nil && raw != nil {
			var cached domain.ScenarioResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	txs, err := b.filtered(ds, spec)
	if err != nil {
		return domain.ScenarioResult{}, err
	}

	result := b.sim.Run(b.baseline(txs), levers)

	if b.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = b.cache.Set(ctx, key, raw, b.ttl)
		}
	}
	return result, nil
}

func leverKey(l domain.ScenarioLevers) string {
	return strconv.FormatFloat(l.ChurnReductionPct, 'f', 4, 64) + ":" +
		strconv.FormatFloat(l.PriceIncreasePct, 'f', 4, 64) + ":" +
		strconv.FormatFloat(l.MAUGrowthPct, 'f', 4, 64)
}

// DefaultLevers exposes the lever positions shipped with the dataset.
func (b *Builder) DefaultLevers() domain.ScenarioLevers {
	return b.store.Snapshot().ScenarioDefaults
}

// OptionsPayload is the filter bar's source of selectable values.
type OptionsPayload struct {
	filter.Options
	MinDate time.Time `json:"minDate"`
	MaxDate time.Time `json:"maxDate"`
}

// FilterOptions returns the distinct filterable values of the full
// dataset plus the observed date range.
func (b *Builder) FilterOptions(ctx context.Context) OptionsPayload {
	ds := b.store.Snapshot()
	return OptionsPayload{
		Options: filter.CollectOptions(ds.Transactions),
		MinDate: ds.MinDate,
		MaxDate: ds.MaxDate,
	}
}

// exportHeader matches the transaction export column order.
var exportHeader = []string{
	"customer_id", "purchase_date", "year_month", "region", "continent",
	"genre", "publisher", "age_group", "churn_risk", "net_revenue",
	"playtime_hours", "games_purchased", "avg_game_price", "discount_pct",
	"retention_days",
}

// ExportCSV renders the filtered transactions as a CSV document.
func (b *Builder) ExportCSV(ctx context.Context, spec domain.FilterSpec) ([]byte, error) {
	ds := b.store.Snapshot()
	txs, err := b.filtered(ds, spec)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		row := []string{
			tx.CustomerID,
			tx.PurchaseDate.Format("2006-01-02"),
			tx.YearMonth,
			tx.Region,
			tx.Continent,
			tx.Genre,
			tx.Publisher,
			tx.AgeGroup,
			tx.ChurnRisk,
			strconv.FormatFloat(tx.NetRevenue, 'f', 2, 64),
			strconv.FormatFloat(tx.PlaytimeHours, 'f', 2, 64),
			strconv.Itoa(tx.GamesPurchased),
			strconv.FormatFloat(tx.AvgGamePrice, 'f', 2, 64),
			strconv.FormatFloat(tx.DiscountPct, 'f', 2, 64),
			strconv.FormatFloat(tx.RetentionDays, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// seriesWindow keeps the points inside [from, to], both bounds
// inclusive and optional.
func seriesWindow(points []domain.SeriesPoint, from, to time.Time) []domain.SeriesPoint {
	out := make([]domain.SeriesPoint, 0, len(points))
	for _, p := range points {
		if !from.IsZero() && p.Period.Before(from) {
			continue
		}
		if !to.IsZero() && p.Period.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

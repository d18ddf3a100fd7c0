// Package dataset loads the CSV exports into immutable in-memory snapshots.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

var (
	// ErrMissingFile means a required export is absent. Fatal at startup.
	ErrMissingFile = errors.New("missing data file")

	// ErrMissingColumn means an export lacks a required column. Fatal at startup.
	ErrMissingColumn = errors.New("missing column")
)

// Default lever positions used when the scenario parameters export does
// not carry an override.
var defaultLevers = domain.ScenarioLevers{
	ChurnReductionPct: 5,
	PriceIncreasePct:  5,
	MAUGrowthPct:      8,
}

// dateFormats tried in order when parsing date cells.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01",
}

// table is a parsed CSV: normalized header index plus raw rows.
type table struct {
	file string
	cols map[string]int
	rows [][]string
}

func (t *table) cell(row []string, col string) string {
	return strings.TrimSpace(row[t.cols[col]])
}

func (t *table) floatCell(row []string, col string) (float64, error) {
	s := t.cell(row, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: bad numeric value %q in column %s", t.file, s, col)
	}
	return v, nil
}

func (t *table) dateCell(row []string, col string) (time.Time, error) {
	s := t.cell(row, col)
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: bad date value %q in column %s", t.file, s, col)
}

// readTable reads one export. Header names are trimmed and lowercased so
// that cosmetic header edits do not break the loader.
func readTable(dir, file string, required []string) (*table, error) {
	path := filepath.Join(dir, file)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, file)
		}
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", file, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s in %s", ErrMissingColumn, col, file)
		}
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		if len(row) < len(header) {
			continue // short row, skip
		}
		rows = append(rows, row)
	}

	return &table{file: file, cols: cols, rows: rows}, nil
}

// Load reads all eight exports from dir and assembles a dataset snapshot.
func Load(dir string) (*domain.Dataset, error) {
	ds := &domain.Dataset{
		ScenarioDefaults: defaultLevers,
		LoadedAt:         time.Now().UTC(),
	}

	if err := loadTransactions(dir, ds); err != nil {
		return nil, err
	}
	if err := loadSeries(dir, ds); err != nil {
		return nil, err
	}
	if err := loadCLV(dir, ds); err != nil {
		return nil, err
	}
	if err := loadChurn(dir, ds); err != nil {
		return nil, err
	}
	if err := loadForecast(dir, ds); err != nil {
		return nil, err
	}
	if err := loadScenario(dir, ds); err != nil {
		return nil, err
	}

	return ds, nil
}

func loadTransactions(dir string, ds *domain.Dataset) error {
	t, err := readTable(dir, FileTransactions, transactionColumns)
	if err != nil {
		return err
	}

	txs := make([]domain.Transaction, 0, len(t.rows))
	for _, row := range t.rows {
		date, err := t.dateCell(row, "purchase_date")
		if err != nil {
			return err
		}

		tx := domain.Transaction{
			CustomerID:   t.cell(row, "customer_id"),
			PurchaseDate: date,
			Region:       t.cell(row, "region"),
			Genre:        t.cell(row, "genre"),
			Publisher:    t.cell(row, "publisher"),
			AgeGroup:     t.cell(row, "age_group"),
			ChurnRisk:    t.cell(row, "churn_risk"),
			YearMonth:    domain.MonthKey(date),
		}
		tx.Continent = domain.ContinentForRegion(tx.Region)

		if tx.NetRevenue, err = t.floatCell(row, "net_revenue"); err != nil {
			return err
		}
		if tx.PlaytimeHours, err = t.floatCell(row, "playtime_hours"); err != nil {
			return err
		}
		games, err := t.floatCell(row, "games_purchased")
		if err != nil {
			return err
		}
		tx.GamesPurchased = int(games)
		if tx.AvgGamePrice, err = t.floatCell(row, "avg_game_price"); err != nil {
			return err
		}
		if tx.DiscountPct, err = t.floatCell(row, "discount_pct"); err != nil {
			return err
		}
		if tx.RetentionDays, err = t.floatCell(row, "retention_days"); err != nil {
			return err
		}

		if ds.MinDate.IsZero() || date.Before(ds.MinDate) {
			ds.MinDate = date
		}
		if date.After(ds.MaxDate) {
			ds.MaxDate = date
		}
		txs = append(txs, tx)
	}

	sort.Slice(txs, func(i, j int) bool { return txs[i].PurchaseDate.Before(txs[j].PurchaseDate) })
	ds.Transactions = txs
	return nil
}

func loadSeries(dir string, ds *domain.Dataset) error {
	specs := []struct {
		file    string
		cols    []string
		dateCol string
		valCol  string
		target  *[]domain.SeriesPoint
	}{
		{FileARPU, arpuColumns, "year_month", "arpu", &ds.ARPU},
		{FileDAU, dauColumns, "purchase_date", "dau", &ds.DAU},
		{FileMAU, mauColumns, "year_month", "mau", &ds.MAU},
	}

	for _, s := range specs {
		t, err := readTable(dir, s.file, s.cols)
		if err != nil {
			return err
		}
		points := make([]domain.SeriesPoint, 0, len(t.rows))
		for _, row := range t.rows {
			period, err := t.dateCell(row, s.dateCol)
			if err != nil {
				return err
			}
			value, err := t.floatCell(row, s.valCol)
			if err != nil {
				return err
			}
			points = append(points, domain.SeriesPoint{Period: period, Value: value})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Period.Before(points[j].Period) })
		*s.target = points
	}
	return nil
}

func loadCLV(dir string, ds *domain.Dataset) error {
	t, err := readTable(dir, FileCLV, clvColumns)
	if err != nil {
		return err
	}
	recs := make([]domain.CLVRecord, 0, len(t.rows))
	for _, row := range t.rows {
		clv, err := t.floatCell(row, "clv")
		if err != nil {
			return err
		}
		recs = append(recs, domain.CLVRecord{
			CustomerID: t.cell(row, "customer_id"),
			CLV:        clv,
		})
	}
	ds.CLV = recs
	return nil
}

func loadChurn(dir string, ds *domain.Dataset) error {
	t, err := readTable(dir, FileChurn, churnColumns)
	if err != nil {
		return err
	}
	preds := make([]domain.ChurnPrediction, 0, len(t.rows))
	for _, row := range t.rows {
		prob, err := t.floatCell(row, "churn_probability")
		if err != nil {
			return err
		}
		preds = append(preds, domain.ChurnPrediction{
			CustomerID:       t.cell(row, "customer_id"),
			ChurnProbability: prob,
			PredictedFlag:    t.cell(row, "predicted_churn_flag"),
			Region:           t.cell(row, "region"),
			Genre:            t.cell(row, "genre"),
			Publisher:        t.cell(row, "publisher"),
		})
	}
	ds.ChurnPredictions = preds
	return nil
}

func loadForecast(dir string, ds *domain.Dataset) error {
	t, err := readTable(dir, FileForecast, forecastColumns)
	if err != nil {
		return err
	}
	recs := make([]domain.ForecastRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := domain.ForecastRecord{
			Genre:  t.cell(row, "genre"),
			Region: t.cell(row, "region"),
		}
		if rec.Forecast, err = t.floatCell(row, "forecasted_revenue_90d"); err != nil {
			return err
		}
		if rec.Low, err = t.floatCell(row, "forecast_low"); err != nil {
			return err
		}
		if rec.High, err = t.floatCell(row, "forecast_high"); err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	ds.Forecast = recs
	return nil
}

func loadScenario(dir string, ds *domain.Dataset) error {
	t, err := readTable(dir, FileScenario, scenarioColumns)
	if err != nil {
		return err
	}
	levers := defaultLevers
	for _, row := range t.rows {
		name := strings.ToLower(t.cell(row, "parameter"))
		value, err := t.floatCell(row, "value")
		if err != nil {
			return err
		}
		switch name {
		case "churn_reduction_pct", "churn_reduction":
			levers.ChurnReductionPct = value
		case "price_increase_pct", "price_increase":
			levers.PriceIncreasePct = value
		case "mau_growth_pct", "mau_growth":
			levers.MAUGrowthPct = value
		}
	}
	// Exports with out-of-range defaults still produce usable levers.
	ds.ScenarioDefaults = levers.Clamped()
	return nil
}

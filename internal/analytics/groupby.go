package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/steamlytics/steamglass/internal/domain"
)

// RevenueBy sums net revenue per dimension value, highest first.
func RevenueBy(txs []domain.Transaction, dim Dimension) []Entry {
	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[dimensionValue(tx, dim)] += tx.NetRevenue
	}
	out := entriesFromMap(sums)
	sortEntriesDesc(out)
	return out
}

// UniqueCustomersBy counts distinct customers per dimension value,
// highest first.
func UniqueCustomersBy(txs []domain.Transaction, dim Dimension) []Entry {
	sets := make(map[string]map[string]struct{})
	for _, tx := range txs {
		key := dimensionValue(tx, dim)
		s, ok := sets[key]
		if !ok {
			s = make(map[string]struct{})
			sets[key] = s
		}
		s[tx.CustomerID] = struct{}{}
	}
	out := make([]Entry, 0, len(sets))
	for key, s := range sets {
		out = append(out, Entry{Key: key, Value: float64(len(s))})
	}
	sortEntriesDesc(out)
	return out
}

// AvgPriceBy averages the listed game price per dimension value,
// highest first.
func AvgPriceBy(txs []domain.Transaction, dim Dimension) []Entry {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, tx := range txs {
		key := dimensionValue(tx, dim)
		sums[key] += tx.AvgGamePrice
		counts[key]++
	}
	out := make([]Entry, 0, len(sums))
	for key, sum := range sums {
		out = append(out, Entry{Key: key, Value: sum / float64(counts[key])})
	}
	sortEntriesDesc(out)
	return out
}

// DimensionSummary is one row of a per-dimension performance table.
type DimensionSummary struct {
	Key                string  `json:"key"`
	Revenue            float64 `json:"revenue"`
	UniqueCustomers    int     `json:"uniqueCustomers"`
	TotalGames         int     `json:"totalGames"`
	AvgGames           float64 `json:"avgGames"`
	AvgPrice           float64 `json:"avgPrice"`
	AvgPlaytime        float64 `json:"avgPlaytime"`
	AvgRetentionDays   float64 `json:"avgRetentionDays"`
	RevenuePerCustomer float64 `json:"revenuePerCustomer"`
	HighRiskPct        float64 `json:"highRiskPct"`
	LowRiskPct         float64 `json:"lowRiskPct"`
}

// SummaryBy builds the performance table for a dimension, ordered by
// revenue descending.
func SummaryBy(txs []domain.Transaction, dim Dimension) []DimensionSummary {
	type acc struct {
		revenue   float64
		customers map[string]struct{}
		games     int
		price     float64
		playtime  float64
		retention float64
		highRisk  int
		lowRisk   int
		rows      int
	}
	accs := make(map[string]*acc)
	for _, tx := range txs {
		key := dimensionValue(tx, dim)
		a, ok := accs[key]
		if !ok {
			a = &acc{customers: make(map[string]struct{})}
			accs[key] = a
		}
		a.revenue += tx.NetRevenue
		a.customers[tx.CustomerID] = struct{}{}
		a.games += tx.GamesPurchased
		a.price += tx.AvgGamePrice
		a.playtime += tx.PlaytimeHours
		a.retention += tx.RetentionDays
		if tx.ChurnRisk == domain.RiskHigh {
			a.highRisk++
		}
		if tx.ChurnRisk == domain.RiskLow {
			a.lowRisk++
		}
		a.rows++
	}

	out := make([]DimensionSummary, 0, len(accs))
	for key, a := range accs {
		n := float64(a.rows)
		s := DimensionSummary{
			Key:              key,
			Revenue:          a.revenue,
			UniqueCustomers:  len(a.customers),
			TotalGames:       a.games,
			AvgGames:         float64(a.games) / n,
			AvgPrice:         a.price / n,
			AvgPlaytime:      a.playtime / n,
			AvgRetentionDays: a.retention / n,
			HighRiskPct:      float64(a.highRisk) / n * 100,
			LowRiskPct:       float64(a.lowRisk) / n * 100,
		}
		if s.UniqueCustomers > 0 {
			s.RevenuePerCustomer = s.Revenue / float64(s.UniqueCustomers)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Heatmap is revenue per region and calendar month (1..12).
type Heatmap struct {
	Regions []string     `json:"regions"`
	Months  [12]string   `json:"months"`
	Values  [][12]float64 `json:"values"` // Values[i] belongs to Regions[i]
}

// RevenueHeatmap pivots revenue into a region-by-month grid.
func RevenueHeatmap(txs []domain.Transaction) Heatmap {
	hm := Heatmap{
		Months: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	}
	byRegion := make(map[string]*[12]float64)
	for _, tx := range txs {
		row, ok := byRegion[tx.Region]
		if !ok {
			row = &[12]float64{}
			byRegion[tx.Region] = row
		}
		row[int(tx.PurchaseDate.Month())-1] += tx.NetRevenue
	}
	regions := make([]string, 0, len(byRegion))
	for region := range byRegion {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	hm.Regions = regions
	hm.Values = make([][12]float64, len(regions))
	for i, region := range regions {
		hm.Values[i] = *byRegion[region]
	}
	return hm
}

// weekdayOrder starts the business week on Monday.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// RevenueByWeekday sums revenue per day of week, Monday first.
func RevenueByWeekday(txs []domain.Transaction) []Entry {
	sums := make(map[time.Weekday]float64)
	for _, tx := range txs {
		sums[tx.PurchaseDate.Weekday()] += tx.NetRevenue
	}
	out := make([]Entry, 0, 7)
	for _, wd := range weekdayOrder {
		out = append(out, Entry{Key: wd.String(), Value: sums[wd]})
	}
	return out
}

// MonthlySeries is one named line of a monthly multi-series chart.
type MonthlySeries struct {
	Name   string  `json:"name"`
	Months []string `json:"months"`
	Values []float64 `json:"values"`
}

// MonthlyRevenueBy pivots revenue into one monthly series per dimension
// value, months in order and missing cells filled with zero.
func MonthlyRevenueBy(txs []domain.Transaction, dim Dimension) []MonthlySeries {
	monthSet := make(map[string]struct{})
	sums := make(map[string]map[string]float64) // dim value -> month -> revenue
	for _, tx := range txs {
		monthSet[tx.YearMonth] = struct{}{}
		key := dimensionValue(tx, dim)
		m, ok := sums[key]
		if !ok {
			m = make(map[string]float64)
			sums[key] = m
		}
		m[tx.YearMonth] += tx.NetRevenue
	}

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	names := make([]string, 0, len(sums))
	for name := range sums {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MonthlySeries, 0, len(names))
	for _, name := range names {
		values := make([]float64, len(months))
		for i, m := range months {
			values[i] = sums[name][m]
		}
		out = append(out, MonthlySeries{Name: name, Months: months, Values: values})
	}
	return out
}

// DiscountBand is one of five equal-width discount ranges with the
// revenue it produced and the average basket size inside it.
type DiscountBand struct {
	Label    string  `json:"label"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
	Revenue  float64 `json:"revenue"`
	AvgGames float64 `json:"avgGames"`
	Count    int     `json:"count"`
}

// DiscountImpact cuts the observed discount range into five equal-width
// bands and aggregates revenue and basket size per band.
func DiscountImpact(txs []domain.Transaction) []DiscountBand {
	if len(txs) == 0 {
		return nil
	}
	lo, hi := txs[0].DiscountPct, txs[0].DiscountPct
	for _, tx := range txs {
		if tx.DiscountPct < lo {
			lo = tx.DiscountPct
		}
		if tx.DiscountPct > hi {
			hi = tx.DiscountPct
		}
	}

	const bins = 5
	width := (hi - lo) / bins
	bands := make([]DiscountBand, bins)
	for i := range bands {
		bands[i].Lower = lo + width*float64(i)
		bands[i].Upper = lo + width*float64(i+1)
		bands[i].Label = fmt.Sprintf("%.0f-%.0f%%", bands[i].Lower, bands[i].Upper)
	}

	var games [bins]int
	for _, tx := range txs {
		idx := bins - 1
		if width > 0 {
			idx = int((tx.DiscountPct - lo) / width)
			if idx >= bins {
				idx = bins - 1
			}
		}
		bands[idx].Revenue += tx.NetRevenue
		bands[idx].Count++
		games[idx] += tx.GamesPurchased
	}
	for i := range bands {
		if bands[i].Count > 0 {
			bands[i].AvgGames = float64(games[i]) / float64(bands[i].Count)
		}
	}
	return bands
}

// ElasticityPoint positions one dimension value by its average price
// against average basket size and per-row revenue.
type ElasticityPoint struct {
	Key        string  `json:"key"`
	AvgPrice   float64 `json:"avgPrice"`
	AvgGames   float64 `json:"avgGames"`
	AvgRevenue float64 `json:"avgRevenue"`
}

// PriceElasticity computes one scatter point per dimension value.
func PriceElasticity(txs []domain.Transaction, dim Dimension) []ElasticityPoint {
	type acc struct {
		price, games, revenue float64
		rows                  int
	}
	accs := make(map[string]*acc)
	for _, tx := range txs {
		key := dimensionValue(tx, dim)
		a, ok := accs[key]
		if !ok {
			a = &acc{}
			accs[key] = a
		}
		a.price += tx.AvgGamePrice
		a.games += float64(tx.GamesPurchased)
		a.revenue += tx.NetRevenue
		a.rows++
	}
	out := make([]ElasticityPoint, 0, len(accs))
	for key, a := range accs {
		n := float64(a.rows)
		out = append(out, ElasticityPoint{
			Key:        key,
			AvgPrice:   a.price / n,
			AvgGames:   a.games / n,
			AvgRevenue: a.revenue / n,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

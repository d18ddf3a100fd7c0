package analytics

import (
	"github.com/steamlytics/steamglass/internal/domain"
)

// KPISet holds the headline metrics of the executive view.
type KPISet struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	RevenueGrowthPct float64 `json:"revenueGrowthPct"`
	AvgMAU           float64 `json:"avgMAU"`
	UniqueBuyers     int     `json:"uniqueBuyers"`
	ARPU             float64 `json:"arpu"`
	ConversionRate   float64 `json:"conversionRate"` // 0..1
	ChurnRatePct     float64 `json:"churnRatePct"`
	Months           int     `json:"months"`
	Transactions     int     `json:"transactions"`
}

// KPIs computes the headline metrics over the filtered transactions.
// Every ratio is zero-guarded: an empty slice yields an all-zero set.
func KPIs(txs []domain.Transaction) KPISet {
	k := KPISet{Transactions: len(txs)}
	if len(txs) == 0 {
		return k
	}

	buyers := make(map[string]struct{})
	highRisk := make(map[string]struct{})
	monthBuyers := make(map[string]map[string]struct{})

	for _, tx := range txs {
		k.TotalRevenue += tx.NetRevenue
		buyers[tx.CustomerID] = struct{}{}
		if tx.ChurnRisk == domain.RiskHigh {
			highRisk[tx.CustomerID] = struct{}{}
		}
		mb, ok := monthBuyers[tx.YearMonth]
		if !ok {
			mb = make(map[string]struct{})
			monthBuyers[tx.YearMonth] = mb
		}
		mb[tx.CustomerID] = struct{}{}
	}

	k.UniqueBuyers = len(buyers)
	k.Months = len(monthBuyers)

	var activeSum int
	for _, mb := range monthBuyers {
		activeSum += len(mb)
	}
	k.AvgMAU = float64(activeSum) / float64(len(monthBuyers))

	if k.AvgMAU > 0 {
		k.ARPU = k.TotalRevenue / k.AvgMAU
	}
	k.ConversionRate = float64(k.UniqueBuyers) / float64(len(txs))
	k.ChurnRatePct = float64(len(highRisk)) / float64(len(buyers)) * 100

	k.RevenueGrowthPct = RevenueGrowth(MonthlyRevenue(txs))
	return k
}

// MonthlyRevenue sums net revenue per calendar month, sorted by month.
func MonthlyRevenue(txs []domain.Transaction) []Entry {
	sums := make(map[string]float64)
	for _, tx := range txs {
		sums[tx.YearMonth] += tx.NetRevenue
	}
	out := entriesFromMap(sums)
	sortEntriesByKey(out)
	return out
}

// RevenueGrowth is the percent change from the second-to-last month to
// the last. Fewer than two months, or a zero base, yields 0.
func RevenueGrowth(monthly []Entry) float64 {
	if len(monthly) < 2 {
		return 0
	}
	prev := monthly[len(monthly)-2].Value
	last := monthly[len(monthly)-1].Value
	if prev == 0 {
		return 0
	}
	return (last - prev) / prev * 100
}

// MonthlyActiveUsers counts distinct customers per month, sorted by month.
func MonthlyActiveUsers(txs []domain.Transaction) []Entry {
	byMonth := make(map[string]map[string]struct{})
	for _, tx := range txs {
		mb, ok := byMonth[tx.YearMonth]
		if !ok {
			mb = make(map[string]struct{})
			byMonth[tx.YearMonth] = mb
		}
		mb[tx.CustomerID] = struct{}{}
	}
	out := make([]Entry, 0, len(byMonth))
	for month, customers := range byMonth {
		out = append(out, Entry{Key: month, Value: float64(len(customers))})
	}
	sortEntriesByKey(out)
	return out
}

// DailyActivity counts transactions per calendar day, sorted by day.
func DailyActivity(txs []domain.Transaction) []Entry {
	counts := make(map[string]float64)
	for _, tx := range txs {
		counts[tx.PurchaseDate.Format("2006-01-02")]++
	}
	out := entriesFromMap(counts)
	sortEntriesByKey(out)
	return out
}

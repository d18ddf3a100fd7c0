package analytics

import (
	"sort"

	"github.com/steamlytics/steamglass/internal/domain"
)

// FlagDistribution counts churn predictions per predicted flag.
func FlagDistribution(preds []domain.ChurnPrediction) []Entry {
	counts := make(map[string]float64)
	for _, p := range preds {
		counts[p.PredictedFlag]++
	}
	out := entriesFromMap(counts)
	sortEntriesDesc(out)
	return out
}

// HistogramBin is one bucket of a probability histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// ProbabilityHistogram buckets churn probabilities into equal-width
// bins over [0,1]. A probability of exactly 1 lands in the last bin.
func ProbabilityHistogram(preds []domain.ChurnPrediction, bins int) []HistogramBin {
	if bins <= 0 || len(preds) == 0 {
		return nil
	}
	out := make([]HistogramBin, bins)
	width := 1.0 / float64(bins)
	for i := range out {
		out[i].Lower = width * float64(i)
		out[i].Upper = width * float64(i+1)
	}
	for _, p := range preds {
		idx := int(p.ChurnProbability / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}

// AvgChurnProbabilityByGenre averages the model probability per genre,
// in percent, highest first.
func AvgChurnProbabilityByGenre(preds []domain.ChurnPrediction) []Entry {
	return avgProbabilityBy(preds, func(p domain.ChurnPrediction) string { return p.Genre })
}

// AvgChurnProbabilityByPublisher averages the model probability per
// publisher, in percent, highest first.
func AvgChurnProbabilityByPublisher(preds []domain.ChurnPrediction) []Entry {
	return avgProbabilityBy(preds, func(p domain.ChurnPrediction) string { return p.Publisher })
}

func avgProbabilityBy(preds []domain.ChurnPrediction, key func(domain.ChurnPrediction) string) []Entry {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, p := range preds {
		k := key(p)
		sums[k] += p.ChurnProbability
		counts[k]++
	}
	out := make([]Entry, 0, len(sums))
	for k, sum := range sums {
		out = append(out, Entry{Key: k, Value: sum / float64(counts[k]) * 100})
	}
	sortEntriesDesc(out)
	return out
}

// ForecastEntry is a rolled-up forecast with its confidence band.
type ForecastEntry struct {
	Key      string  `json:"key"`
	Forecast float64 `json:"forecast"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
}

// ForecastByGenre sums the 90-day forecast per genre, highest first.
func ForecastByGenre(recs []domain.ForecastRecord) []ForecastEntry {
	return forecastBy(recs, func(r domain.ForecastRecord) string { return r.Genre })
}

// ForecastByRegion sums the 90-day forecast per region, highest first.
func ForecastByRegion(recs []domain.ForecastRecord) []ForecastEntry {
	return forecastBy(recs, func(r domain.ForecastRecord) string { return r.Region })
}

func forecastBy(recs []domain.ForecastRecord, key func(domain.ForecastRecord) string) []ForecastEntry {
	accs := make(map[string]*ForecastEntry)
	for _, r := range recs {
		k := key(r)
		a, ok := accs[k]
		if !ok {
			a = &ForecastEntry{Key: k}
			accs[k] = a
		}
		a.Forecast += r.Forecast
		a.Low += r.Low
		a.High += r.High
	}
	out := make([]ForecastEntry, 0, len(accs))
	for _, a := range accs {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Forecast != out[j].Forecast {
			return out[i].Forecast > out[j].Forecast
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// AverageCLV is the mean customer lifetime value of the export.
func AverageCLV(recs []domain.CLVRecord) float64 {
	if len(recs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range recs {
		sum += r.CLV
	}
	return sum / float64(len(recs))
}

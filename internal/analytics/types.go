// Package analytics computes the aggregations behind every report view.
// All functions are pure: they take a transaction slice and return
// derived values, never touching shared state.
package analytics

import (
	"sort"

	"github.com/steamlytics/steamglass/internal/domain"
)

// Entry is one key/value pair of a grouped aggregation.
type Entry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Dimension identifies a groupable transaction attribute.
type Dimension string

const (
	DimContinent Dimension = "continent"
	DimRegion    Dimension = "region"
	DimGenre     Dimension = "genre"
	DimPublisher Dimension = "publisher"
	DimAgeGroup  Dimension = "age_group"
	DimCustomer  Dimension = "customer_id"
)

func dimensionValue(tx domain.Transaction, dim Dimension) string {
	switch dim {
	case DimContinent:
		return tx.Continent
	case DimRegion:
		return tx.Region
	case DimGenre:
		return tx.Genre
	case DimPublisher:
		return tx.Publisher
	case DimAgeGroup:
		return tx.AgeGroup
	case DimCustomer:
		return tx.CustomerID
	default:
		return ""
	}
}

// sortEntriesDesc orders by value descending, key ascending on ties so
// output is deterministic.
func sortEntriesDesc(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Key < entries[j].Key
	})
}

// sortEntriesByKey orders by key ascending, used for time series where
// the key is a sortable period string.
func sortEntriesByKey(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
}

func entriesFromMap(m map[string]float64) []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

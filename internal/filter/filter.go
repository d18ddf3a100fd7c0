// Package filter narrows dataset slices according to a FilterSpec.
package filter

import (
	"sort"
	"strings"

	"github.com/steamlytics/steamglass/internal/domain"
)

// valueSet is a case-insensitive membership set. An empty set matches
// everything, so an unset dimension never restricts.
type valueSet map[string]struct{}

func newValueSet(vals []string) valueSet {
	if len(vals) == 0 {
		return nil
	}
	s := make(valueSet, len(vals))
	for _, v := range vals {
		s[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return s
}

func (s valueSet) match(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[strings.ToLower(v)]
	return ok
}

// matcher holds the prepared per-dimension sets for one spec.
type matcher struct {
	spec       domain.FilterSpec
	continents valueSet
	regions    valueSet
	genres     valueSet
	publishers valueSet
	ageGroups  valueSet
	churnRisks valueSet
}

func newMatcher(spec domain.FilterSpec) matcher {
	return matcher{
		spec:       spec,
		continents: newValueSet(spec.Continents),
		regions:    newValueSet(spec.Regions),
		genres:     newValueSet(spec.Genres),
		publishers: newValueSet(spec.Publishers),
		ageGroups:  newValueSet(spec.AgeGroups),
		churnRisks: newValueSet(spec.ChurnRisks),
	}
}

func (m matcher) matchTx(tx domain.Transaction) bool {
	if !m.spec.From.IsZero() && tx.PurchaseDate.Before(m.spec.From) {
		return false
	}
	if !m.spec.To.IsZero() && tx.PurchaseDate.After(m.spec.To) {
		return false
	}
	return m.continents.match(tx.Continent) &&
		m.regions.match(tx.Region) &&
		m.genres.match(tx.Genre) &&
		m.publishers.match(tx.Publisher) &&
		m.ageGroups.match(tx.AgeGroup) &&
		m.churnRisks.match(tx.ChurnRisk)
}

// Transactions returns the rows matching spec, in input order. The
// CEL expression, if any, is applied by the caller via CompileExpr.
// An empty result is a valid outcome, not an error.
func Transactions(txs []domain.Transaction, spec domain.FilterSpec) []domain.Transaction {
	m := newMatcher(spec)
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if m.matchTx(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// ChurnPredictions filters the churn export. Predictions carry no date
// or demographic fields, so only region, genre and publisher apply.
func ChurnPredictions(preds []domain.ChurnPrediction, spec domain.FilterSpec) []domain.ChurnPrediction {
	m := newMatcher(spec)
	out := make([]domain.ChurnPrediction, 0, len(preds))
	for _, p := range preds {
		if m.regions.match(p.Region) && m.genres.match(p.Genre) && m.publishers.match(p.Publisher) {
			out = append(out, p)
		}
	}
	return out
}

// Forecast filters the 90-day forecast rows. Forecast rows are keyed
// by genre and region only.
func Forecast(recs []domain.ForecastRecord, spec domain.FilterSpec) []domain.ForecastRecord {
	m := newMatcher(spec)
	out := make([]domain.ForecastRecord, 0, len(recs))
	for _, r := range recs {
		if m.genres.match(r.Genre) && m.regions.match(r.Region) {
			out = append(out, r)
		}
	}
	return out
}

// Options holds the distinct selectable values per dimension, sorted.
type Options struct {
	Continents []string `json:"continents"`
	Regions    []string `json:"regions"`
	Genres     []string `json:"genres"`
	Publishers []string `json:"publishers"`
	AgeGroups  []string `json:"ageGroups"`
	ChurnRisks []string `json:"churnRisks"`
}

// CollectOptions scans the transactions once and returns the distinct
// values for every filterable dimension.
func CollectOptions(txs []domain.Transaction) Options {
	type dim struct {
		get func(domain.Transaction) string
		out *[]string
	}
	var opts Options
	dims := []dim{
		{func(t domain.Transaction) string { return t.Continent }, &opts.Continents},
		{func(t domain.Transaction) string { return t.Region }, &opts.Regions},
		{func(t domain.Transaction) string { return t.Genre }, &opts.Genres},
		{func(t domain.Transaction) string { return t.Publisher }, &opts.Publishers},
		{func(t domain.Transaction) string { return t.AgeGroup }, &opts.AgeGroups},
		{func(t domain.Transaction) string { return t.ChurnRisk }, &opts.ChurnRisks},
	}

	seen := make([]map[string]struct{}, len(dims))
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}
	for _, tx := range txs {
		for i, d := range dims {
			if v := d.get(tx); v != "" {
				seen[i][v] = struct{}{}
			}
		}
	}
	for i, d := range dims {
		vals := make([]string, 0, len(seen[i]))
		for v := range seen[i] {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		*d.out = vals
	}
	return opts
}

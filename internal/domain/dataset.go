// Package domain defines the core interfaces and types for Steamglass.
package domain

import (
	"context"
	"time"
)

// SeriesPoint is one observation of a dated metric series (ARPU, MAU, DAU).
type SeriesPoint struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
}

// CLVRecord is a per-customer lifetime value estimate.
type CLVRecord struct {
	CustomerID string  `json:"customerId"`
	CLV        float64 `json:"clv"`
}

// ChurnPrediction is a per-customer model output from the churn export.
type ChurnPrediction struct {
	CustomerID       string  `json:"customerId"`
	ChurnProbability float64 `json:"churnProbability"` // 0..1
	PredictedFlag    string  `json:"predictedFlag"`    // "Churn" or "Retain"
	Region           string  `json:"region"`
	Genre            string  `json:"genre"`
	Publisher        string  `json:"publisher"`
}

// ForecastRecord is one genre/region cell of the 90-day revenue forecast.
type ForecastRecord struct {
	Genre    string  `json:"genre"`
	Region   string  `json:"region"`
	Forecast float64 `json:"forecast"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
}

// Dataset is an immutable snapshot of all loaded exports. A snapshot is
// never mutated after load; Reload builds a fresh one and swaps it in.
type Dataset struct {
	Transactions     []Transaction     `json:"-"`
	ARPU             []SeriesPoint     `json:"-"`
	MAU              []SeriesPoint     `json:"-"`
	DAU              []SeriesPoint     `json:"-"`
	CLV              []CLVRecord       `json:"-"`
	ChurnPredictions []ChurnPrediction `json:"-"`
	Forecast         []ForecastRecord  `json:"-"`

	// ScenarioDefaults are the lever positions shipped with the export.
	ScenarioDefaults ScenarioLevers `json:"scenarioDefaults"`

	// Generation increments on every successful reload. It participates
	// in cache keys so stale report payloads age out naturally.
	Generation uint64 `json:"generation"`

	// Observed transaction date range.
	MinDate time.Time `json:"minDate"`
	MaxDate time.Time `json:"maxDate"`

	LoadedAt time.Time `json:"loadedAt"`
}

// Store provides read access to the loaded dataset.
type Store interface {
	// Snapshot returns the current dataset. The returned value must be
	// treated as read-only.
	Snapshot() *Dataset

	// Reload re-reads all exports from disk and swaps in a new snapshot.
	// On failure the previous snapshot stays active.
	Reload(ctx context.Context) error

	// Lifecycle
	Close() error
}

// DataConfig holds configuration for the dataset store.
type DataConfig struct {
	// Dir is the directory containing the CSV exports.
	Dir string `json:"dir"`
}

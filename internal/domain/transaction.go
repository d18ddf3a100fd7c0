package domain

import (
	"time"
)

// ChurnRisk labels used in the transaction export.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Transaction is a single purchase row from the transaction export.
type Transaction struct {
	// Core identifiers
	CustomerID   string    `json:"customerId"`
	PurchaseDate time.Time `json:"purchaseDate"`

	// Dimensions
	Region    string `json:"region"`
	Continent string `json:"continent"` // derived from Region
	Genre     string `json:"genre"`
	Publisher string `json:"publisher"`
	AgeGroup  string `json:"ageGroup"`
	ChurnRisk string `json:"churnRisk"` // "Low", "Medium", "High"

	// Measures
	NetRevenue     float64 `json:"netRevenue"`
	PlaytimeHours  float64 `json:"playtimeHours"`
	GamesPurchased int     `json:"gamesPurchased"`
	AvgGamePrice   float64 `json:"avgGamePrice"`
	DiscountPct    float64 `json:"discountPct"`
	RetentionDays  float64 `json:"retentionDays"`

	// YearMonth is the purchase month in "2006-01" form, derived at load time.
	YearMonth string `json:"yearMonth"`
}

// continentByRegion maps region labels to their continent grouping.
// Unknown regions fall through to the region label itself so a new
// region in the export still rolls up somewhere visible.
var continentByRegion = map[string]string{
	"North America": "North America",
	"South America": "South America",
	"Europe":        "Europe",
	"Asia":          "Asia",
	"Oceania":       "Oceania",
}

// ContinentForRegion returns the continent grouping for a region label.
func ContinentForRegion(region string) string {
	if c, ok := continentByRegion[region]; ok {
		return c
	}
	return region
}

// MonthKey formats a time as the "2006-01" period key used throughout
// the monthly aggregations.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

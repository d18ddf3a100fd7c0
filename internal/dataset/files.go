package dataset

// CSV export file names. The loader refuses to start without all eight.
const (
	FileTransactions = "data_set.csv"
	FileARPU         = "steam_ARPU_table.csv"
	FileCLV          = "steam_CLV_table.csv"
	FileDAU          = "steam_DAU_table.csv"
	FileMAU          = "steam_MAU_table.csv"
	FileChurn        = "steam_churn_predictions.csv"
	FileForecast     = "steam_revenue_forecast_90d.csv"
	FileScenario     = "steam_scenario_parameters.csv"
)

// AllFiles lists every export the loader expects, in load order.
func AllFiles() []string {
	return []string{
		FileTransactions,
		FileARPU,
		FileCLV,
		FileDAU,
		FileMAU,
		FileChurn,
		FileForecast,
		FileScenario,
	}
}

// Required columns per export. Extra columns are ignored; missing ones
// are a fatal load error.
var (
	transactionColumns = []string{
		"customer_id", "purchase_date", "region", "genre", "publisher",
		"age_group", "net_revenue", "playtime_hours", "games_purchased",
		"avg_game_price", "discount_pct", "retention_days", "churn_risk",
	}
	arpuColumns     = []string{"year_month", "arpu"}
	clvColumns      = []string{"customer_id", "clv"}
	dauColumns      = []string{"purchase_date", "dau"}
	mauColumns      = []string{"year_month", "mau"}
	churnColumns    = []string{"customer_id", "churn_probability", "predicted_churn_flag", "region", "genre", "publisher"}
	forecastColumns = []string{"genre", "region", "forecasted_revenue_90d", "forecast_low", "forecast_high"}
	scenarioColumns = []string{"parameter", "value"}
)

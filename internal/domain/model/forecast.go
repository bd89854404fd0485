package model

// AreaForecast is the provider's two-hour outlook for one named area.
type AreaForecast struct {
	Area     string
	Forecast string
}

// ForecastWindow is one validity window of the real-time forecast feed.
type ForecastWindow struct {
	ValidFrom string
	ValidTo   string
	ValidText string
	Forecasts []AreaForecast
}

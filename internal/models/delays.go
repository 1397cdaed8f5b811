package models

// Delay is one current-day delay observation as served by the API
type Delay struct {
	Line         string  `json:"line"`
	Station      string  `json:"station"`
	Transport    string  `json:"transport"`
	DelayMinutes float64 `json:"delay_minutes"`
	Timestamp    string  `json:"timestamp"`
}

// StatsResponse is the rolling 24-hour summary
type StatsResponse struct {
	TotalDelays24h  int     `json:"total_delays_24h"`
	AverageDelay24h float64 `json:"average_delay_24h"`
}

// DailyStat is one archived day/transport aggregate
type DailyStat struct {
	Date         string  `json:"date"`
	Transport    string  `json:"transport"`
	TotalDelays  int     `json:"total_delays"`
	AverageDelay float64 `json:"average_delay"`
	MaxDelay     float64 `json:"max_delay"`
}

// YearTotalResponse is the year-bounded sum of archived delay counts
type YearTotalResponse struct {
	Year      int    `json:"year"`
	Transport string `json:"transport"`
	Total     int    `json:"total"`
}

package model

import "time"

// SearchEvent represents a single search request for analytics tracking
type SearchEvent struct {
	RequestID    string        `json:"request_id,omitempty"`
	Query        string        `json:"query"`
	SimilarTo    string        `json:"similar_to,omitempty"`
	Mode         string        `json:"mode"` // "browse", "free_text", "similar"
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Total        int           `json:"total"`
	Failed       bool          `json:"failed,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// PopularSearch represents aggregated data for popular search terms
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To25ms     int     `json:"bucket_0_25ms"`
	Bucket25To50ms    int     `json:"bucket_25_50ms"`
	Bucket50To100ms   int     `json:"bucket_50_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To100 float64 `json:"percentage_50_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// SearchModeStats counts searches per ranking mode
type SearchModeStats struct {
	Browse   int `json:"browse"`
	FreeText int `json:"free_text"`
	Similar  int `json:"similar"`
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	TotalSearches      int     `json:"total_searches"`
	FailedSearches     int     `json:"failed_searches"`
	ZeroResultSearches int     `json:"zero_result_searches"`
	AvgResponseTime    int64   `json:"avg_response_time"` // in milliseconds
	ZeroResultRate     float64 `json:"zero_result_rate"`

	PopularSearches          []PopularSearch          `json:"popular_searches"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
	SearchModes              SearchModeStats          `json:"search_modes"`
}

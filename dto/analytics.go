package dto

type AnalyticsSummaryResponse struct {
	Counters map[string]int64 `json:"counters"`
}

package model

import "time"

// RateLimitConfig describes one endpoint-type window. Configs live in
// memory; counters live in redis.
type RateLimitConfig struct {
	EndpointType string        `json:"endpoint_type"`
	MaxRequests  int           `json:"max_requests"`
	WindowSize   time.Duration `json:"window_size"`
	BlockTime    time.Duration `json:"block_time"`
	Description  string        `json:"description"`
}

package domain

import "time"

// RateLimitInfo describes the state of a fixed rate limit window for one subject
type RateLimitInfo struct {
	Subject      string        `json:"subject"`
	RequestCount int64         `json:"request_count"`
	Limit        int64         `json:"limit"`
	TTL          time.Duration `json:"ttl"`
	IsAllowed    bool          `json:"is_allowed"`
}

// Remaining is how many calls are left in the current window
func (r *RateLimitInfo) Remaining() int64 {
	if r.RequestCount >= r.Limit {
		return 0
	}
	return r.Limit - r.RequestCount
}

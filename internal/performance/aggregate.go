// Package performance turns raw ratings into averages, bands and dashboard views.
// Everything here is pure: no I/O, no errors, deterministic output.
package performance

import "math"

// Stats is the aggregate of a list of rating values
type Stats struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Aggregate averages values. The average is rounded to two decimals and that
// rounded value is the one every caller displays and categorizes.
func Aggregate(values []int) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return Stats{
		Average: Round2(float64(sum) / float64(len(values))),
		Count:   len(values),
	}
}

// MeanOfAverages averages the averages of rated entries, ignoring unrated ones.
// Count is the number of rated entries that contributed.
func MeanOfAverages(stats []Stats) Stats {
	var sum float64
	n := 0
	for _, s := range stats {
		if s.Count == 0 {
			continue
		}
		sum += s.Average
		n++
	}
	if n == 0 {
		return Stats{}
	}
	return Stats{Average: Round2(sum / float64(n)), Count: n}
}

// Round2 rounds half away from zero to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package performance

import (
	"cmp"
	"slices"

	"teamperf/internal/domain"
)

// CategoryScore is the aggregate of a member's ratings inside one category
type CategoryScore struct {
	CategoryID    string  `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
	Band          string  `json:"band"`
}

// ByCategory groups detailed ratings by category, best average first, name on ties
func ByCategory(ratings []domain.RatingDetail) []CategoryScore {
	values := make(map[string][]int)
	names := make(map[string]string)
	for _, r := range ratings {
		values[r.CategoryID] = append(values[r.CategoryID], r.Value)
		names[r.CategoryID] = r.CategoryName
	}

	out := make([]CategoryScore, 0, len(values))
	for id, vs := range values {
		s := Aggregate(vs)
		out = append(out, CategoryScore{
			CategoryID:    id,
			CategoryName:  names[id],
			AverageRating: s.Average,
			RatingsCount:  s.Count,
			Band:          Label(s),
		})
	}
	slices.SortFunc(out, func(a, b CategoryScore) int {
		if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CategoryName, b.CategoryName); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID, b.CategoryID)
	})
	return out
}

// Values extracts the raw rating values
func Values(ratings []domain.RatingDetail) []int {
	out := make([]int, len(ratings))
	for i, r := range ratings {
		out[i] = r.Value
	}
	return out
}

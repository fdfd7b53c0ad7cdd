package performance

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"teamperf/internal/domain"
)

// MemberScore is one member's aggregate and band
type MemberScore struct {
	MemberID      string  `json:"member_id"`
	Name          string  `json:"name"`
	Title         *string `json:"title,omitempty"`
	TeamID        string  `json:"team_id"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
	Category      string  `json:"category"`
}

func (m MemberScore) stats() Stats {
	return Stats{Average: m.AverageRating, Count: m.RatingsCount}
}

// ScoreMember aggregates a member's rating values
func ScoreMember(m domain.Member, values []int) MemberScore {
	s := Aggregate(values)
	return MemberScore{
		MemberID:      m.ID,
		Name:          m.Name,
		Title:         m.Title,
		TeamID:        m.TeamID,
		AverageRating: s.Average,
		RatingsCount:  s.Count,
		Category:      Label(s),
	}
}

// TeamSummary is a team's mean of member averages
type TeamSummary struct {
	TeamID        string  `json:"team_id"`
	Name          string  `json:"name"`
	MemberCount   int     `json:"member_count"`
	RatedMembers  int     `json:"rated_members"`
	AverageRating float64 `json:"average_rating"`
	Category      string  `json:"category"`
}

// CategoryGroup lists the members falling in one band
type CategoryGroup struct {
	Name       string        `json:"name"`
	Min        *float64      `json:"min,omitempty"`
	Max        *float64      `json:"max,omitempty"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
	Members    []MemberScore `json:"members"`
}

// Summary holds organization-wide totals
type Summary struct {
	TotalMembers    int     `json:"total_members"`
	RatedMembers    int     `json:"rated_members"`
	TotalRatings    int     `json:"total_ratings"`
	AverageRating   float64 `json:"average_rating"`
	Category        string  `json:"category"`
	RatedPercentage float64 `json:"rated_percentage"`
}

// Dashboard is the composed view returned to clients
type Dashboard struct {
	Summary     Summary         `json:"summary"`
	Trends      Trends          `json:"trends"`
	Teams       []TeamSummary   `json:"teams"`
	Categories  []CategoryGroup `json:"categories"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Compose builds the dashboard from member scores and teams. Trends start neutral; see ApplyTrends.
func Compose(members []MemberScore, teams []domain.Team, now time.Time) *Dashboard {
	d := &Dashboard{
		Summary:     summarize(members),
		Teams:       TeamAverages(members, teams),
		Categories:  GroupByCategory(members),
		GeneratedAt: now.UTC(),
	}
	ApplyTrends(d, Previous{})
	return d
}

func summarize(members []MemberScore) Summary {
	s := Summary{TotalMembers: len(members)}
	stats := make([]Stats, 0, len(members))
	for _, m := range members {
		s.TotalRatings += m.RatingsCount
		stats = append(stats, m.stats())
	}
	mean := MeanOfAverages(stats)
	s.RatedMembers = mean.Count
	s.AverageRating = mean.Average
	s.Category = Label(mean)
	s.RatedPercentage = percentage(s.RatedMembers, s.TotalMembers)
	return s
}

// TeamAverages computes per-team means over rated members. Teams with no rated
// member are left out, as are members whose team is not in teams.
func TeamAverages(members []MemberScore, teams []domain.Team) []TeamSummary {
	byTeam := make(map[string][]MemberScore, len(teams))
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}

	out := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		ms := byTeam[t.ID]
		stats := make([]Stats, 0, len(ms))
		for _, m := range ms {
			stats = append(stats, m.stats())
		}
		mean := MeanOfAverages(stats)
		if mean.Count == 0 {
			continue
		}
		out = append(out, TeamSummary{
			TeamID:        t.ID,
			Name:          t.Name,
			MemberCount:   len(ms),
			RatedMembers:  mean.Count,
			AverageRating: mean.Average,
			Category:      Label(mean),
		})
	}

	slices.SortStableFunc(out, func(a, b TeamSummary) int {
		if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// GroupByCategory returns one group per band plus NotScored, in display order.
// Scored groups are ordered by average descending, NotScored alphabetically.
func GroupByCategory(members []MemberScore) []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(bands)+1)
	index := make(map[string]int, len(bands)+1)
	for _, b := range bands {
		lo, hi := b.Min, b.Max
		index[b.Name] = len(groups)
		groups = append(groups, CategoryGroup{Name: b.Name, Min: &lo, Max: &hi, Members: []MemberScore{}})
	}
	index[NotScored] = len(groups)
	groups = append(groups, CategoryGroup{Name: NotScored, Members: []MemberScore{}})

	for _, m := range members {
		i, ok := index[m.Category]
		if !ok {
			continue
		}
		groups[i].Members = append(groups[i].Members, m)
	}

	for i := range groups {
		g := &groups[i]
		if g.Name == NotScored {
			slices.SortStableFunc(g.Members, byName)
		} else {
			slices.SortStableFunc(g.Members, byAverageDesc)
		}
		g.Count = len(g.Members)
		g.Percentage = percentage(g.Count, len(members))
	}
	return groups
}

func byName(a, b MemberScore) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.MemberID, b.MemberID)
}

func byAverageDesc(a, b MemberScore) int {
	if c := cmp.Compare(b.AverageRating, a.AverageRating); c != 0 {
		return c
	}
	return byName(a, b)
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(part) / float64(total) * 100)
}

// Direction of change between two periods
type Direction string

const (
	TrendUp      Direction = "up"
	TrendDown    Direction = "down"
	TrendNeutral Direction = "neutral"
)

// trendEpsilon hides changes smaller than the displayed precision
const trendEpsilon = 0.005

// Trend compares a current value with an optional previous one
type Trend struct {
	Direction Direction `json:"direction"`
	Current   float64   `json:"current"`
	Previous  *float64  `json:"previous,omitempty"`
	Delta     float64   `json:"delta"`
}

// Trends holds one indicator per summary metric
type Trends struct {
	AverageRating Trend `json:"average_rating"`
	RatedMembers  Trend `json:"rated_members"`
	TotalRatings  Trend `json:"total_ratings"`
}

// Previous carries caller supplied values for the prior period; nil means unknown
type Previous struct {
	AverageRating *float64
	RatedMembers  *float64
	TotalRatings  *float64
}

// CompareTrend yields neutral when previous is unknown or the change is negligible
func CompareTrend(current float64, previous *float64) Trend {
	t := Trend{Direction: TrendNeutral, Current: current}
	if previous == nil || math.IsNaN(*previous) {
		return t
	}
	p := *previous
	t.Previous = &p
	t.Delta = Round2(current - p)
	switch {
	case current-p >= trendEpsilon:
		t.Direction = TrendUp
	case p-current >= trendEpsilon:
		t.Direction = TrendDown
	}
	return t
}

// ApplyTrends fills the dashboard trends from prev
func ApplyTrends(d *Dashboard, prev Previous) {
	d.Trends = Trends{
		AverageRating: CompareTrend(d.Summary.AverageRating, prev.AverageRating),
		RatedMembers:  CompareTrend(float64(d.Summary.RatedMembers), prev.RatedMembers),
		TotalRatings:  CompareTrend(float64(d.Summary.TotalRatings), prev.TotalRatings),
	}
}

package performance

import "math"

// Band names
const (
	BandStar   = "Star"
	BandStrong = "Strong"
	BandSolid  = "Solid"
	BandLower  = "Lower"
	BandPoor   = "Poor"
	NotScored  = "Not Scored"
)

// Score range
const (
	MinScore = 0.0
	MaxScore = 5.0
)

// Band is a labelled rating interval [Min, Max). The top band also includes MaxScore.
type Band struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// bands is the only band table. Order is evaluation order and display order.
var bands = [...]Band{
	{Name: BandStar, Min: 4.5, Max: MaxScore},
	{Name: BandStrong, Min: 4.0, Max: 4.5},
	{Name: BandSolid, Min: 3.0, Max: 4.0},
	{Name: BandLower, Min: 2.0, Max: 3.0},
	{Name: BandPoor, Min: MinScore, Max: 2.0},
}

// Bands returns a copy of the band table in declared order
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands[:])
	return out
}

// BandNames lists band names in display order, ending with NotScored
func BandNames() []string {
	names := make([]string, 0, len(bands)+1)
	for _, b := range bands {
		names = append(names, b.Name)
	}
	return append(names, NotScored)
}

// Contains reports whether avg falls in the band
func (b Band) Contains(avg float64) bool {
	if avg < b.Min || avg > b.Max {
		return false
	}
	if avg == b.Max && b.Max < MaxScore {
		return false
	}
	return true
}

// Categorize maps an aggregate to a band name. Zero count is always NotScored.
// ok is false when the average lies outside the score range.
func Categorize(average float64, count int) (name string, ok bool) {
	if count == 0 {
		return NotScored, true
	}
	if math.IsNaN(average) {
		return "", false
	}
	for _, b := range bands {
		if b.Contains(average) {
			return b.Name, true
		}
	}
	return "", false
}

// Label is Categorize without the flag; uncategorized values yield ""
func Label(s Stats) string {
	name, _ := Categorize(s.Average, s.Count)
	return name
}

// BandFor looks a band up by name
func BandFor(name string) (Band, bool) {
	for _, b := range bands {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

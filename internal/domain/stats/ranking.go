package stats

import "math"

// TopSlicePercent is the default share used for the head and tail slices of
// the leaderboard.
const TopSlicePercent = 5

// AssignRanks stamps 1-based global ranks onto a page of ordered rows.
// offset is the number of rows on earlier pages, so the rank is stable no
// matter which page a row appears on.
func AssignRanks(rows []RankingEntry, offset int) {
	for i := range rows {
		rows[i].Rank = offset + i + 1
	}
}

// SliceSize returns how many rows a percent share of total covers, rounded
// up. Any non-empty set yields at least one row.
func SliceSize(total, percent int) int {
	if total <= 0 || percent <= 0 {
		return 0
	}
	n := int(math.Ceil(float64(total) * float64(percent) / 100))
	if n < 1 {
		n = 1
	}
	return n
}

// PercentOf is the score as a share of max, clamped to [0,100].
func PercentOf(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	pct := float64(score) / float64(maxScore) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

package stats

import "testing"

func TestAssignRanks(t *testing.T) {
	rows := []RankingEntry{{EntryID: "a"}, {EntryID: "b"}, {EntryID: "c"}}

	AssignRanks(rows, 0)
	for i, r := range rows {
		if r.Rank != i+1 {
			t.Fatalf("row %d rank = %d, want %d", i, r.Rank, i+1)
		}
	}

	// Page two of a 20-per-page listing starts at rank 21.
	AssignRanks(rows, 20)
	if rows[0].Rank != 21 || rows[2].Rank != 23 {
		t.Fatalf("offset ranks = %d..%d, want 21..23", rows[0].Rank, rows[2].Rank)
	}
}

func TestSliceSize(t *testing.T) {
	tests := []struct {
		total   int
		percent int
		want    int
	}{
		{0, 5, 0},
		{1, 5, 1},
		{10, 5, 1},
		{20, 5, 1},
		{21, 5, 2},
		{100, 5, 5},
		{101, 5, 6},
		{40, 0, 0},
		{40, 10, 4},
	}
	for _, tt := range tests {
		if got := SliceSize(tt.total, tt.percent); got != tt.want {
			t.Fatalf("SliceSize(%d, %d) = %d, want %d", tt.total, tt.percent, got, tt.want)
		}
	}
}

func TestPercentOf(t *testing.T) {
	tests := []struct {
		score    int
		maxScore int
		want     float64
	}{
		{68, 100, 68},
		// Expectation computed in the same order as PercentOf; float
		// division is not associative.
		{50, 60, 50.0 / 60.0 * 100},
		{0, 100, 0},
		{10, 0, 0},
		{120, 100, 100},
		{-5, 100, 0},
	}
	for _, tt := range tests {
		if got := PercentOf(tt.score, tt.maxScore); got != tt.want {
			t.Fatalf("PercentOf(%d, %d) = %v, want %v", tt.score, tt.maxScore, got, tt.want)
		}
	}
}

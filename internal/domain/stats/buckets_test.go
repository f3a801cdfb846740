package stats

import (
	"math"
	"testing"
)

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		score    int
		maxScore int
		want     string
	}{
		{"perfect", 100, 100, BucketExcellent},
		{"excellent lower edge", 85, 100, BucketExcellent},
		{"just below excellent", 84, 100, BucketGood},
		{"good lower edge", 70, 100, BucketGood},
		{"just below good", 69, 100, BucketAverage},
		{"average lower edge", 50, 100, BucketAverage},
		{"just below average", 49, 100, BucketPoor},
		{"zero", 0, 100, BucketPoor},
		{"scaled max", 51, 60, BucketExcellent},
		{"zero max", 10, 0, BucketPoor},
		{"negative max", 10, -5, BucketPoor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bucket(tt.score, tt.maxScore); got != tt.want {
				t.Fatalf("Bucket(%d, %d) = %q, want %q", tt.score, tt.maxScore, got, tt.want)
			}
		})
	}
}

func TestBucketPartitions(t *testing.T) {
	// Every score in [0,max] falls in exactly one bucket.
	for score := 0; score <= 100; score++ {
		b := Bucket(score, 100)
		switch b {
		case BucketExcellent, BucketGood, BucketAverage, BucketPoor:
		default:
			t.Fatalf("score %d landed in unknown bucket %q", score, b)
		}
	}
}

func TestPercentagesSumToHundred(t *testing.T) {
	counts := DistributionCounts{Excellent: 3, Good: 5, Average: 1, Poor: 2}
	p := counts.Percentages()
	sum := p.Excellent + p.Good + p.Average + p.Poor
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percentages sum to %v, want 100", sum)
	}
}

func TestPercentagesEmptySet(t *testing.T) {
	p := DistributionCounts{}.Percentages()
	if p != (DistributionPercentages{}) {
		t.Fatalf("expected zero percentages for empty set, got %+v", p)
	}
}

func TestBucketRangesCoverScale(t *testing.T) {
	ranges := BucketRanges()
	covered := make(map[int]string)
	for _, r := range ranges {
		for v := r.Min; v <= r.Max; v++ {
			if prev, ok := covered[v]; ok {
				t.Fatalf("value %d covered by both %q and %q", v, prev, r.Name)
			}
			covered[v] = r.Name
		}
	}
	for v := 0; v <= 100; v++ {
		if _, ok := covered[v]; !ok {
			t.Fatalf("value %d not covered by any bucket", v)
		}
	}
}

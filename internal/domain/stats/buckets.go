package stats

// Bucket thresholds, applied to an entry's score as a percentage of its own
// max score. Boundaries are inclusive on the lower edge.
const (
	ThresholdExcellent = 85
	ThresholdGood      = 70
	ThresholdAverage   = 50
)

const (
	BucketExcellent = "excellent"
	BucketGood      = "good"
	BucketAverage   = "average"
	BucketPoor      = "poor"
)

// ScaleDescriptor names the axis the buckets are computed on.
const ScaleDescriptor = "percent_of_max"

func BucketRanges() []BucketRange {
	return []BucketRange{
		{Name: BucketExcellent, Min: ThresholdExcellent, Max: 100},
		{Name: BucketGood, Min: ThresholdGood, Max: ThresholdExcellent - 1},
		{Name: BucketAverage, Min: ThresholdAverage, Max: ThresholdGood - 1},
		{Name: BucketPoor, Min: 0, Max: ThresholdAverage - 1},
	}
}

// Bucket classifies a score against its max. A non-positive max is always
// poor: such entries cannot demonstrate performance.
func Bucket(score, maxScore int) string {
	if maxScore <= 0 {
		return BucketPoor
	}
	pct := float64(score) / float64(maxScore) * 100
	switch {
	case pct >= ThresholdExcellent:
		return BucketExcellent
	case pct >= ThresholdGood:
		return BucketGood
	case pct >= ThresholdAverage:
		return BucketAverage
	default:
		return BucketPoor
	}
}

// Percentages derives the share of each bucket from raw counts. Shares are
// in [0,100] and zero when the set is empty.
func (c DistributionCounts) Percentages() DistributionPercentages {
	total := c.Excellent + c.Good + c.Average + c.Poor
	if total == 0 {
		return DistributionPercentages{}
	}
	share := func(n int) float64 { return float64(n) / float64(total) * 100 }
	return DistributionPercentages{
		Excellent: share(c.Excellent),
		Good:      share(c.Good),
		Average:   share(c.Average),
		Poor:      share(c.Poor),
	}
}

func NewScoreDistribution(counts DistributionCounts) ScoreDistribution {
	return ScoreDistribution{
		Counts:      counts,
		Percentages: counts.Percentages(),
		Scale:       ScaleDescriptor,
		Buckets:     BucketRanges(),
	}
}

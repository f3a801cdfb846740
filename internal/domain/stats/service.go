package stats

import "context"

type Service struct {
	Store *Store
	// SlicePercent sets how much of the leaderboard head and tail the
	// statistics payload carries. Defaults to TopSlicePercent.
	SlicePercent int
	// ReportDir is where generated PDF reports land.
	ReportDir string
}

func NewService(store *Store, slicePercent int, reportDir string) *Service {
	if slicePercent <= 0 {
		slicePercent = TopSlicePercent
	}
	return &Service{Store: store, SlicePercent: slicePercent, ReportDir: reportDir}
}

// Statistics assembles the leaderboard payload: one ranked page plus
// aggregates, head/tail slices and the score distribution computed over the
// whole filtered set.
func (s *Service) Statistics(ctx context.Context, filter Filter, page, limit int) (StatisticsData, error) {
	total, avg, highest, lowest, err := s.Store.Aggregates(ctx, filter)
	if err != nil {
		return StatisticsData{}, err
	}

	offset := (page - 1) * limit
	ranking, err := s.Store.Ranking(ctx, filter, limit, offset)
	if err != nil {
		return StatisticsData{}, err
	}
	AssignRanks(ranking, offset)

	n := SliceSize(total, s.SlicePercent)
	top := []RankingEntry{}
	bottom := []RankingEntry{}
	if n > 0 {
		top, err = s.Store.Ranking(ctx, filter, n, 0)
		if err != nil {
			return StatisticsData{}, err
		}
		AssignRanks(top, 0)

		bottomOffset := total - n
		if bottomOffset < 0 {
			bottomOffset = 0
		}
		bottom, err = s.Store.Ranking(ctx, filter, n, bottomOffset)
		if err != nil {
			return StatisticsData{}, err
		}
		AssignRanks(bottom, bottomOffset)
	}

	counts, err := s.Store.Distribution(ctx, filter)
	if err != nil {
		return StatisticsData{}, err
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return StatisticsData{
		Ranking:           ranking,
		Total:             total,
		Page:              page,
		Limit:             limit,
		TotalPages:        totalPages,
		AverageScore:      avg,
		HighestScore:      highest,
		LowestScore:       lowest,
		TopFivePercent:    top,
		BottomFivePercent: bottom,
		ScoreDistribution: NewScoreDistribution(counts),
	}, nil
}

func (s *Service) DepartmentStats(ctx context.Context, filter Filter) ([]DepartmentStat, error) {
	return s.Store.DepartmentStats(ctx, filter)
}

func (s *Service) RoleStats(ctx context.Context, filter Filter) ([]RoleStat, error) {
	return s.Store.RoleStats(ctx, filter)
}

// AvailableFilters pairs the filter universe with its summary block, both
// scoped to one department when the caller is.
func (s *Service) AvailableFilters(ctx context.Context, department string) (AvailableFilters, FilterSummary, error) {
	filters, err := s.Store.AvailableFilters(ctx, department)
	if err != nil {
		return filters, FilterSummary{}, err
	}
	summary, err := s.Store.Summary(ctx, department)
	return filters, summary, err
}

func (s *Service) AllDepartmentStats(ctx context.Context, month, year, limit, offset int) ([]AllDepartmentStat, int, error) {
	return s.Store.AllDepartmentStats(ctx, month, year, limit, offset)
}

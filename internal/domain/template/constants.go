package template

const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"

	KpiTypePercentage = "percentage"
	KpiUnitPercent    = "%"

	SubKpiValueTypeNumber = "number"

	// MinKpisPerTemplate: a template with fewer scored criteria is not a
	// meaningful scorecard.
	MinKpisPerTemplate = 2
)

var Frequencies = []string{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly}

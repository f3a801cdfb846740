package entry

const (
	// StatusInitiated marks a freshly created entry.
	StatusInitiated = "initiated"
	// StatusInProgress marks an entry whose values have been edited since
	// creation.
	StatusInProgress = "inprogress"
	// StatusGenerated marks a finalized, report-ready entry.
	StatusGenerated = "generated"

	DataSourceManual = "manual"
)

var Statuses = []string{StatusInitiated, StatusInProgress, StatusGenerated}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}

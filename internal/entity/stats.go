package entity

// MergeStats summarizes one import call.
type MergeStats struct {
	Added       int            `json:"added"`
	Merged      int            `json:"merged"`
	Replaced    int            `json:"replaced"`
	TagsAdded   map[string]int `json:"tags_added"`
	TotalBefore int            `json:"total_before"`
	TotalAfter  int            `json:"total_after"`

	// Rows dropped for data-quality reasons. They never surface as errors.
	SkippedNoData     int `json:"skipped_no_data"`
	SkippedNoHeadword int `json:"skipped_no_headword"`
}

// Skipped is the number of rows that were dropped.
func (s MergeStats) Skipped() int { return s.SkippedNoData + s.SkippedNoHeadword }

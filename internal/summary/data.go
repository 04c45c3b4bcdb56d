package summary

import "time"

// Count is one entry of a frequency table.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DateRange spans the earliest and latest post dates. Both are zero when no
// post carried a date.
type DateRange struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

func (r DateRange) IsZero() bool {
	return r.Earliest.IsZero() && r.Latest.IsZero()
}

// ContentSummary holds corpus-level statistics. Frequency tables are sorted
// by descending count; ties keep first-seen order.
type ContentSummary struct {
	TotalPosts   int       `json:"totalPosts"`
	DateRange    DateRange `json:"dateRange"`
	Categories   []Count   `json:"categories"`
	Tags         []Count   `json:"tags"`
	Authors      []Count   `json:"authors"`
	TotalWords   int       `json:"totalWords"`
	AverageWords float64   `json:"averageWords"`
}

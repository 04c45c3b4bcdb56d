package summary

import (
	"sort"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/postmeta"
)

/*
Responsibilities
- Fold post metadata and word counts into running counters
- Track the earliest and latest post date
- Finalize counters into sorted frequency tables on read

An Aggregator is not safe for concurrent use; posts are folded one at a time.
*/

type Aggregator struct {
	totalPosts int
	totalWords int
	dateRange  DateRange
	categories *counter
	tags       *counter
	authors    *counter
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		categories: newCounter(),
		tags:       newCounter(),
		authors:    newCounter(),
	}
}

// Add folds one post into the running totals.
func (a *Aggregator) Add(meta postmeta.PostMeta, wordCount int) {
	a.totalPosts++
	a.totalWords += wordCount

	for _, name := range meta.CategoryNames() {
		a.categories.add(name)
	}
	for _, name := range meta.TagNames() {
		a.tags.add(name)
	}
	if name := meta.AuthorName(); name != "" {
		a.authors.add(name)
	}

	if meta.Date.IsZero() {
		return
	}
	if a.dateRange.Earliest.IsZero() || meta.Date.Before(a.dateRange.Earliest) {
		a.dateRange.Earliest = meta.Date
	}
	if a.dateRange.Latest.IsZero() || meta.Date.After(a.dateRange.Latest) {
		a.dateRange.Latest = meta.Date
	}
}

func (a *Aggregator) Summary() ContentSummary {
	average := 0.0
	if a.totalPosts > 0 {
		average = float64(a.totalWords) / float64(a.totalPosts)
	}
	return ContentSummary{
		TotalPosts:   a.totalPosts,
		DateRange:    a.dateRange,
		Categories:   a.categories.sorted(),
		Tags:         a.tags.sorted(),
		Authors:      a.authors.sorted(),
		TotalWords:   a.totalWords,
		AverageWords: average,
	}
}

// counter keeps counts keyed by name along with first-seen order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, seen := c.counts[name]; !seen {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

func (c *counter) sorted() []Count {
	out := make([]Count, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Count{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

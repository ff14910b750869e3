package pipeline

import "time"

// SkippedRow records one data row that did not become a product.
type SkippedRow struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string        `json:"runId"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	TotalRows int           `json:"totalRows"`
	Accepted  int           `json:"accepted"`
	Skipped   []SkippedRow  `json:"skipped,omitempty"`
}

// SkippedCount returns the number of rows that were dropped.
func (r *Report) SkippedCount() int { return len(r.Skipped) }

// Clean reports whether every data row became a product.
func (r *Report) Clean() bool { return len(r.Skipped) == 0 }

package ingest

import (
	"sync"
	"time"

	"github.com/otabekh/minbar/internal/constants"
)

// Report is the structured outcome of an archive ingestion attempt.
type Report struct {
	PerformerID int64     `json:"performer_id"`
	StartedAt   time.Time `json:"started_at"`
	Uploaded    int       `json:"uploaded"`
	Skipped     int       `json:"skipped"`
	Errors      []string  `json:"errors,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	Missing     []int     `json:"missing,omitempty"`
}

// Status classifies the attempt: "error" when nothing was uploaded,
// "warning" when something was uploaded but errors or gaps remain,
// "ok" otherwise.
func (r *Report) Status() string {
	if r.Uploaded == 0 {
		return "error"
	}
	if len(r.Errors) > 0 || len(r.Missing) > 0 {
		return "warning"
	}
	return "ok"
}

// ErrorPreview returns up to the preview cap of error strings and the
// count of errors beyond the cap.
func (r *Report) ErrorPreview() ([]string, int) {
	return previewStrings(r.Errors)
}

// MissingPreview returns up to the preview cap of missing positions
// and the count beyond the cap.
func (r *Report) MissingPreview() ([]int, int) {
	if len(r.Missing) <= constants.ReportPreviewSize {
		return r.Missing, 0
	}
	return r.Missing[:constants.ReportPreviewSize], len(r.Missing) - constants.ReportPreviewSize
}

func previewStrings(items []string) ([]string, int) {
	if len(items) <= constants.ReportPreviewSize {
		return items, 0
	}
	return items[:constants.ReportPreviewSize], len(items) - constants.ReportPreviewSize
}

// ReportLog keeps the most recent archive reports in memory for the
// operations API.
type ReportLog struct {
	mu      sync.Mutex
	reports []*Report
	cap     int
}

func NewReportLog(capacity int) *ReportLog {
	if capacity <= 0 {
		capacity = 20
	}
	return &ReportLog{cap: capacity}
}

func (l *ReportLog) Add(r *Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = append(l.reports, r)
	if len(l.reports) > l.cap {
		l.reports = l.reports[len(l.reports)-l.cap:]
	}
}

// Recent returns the stored reports newest-first.
func (l *ReportLog) Recent() []*Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Report, 0, len(l.reports))
	for i := len(l.reports) - 1; i >= 0; i-- {
		out = append(out, l.reports[i])
	}
	return out
}

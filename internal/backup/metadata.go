package backup

import (
	"time"

	"github.com/aelpxy/wikibak/pkg/models"
)

// Record is one entry of the local backup history. Archives themselves carry
// no manifest; this is only a convenience index for operators.
type Record struct {
	ID           string            `json:"id"`
	Installation string            `json:"installation"`
	Destination  string            `json:"destination"`
	Prefix       string            `json:"prefix"`
	Database     string            `json:"database,omitempty"`
	Charset      string            `json:"charset,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	FinishedAt   time.Time         `json:"finished_at,omitempty"`
	Status       string            `json:"status"`
	Artifacts    []models.Artifact `json:"artifacts,omitempty"`
	SizeBytes    int64             `json:"size_bytes"`
	Warnings     []string          `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Complete copies the outcome of a run into the record.
func (r *Record) Complete(res *Result, err error, finished time.Time) {
	r.FinishedAt = finished
	if res != nil {
		r.Prefix = res.Prefix
		r.Database = res.Profile.Name
		r.Charset = res.Profile.CharsetOrDefault()
		r.Artifacts = res.Artifacts
		r.Warnings = res.Warnings
		r.SizeBytes = 0
		for _, a := range res.Artifacts {
			r.SizeBytes += Size(a)
		}
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusCompleted
}

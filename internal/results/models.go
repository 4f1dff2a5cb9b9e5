package results

import "time"

// Run is the persisted summary of one pipeline execution.
type Run struct {
	ID           int64
	RunID        string
	Environment  string
	Organization int64
	State        string
	FailureStep  string
	Failure      string

	LinkpageID  int64
	LinkpageURL string
	QRCodeID    int64
	QRURL       string
	QRImagePath string
	MediaID     int64
	PDFURL      string
	LinkID      int64

	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the run reached the end of its step sequence.
func (r *Run) Succeeded() bool {
	return r != nil && r.State == "completed"
}

// StepRecord is one persisted step outcome belonging to a run.
type StepRecord struct {
	ID         int64
	RunID      string
	Step       string
	StatusCode int
	BodyJSON   string
	RecordedAt time.Time
}

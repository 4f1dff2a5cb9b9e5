package flow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"linkflow/internal/services/uniqode"
)

// StepResult is the immutable audit record of one completed step.
type StepResult struct {
	Step       Step
	StatusCode int
	Body       map[string]any
	RecordedAt time.Time
}

// RunContext accumulates the state of one pipeline execution. It is owned
// exclusively by the orchestrator for the duration of the run and never
// shared across runs. All remote identifiers are assigned by the vendor;
// the run context only records them.
type RunContext struct {
	RunID        string
	Environment  string
	Organization int64
	StartedAt    time.Time
	FinishedAt   time.Time
	State        State
	FailureStep  Step
	Failure      string

	Linkpage    uniqode.Linkpage
	QRCodeID    int64
	QRURL       string
	QRImagePath string
	MediaID     int64
	PDFURL      string
	LinkID      int64

	results  []StepResult
	recorded map[Step]struct{}
}

// NewRunContext starts a fresh run record for the given environment.
func NewRunContext(environment string, organization int64) *RunContext {
	return &RunContext{
		RunID:        uuid.NewString(),
		Environment:  environment,
		Organization: organization,
		StartedAt:    time.Now().UTC(),
		State:        StateNotStarted,
		recorded:     make(map[Step]struct{}),
	}
}

// Record appends the result for a completed step and advances State to the
// step's key. A step key may appear at most once per run and steps must
// arrive in pipeline order.
func (rc *RunContext) Record(step Step, statusCode int, body map[string]any) error {
	if !step.Known() {
		return fmt.Errorf("record step: unknown step %q", step)
	}
	if _, dup := rc.recorded[step]; dup {
		return fmt.Errorf("record step: %q already recorded for run %s", step, rc.RunID)
	}
	if n := len(rc.results); n > 0 && rc.results[n-1].Step.Index() >= step.Index() {
		return fmt.Errorf("record step: %q arrived out of order after %q", step, rc.results[n-1].Step)
	}
	rc.recorded[step] = struct{}{}
	rc.State = State(step)
	rc.results = append(rc.results, StepResult{
		Step:       step,
		StatusCode: statusCode,
		Body:       body,
		RecordedAt: time.Now().UTC(),
	})
	return nil
}

// Has reports whether a StepResult exists for the step.
func (rc *RunContext) Has(step Step) bool {
	_, ok := rc.recorded[step]
	return ok
}

// Results returns the accumulated step results in execution order.
func (rc *RunContext) Results() []StepResult {
	cp := make([]StepResult, len(rc.results))
	copy(cp, rc.results)
	return cp
}

func (rc *RunContext) complete() {
	rc.State = StateCompleted
	rc.FinishedAt = time.Now().UTC()
}

func (rc *RunContext) fail(step Step, err error) {
	rc.State = StateFailed
	rc.FailureStep = step
	if err != nil {
		rc.Failure = err.Error()
	}
	rc.FinishedAt = time.Now().UTC()
}

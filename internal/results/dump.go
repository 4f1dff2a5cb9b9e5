package results

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"linkflow/internal/fileutil"
	"linkflow/internal/flow"
)

// DumpFileName is the JSON audit dump written next to the QR image.
const DumpFileName = "flow_results.json"

type dumpStep struct {
	StatusCode int            `json:"status_code"`
	Body       map[string]any `json:"body,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

type dumpDocument struct {
	RunID        string              `json:"run_id"`
	Environment  string              `json:"environment"`
	Organization int64               `json:"organization"`
	State        string              `json:"state"`
	FailureStep  string              `json:"failure_step,omitempty"`
	Failure      string              `json:"failure,omitempty"`
	LinkpageID   int64               `json:"linkpage_id,omitempty"`
	LinkpageURL  string              `json:"linkpage_url,omitempty"`
	QRCodeID     int64               `json:"qr_code_id,omitempty"`
	QRURL        string              `json:"qr_url,omitempty"`
	QRImagePath  string              `json:"qr_image_path,omitempty"`
	MediaID      int64               `json:"media_id,omitempty"`
	PDFURL       string              `json:"pdf_url,omitempty"`
	LinkID       int64               `json:"link_id,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	StepOrder    []string            `json:"step_order"`
	Results      map[string]dumpStep `json:"results"`
}

// WriteDump serializes the run audit trail as JSON into dir and returns the
// written path. JSON objects lose ordering, so the executed step order is
// carried explicitly alongside the keyed results.
func WriteDump(rc *flow.RunContext, dir string) (string, error) {
	doc := dumpDocument{
		RunID:        rc.RunID,
		Environment:  rc.Environment,
		Organization: rc.Organization,
		State:        string(rc.State),
		FailureStep:  string(rc.FailureStep),
		Failure:      rc.Failure,
		LinkpageID:   rc.Linkpage.ID,
		LinkpageURL:  rc.Linkpage.URL,
		QRCodeID:     rc.QRCodeID,
		QRURL:        rc.QRURL,
		QRImagePath:  rc.QRImagePath,
		MediaID:      rc.MediaID,
		PDFURL:       rc.PDFURL,
		LinkID:       rc.LinkID,
		StartedAt:    rc.StartedAt,
		Results:      make(map[string]dumpStep),
	}
	if !rc.FinishedAt.IsZero() {
		finished := rc.FinishedAt
		doc.FinishedAt = &finished
	}
	for _, result := range rc.Results() {
		doc.StepOrder = append(doc.StepOrder, string(result.Step))
		doc.Results[string(result.Step)] = dumpStep{
			StatusCode: result.StatusCode,
			Body:       result.Body,
			RecordedAt: result.RecordedAt,
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run dump: %w", err)
	}
	path := filepath.Join(dir, DumpFileName)
	if err := fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write run dump: %w", err)
	}
	return path, nil
}

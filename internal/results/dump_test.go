package results_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"linkflow/internal/flow"
	"linkflow/internal/results"
)

func TestWriteDump(t *testing.T) {
	dir := t.TempDir()
	rc := completedRunContext(t)

	path, err := results.WriteDump(rc, dir)
	if err != nil {
		t.Fatalf("write dump: %v", err)
	}
	if path != filepath.Join(dir, results.DumpFileName) {
		t.Errorf("dump path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var doc struct {
		RunID     string   `json:"run_id"`
		State     string   `json:"state"`
		PDFURL    string   `json:"pdf_url"`
		StepOrder []string `json:"step_order"`
		Results   map[string]struct {
			StatusCode int `json:"status_code"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if doc.RunID != rc.RunID {
		t.Errorf("run id = %q", doc.RunID)
	}
	if doc.State != string(flow.StateCompleted) {
		t.Errorf("state = %q", doc.State)
	}
	if doc.PDFURL != "https://q.eddy.pro/pdf/303" {
		t.Errorf("pdf url = %q", doc.PDFURL)
	}

	wantSteps := flow.Sequence(false)
	if len(doc.StepOrder) != len(wantSteps) {
		t.Fatalf("step order has %d entries, want %d", len(doc.StepOrder), len(wantSteps))
	}
	for i, step := range wantSteps {
		if doc.StepOrder[i] != string(step) {
			t.Errorf("step_order[%d] = %q, want %q", i, doc.StepOrder[i], step)
		}
		entry, ok := doc.Results[string(step)]
		if !ok {
			t.Errorf("results missing %q", step)
			continue
		}
		if entry.StatusCode != 200 {
			t.Errorf("results[%q].status_code = %d", step, entry.StatusCode)
		}
	}
}

func TestWriteDumpFailedRun(t *testing.T) {
	dir := t.TempDir()
	rc := flow.NewRunContext("qa", 949)
	rc.State = flow.StateFailed
	rc.FailureStep = flow.StepCreateLinkpage
	rc.Failure = "create linkpage: request failed"

	path, err := results.WriteDump(rc, dir)
	if err != nil {
		t.Fatalf("write dump: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}
	var doc struct {
		FailureStep string         `json:"failure_step"`
		Failure     string         `json:"failure"`
		Results     map[string]any `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if doc.FailureStep != string(flow.StepCreateLinkpage) {
		t.Errorf("failure_step = %q", doc.FailureStep)
	}
	if doc.Failure == "" {
		t.Error("failure message missing")
	}
	if len(doc.Results) != 0 {
		t.Errorf("results = %v, want empty", doc.Results)
	}
}

package flow

// Step identifies one pipeline step. The values double as the step keys
// recorded in the audit trail and carried inside step-scoped errors.
type Step string

const (
	StepCreateLinkpage Step = "1-create-linkpage"
	StepCreateQR       Step = "2-create-qr"
	StepQRDetails      Step = "2.1-get-qr-details"
	StepDownloadQR     Step = "2.2-download-qr-image"
	StepSignedURL      Step = "3-get-signed-url"
	StepUploadMedia    Step = "4-upload-media"
	StepVerifyMedia    Step = "4.1-verify-media"
	StepActivateMedia  Step = "4.2-activate-media"
	StepAttachPDF      Step = "5-add-pdf-to-linkpage"
	StepDeletePDF      Step = "6-delete-pdf-from-linkpage"
)

// coreOrder is the fixed total order of the mandatory steps. StepDeletePDF
// runs after StepAttachPDF only when cleanup is requested.
var coreOrder = []Step{
	StepCreateLinkpage,
	StepCreateQR,
	StepQRDetails,
	StepDownloadQR,
	StepSignedURL,
	StepUploadMedia,
	StepVerifyMedia,
	StepActivateMedia,
	StepAttachPDF,
}

// Sequence returns the ordered steps for a run, including the compensating
// delete step when requested.
func Sequence(deleteAfter bool) []Step {
	steps := make([]Step, len(coreOrder), len(coreOrder)+1)
	copy(steps, coreOrder)
	if deleteAfter {
		steps = append(steps, StepDeletePDF)
	}
	return steps
}

// Index returns the position of the step in the total order, or -1 for an
// unknown step. StepDeletePDF sorts after every core step.
func (s Step) Index() int {
	for i, step := range coreOrder {
		if step == s {
			return i
		}
	}
	if s == StepDeletePDF {
		return len(coreOrder)
	}
	return -1
}

// Known reports whether the step is part of the pipeline vocabulary.
func (s Step) Known() bool {
	return s.Index() >= 0
}

// State describes where a run is in its lifecycle. While a run is in flight
// the state is the key of the most recently completed step.
type State string

const (
	StateNotStarted State = "not-started"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state is an end state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

package flow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"linkflow/internal/fileutil"
	"linkflow/internal/logging"
	"linkflow/internal/services"
	"linkflow/internal/services/storage"
	"linkflow/internal/services/uniqode"
)

const pdfContentType = "application/pdf"

// Request describes one pipeline invocation.
type Request struct {
	PDFPath      string
	LinkpageName string
	QRName       string
	MediaFolder  int64
	DeleteAfter  bool
	OutputDir    string
}

// Pipeline drives the endpoint adapters through the fixed step order,
// threading each step's output into the next step's input. Strictly
// sequential; the only branch is the optional delete after step 5.
type Pipeline struct {
	api      *uniqode.Client
	uploader *storage.Uploader
	qrOpts   uniqode.DownloadOptions
	logger   *slog.Logger
}

// New constructs a Pipeline.
func New(api *uniqode.Client, uploader *storage.Uploader, qrOpts uniqode.DownloadOptions, logger *slog.Logger) (*Pipeline, error) {
	if api == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "new pipeline", "api client is required", nil)
	}
	if uploader == nil {
		uploader = storage.NewUploader(nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		api:      api,
		uploader: uploader,
		qrOpts:   qrOpts,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
	}, nil
}

// Run executes the workflow. On the first unrecoverable step failure it stops
// issuing steps and returns the partial RunContext together with the
// triggering error; already-created remote resources are left as-is.
func (p *Pipeline) Run(ctx context.Context, environment string, req Request) (*RunContext, error) {
	rc := NewRunContext(environment, p.api.Organization())
	ctx = services.WithRunID(ctx, rc.RunID)
	logger := logging.WithContext(ctx, p.logger)

	// Local preconditions come first so a bad invocation never creates
	// remote state.
	if err := p.checkPreconditions(req); err != nil {
		rc.fail("", err)
		return rc, err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	pdfName := filepath.Base(req.PDFPath)

	logger.Info("pipeline started",
		logging.String("environment", environment),
		logging.String("pdf", req.PDFPath),
		logging.Bool("delete_after", req.DeleteAfter),
	)

	// Step 1: create linkpage.
	page, result, err := p.api.CreateLinkpage(p.stepCtx(ctx, StepCreateLinkpage), req.LinkpageName)
	if err != nil {
		return p.abort(rc, logger, StepCreateLinkpage, err)
	}
	rc.Linkpage = page
	p.record(rc, logger, StepCreateLinkpage, result.Status, result.Body)

	// Step 2: create QR code linked to the linkpage.
	qrID, result, err := p.api.CreateQRCode(p.stepCtx(ctx, StepCreateQR), page.ID, req.QRName)
	if err != nil {
		return p.abort(rc, logger, StepCreateQR, err)
	}
	rc.QRCodeID = qrID
	p.record(rc, logger, StepCreateQR, result.Status, result.Body)

	// Step 2.1: resolve the QR redirect URL (pure read).
	qrURL, result, err := p.api.GetQRCode(p.stepCtx(ctx, StepQRDetails), qrID)
	if err != nil {
		return p.abort(rc, logger, StepQRDetails, err)
	}
	rc.QRURL = qrURL
	p.record(rc, logger, StepQRDetails, result.Status, result.Body)

	// Step 2.2: download the rendered QR image to local storage.
	image, status, err := p.api.DownloadQRImage(p.stepCtx(ctx, StepDownloadQR), qrID, p.qrOpts)
	if err != nil {
		return p.abort(rc, logger, StepDownloadQR, err)
	}
	imagePath := filepath.Join(outputDir, fmt.Sprintf("qr_%d.%s", qrID, qrFileExtension(p.qrOpts.CanvasType)))
	if err := fileutil.WriteFileAtomic(imagePath, image, 0o644); err != nil {
		err = services.Wrap(services.ErrPrecondition, string(StepDownloadQR), "save qr image", imagePath, err)
		return p.abort(rc, logger, StepDownloadQR, err)
	}
	rc.QRImagePath = imagePath
	p.record(rc, logger, StepDownloadQR, status, map[string]any{
		"qr_image_path": imagePath,
		"bytes":         len(image),
	})

	// Step 3: presigned upload slot.
	slot, result, err := p.api.CreateMediaSlot(p.stepCtx(ctx, StepSignedURL), req.MediaFolder)
	if err != nil {
		return p.abort(rc, logger, StepSignedURL, err)
	}
	rc.MediaID = slot.ID
	rc.PDFURL = p.api.PDFURL(slot.ID)
	p.record(rc, logger, StepSignedURL, result.Status, result.Body)
	logger.Info("resolved pdf url", logging.String("pdf_url", rc.PDFURL))

	// Step 4: raw upload to object storage, presigned fields only.
	uploadStatus, err := p.uploader.Upload(p.stepCtx(ctx, StepUploadMedia), slot, req.PDFPath, pdfContentType)
	if err != nil {
		return p.abort(rc, logger, StepUploadMedia, err)
	}
	p.record(rc, logger, StepUploadMedia, uploadStatus, map[string]any{"upload_status": uploadStatus})

	// Step 4.1: verify the media record saw the upload.
	media, result, err := p.api.GetMedia(p.stepCtx(ctx, StepVerifyMedia), slot.ID)
	if err != nil {
		return p.abort(rc, logger, StepVerifyMedia, err)
	}
	p.record(rc, logger, StepVerifyMedia, result.Status, result.Body)

	// Step 4.2: activate. Only reachable after 4.1 succeeded on the same
	// media id in this run.
	_, result, err = p.api.ActivateMedia(p.stepCtx(ctx, StepActivateMedia), media, pdfName, pdfContentType)
	if err != nil {
		return p.abort(rc, logger, StepActivateMedia, err)
	}
	p.record(rc, logger, StepActivateMedia, result.Status, result.Body)

	// Step 5: attach the PDF widget.
	links, result, err := p.api.AddPDFWidget(p.stepCtx(ctx, StepAttachPDF), uniqode.AddWidgetRequest{
		Linkpage: page,
		PDFURL:   rc.PDFURL,
		PDFName:  pdfName,
		Title:    WidgetTitle(pdfName),
	})
	if err != nil {
		return p.abort(rc, logger, StepAttachPDF, err)
	}
	rc.LinkID = widgetLinkID(links, rc.PDFURL)
	p.record(rc, logger, StepAttachPDF, result.Status, result.Body)

	// Step 6 (optional): compensating delete, only after full success of
	// step 5.
	if req.DeleteAfter {
		linkIDs := collectLinkIDs(links)
		if len(linkIDs) == 0 {
			logger.Warn("no link ids found to delete, skipping cleanup")
		} else {
			_, result, err := p.api.DeleteWidgets(p.stepCtx(ctx, StepDeletePDF), page, linkIDs)
			if err != nil {
				return p.abort(rc, logger, StepDeletePDF, err)
			}
			p.record(rc, logger, StepDeletePDF, result.Status, result.Body)
		}
	}

	rc.complete()
	logger.Info("pipeline completed",
		logging.Int64("linkpage_id", rc.Linkpage.ID),
		logging.String("linkpage_url", rc.Linkpage.URL),
		logging.Int64("qr_code_id", rc.QRCodeID),
		logging.String("qr_image", rc.QRImagePath),
		logging.String("pdf_url", rc.PDFURL),
	)
	return rc, nil
}

func (p *Pipeline) checkPreconditions(req Request) error {
	if req.PDFPath == "" {
		return services.Wrap(services.ErrPrecondition, "", "check pdf", "pdf path is required", nil)
	}
	if !fileutil.IsRegularFile(req.PDFPath) {
		return services.Wrap(services.ErrPrecondition, "", "check pdf", fmt.Sprintf("pdf file not found: %s", req.PDFPath), os.ErrNotExist)
	}
	if req.LinkpageName == "" {
		return services.Wrap(services.ErrPrecondition, "", "check request", "linkpage name is required", nil)
	}
	if req.QRName == "" {
		return services.Wrap(services.ErrPrecondition, "", "check request", "qr name is required", nil)
	}
	return nil
}

func (p *Pipeline) stepCtx(ctx context.Context, step Step) context.Context {
	return services.WithStep(ctx, string(step))
}

func (p *Pipeline) record(rc *RunContext, logger *slog.Logger, step Step, status int, body map[string]any) {
	if err := rc.Record(step, status, body); err != nil {
		// Ordering is enforced by construction; a violation here is a bug.
		logger.Error("record step result", logging.String(logging.FieldStep, string(step)), logging.Error(err))
		return
	}
	logger.Info("step complete", logging.String(logging.FieldStep, string(step)), logging.Int("status", status))
}

func (p *Pipeline) abort(rc *RunContext, logger *slog.Logger, step Step, err error) (*RunContext, error) {
	rc.fail(step, err)
	logger.Error("pipeline failed", logging.String(logging.FieldStep, string(step)), logging.Error(err))
	return rc, err
}

func qrFileExtension(canvasType string) string {
	switch canvasType {
	case "pdf", "png", "svg":
		return canvasType
	default:
		return "bin"
	}
}

func widgetLinkID(links []uniqode.WidgetLink, pdfURL string) int64 {
	for _, link := range links {
		if link.PDFURL == pdfURL {
			return link.ID
		}
	}
	for _, link := range links {
		if link.ID != 0 {
			return link.ID
		}
	}
	return 0
}

func collectLinkIDs(links []uniqode.WidgetLink) []int64 {
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		if link.ID != 0 {
			ids = append(ids, link.ID)
		}
	}
	return ids
}

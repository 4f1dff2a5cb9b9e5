package uniqode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// QR campaign constants for linkpage-backed QR codes; part of the wire contract.
const (
	qrCampaignContentType = 18
	qrTypeDynamic         = 2
	qrCampaignTimezone    = "Asia/Calcutta"
)

// DownloadOptions controls the rendered QR image fetched at step 2.2.
type DownloadOptions struct {
	Size                 int
	ErrorCorrectionLevel int
	CanvasType           string
}

// CreateQRCode creates a QR code whose campaign points at the linkpage.
//
// POST /qrcodes/?organization={org} expects 201.
func (c *Client) CreateQRCode(ctx context.Context, linkpageID int64, name string) (int64, Result, error) {
	const step = "2-create-qr"
	endpoint := c.endpoint("qrcodes/")
	query := url.Values{}
	query.Set("organization", strconv.FormatInt(c.org, 10))
	endpoint.RawQuery = query.Encode()

	payload := map[string]any{
		"campaign": map[string]any{
			"content_type":    qrCampaignContentType,
			"campaign_active": true,
			"timezone":        qrCampaignTimezone,
			"organization":    c.org,
			"link_page":       linkpageID,
			"age_gate":        0,
		},
		"qr_type":      qrTypeDynamic,
		"organization": c.org,
		"name":         name,
	}
	result, err := c.doJSON(ctx, step, "create qr code", http.MethodPost, endpoint, payload, http.StatusCreated)
	if err != nil {
		return 0, Result{}, err
	}
	id, err := requireIntField(step, "create qr code", result.Body, "id")
	if err != nil {
		return 0, result, err
	}
	return id, result, nil
}

// GetQRCode fetches QR details; a pure read, safe to repeat.
//
// GET /qrcodes/{id} expects 200.
func (c *Client) GetQRCode(ctx context.Context, qrID int64) (string, Result, error) {
	const step = "2.1-get-qr-details"
	endpoint := c.endpoint("qrcodes", strconv.FormatInt(qrID, 10))
	result, err := c.doJSON(ctx, step, "get qr details", http.MethodGet, endpoint, nil, http.StatusOK)
	if err != nil {
		return "", Result{}, err
	}
	return stringField(result.Body, "url"), result, nil
}

// DownloadQRImage fetches the rendered QR image payload.
//
// GET /qrcodes/{id}/download/?size=&error_correction_level=&canvas_type= expects 200.
func (c *Client) DownloadQRImage(ctx context.Context, qrID int64, opts DownloadOptions) ([]byte, int, error) {
	const step = "2.2-download-qr-image"
	endpoint := c.endpoint(fmt.Sprintf("qrcodes/%d/download/", qrID))
	query := url.Values{}
	query.Set("size", strconv.Itoa(opts.Size))
	query.Set("error_correction_level", strconv.Itoa(opts.ErrorCorrectionLevel))
	query.Set("canvas_type", opts.CanvasType)
	endpoint.RawQuery = query.Encode()

	return c.doBinary(ctx, step, "download qr image", endpoint, http.StatusOK)
}

package uniqode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"linkflow/internal/services"
)

// Media lifecycle states driven by steps 4.1/4.2.
const (
	MediaStatusPendingUpload = "Pending Upload"
	MediaStatusActive        = "Active"
)

// MediaSlot is the presigned upload slot returned by step 3: the media
// record id plus the opaque storage POST fields, valid for a bounded window.
type MediaSlot struct {
	ID        int64
	UploadURL string
	Fields    map[string]string
	MediaURL  string
}

// Media is the vendor-side tracking record for an uploaded file.
type Media struct {
	ID          int64
	Status      string
	URL         string
	S3ObjectKey string
	Name        string
	ContentType string
}

// The API returns presigned fields either nested (fields/s3_fields/
// upload_fields) or at the top level with lowercase hyphenated names. Map
// from the API's key names to canonical S3 form field names.
var presignedFieldAliases = []struct {
	canonical string
	aliases   []string
}{
	{"key", []string{"key"}},
	{"Policy", []string{"Policy", "policy"}},
	{"X-Amz-Algorithm", []string{"X-Amz-Algorithm", "x-amz-algorithm", "x_amz_algorithm"}},
	{"X-Amz-Credential", []string{"X-Amz-Credential", "x-amz-credential", "x_amz_credential"}},
	{"X-Amz-Date", []string{"X-Amz-Date", "x-amz-date", "x_amz_date"}},
	{"X-Amz-Signature", []string{"X-Amz-Signature", "x-amz-signature", "x_amz_signature"}},
	{"X-Amz-Security-Token", []string{"X-Amz-Security-Token", "x-amz-security-token", "x_amz_security_token"}},
}

var uploadURLKeys = []string{"post_action_url", "upload_url", "s3_url", "url"}

// CreateMediaSlot requests a presigned upload slot for a PDF.
//
// POST /media/?organization={org}&content_type=application expects 201.
func (c *Client) CreateMediaSlot(ctx context.Context, folder int64) (MediaSlot, Result, error) {
	const step = "3-get-signed-url"
	endpoint := c.endpoint("media/")
	query := url.Values{}
	query.Set("organization", strconv.FormatInt(c.org, 10))
	query.Set("content_type", "application")
	endpoint.RawQuery = query.Encode()

	payload := map[string]any{
		"organization":        c.org,
		"public":              true,
		"typeform_compatible": nil,
	}
	if folder > 0 {
		payload["folder"] = folder
	}
	result, err := c.doJSON(ctx, step, "get signed upload url", http.MethodPost, endpoint, payload, http.StatusCreated)
	if err != nil {
		return MediaSlot{}, Result{}, err
	}

	id, err := requireIntField(step, "get signed upload url", result.Body, "id")
	if err != nil {
		return MediaSlot{}, result, err
	}

	slot := MediaSlot{
		ID:       id,
		Fields:   extractPresignedFields(result.Body),
		MediaURL: stringField(result.Body, "url"),
	}
	for _, key := range uploadURLKeys {
		if value := stringField(result.Body, key); value != "" {
			slot.UploadURL = value
			break
		}
	}
	if slot.UploadURL == "" {
		return MediaSlot{}, result, services.Wrap(services.ErrRemoteState, step, "get signed upload url", "response has no storage upload url", errMissingField)
	}
	if slot.Fields["key"] == "" {
		return MediaSlot{}, result, services.Wrap(services.ErrRemoteState, step, "get signed upload url", "response has no presigned \"key\" field", errMissingField)
	}
	return slot, result, nil
}

// GetMedia fetches the media record after the storage upload and asserts the
// remote lifecycle state is "Pending Upload". A 200 with any other status is
// a remote-state mismatch, distinct from an HTTP failure.
//
// GET /media/{id}/?organization={org} expects 200.
func (c *Client) GetMedia(ctx context.Context, mediaID int64) (Media, Result, error) {
	const step = "4.1-verify-media"
	result, err := c.doJSON(ctx, step, "verify media", http.MethodGet, c.mediaEndpoint(mediaID), nil, http.StatusOK)
	if err != nil {
		return Media{}, Result{}, err
	}
	media := decodeMedia(mediaID, result.Body)
	if media.Status != MediaStatusPendingUpload {
		return media, result, services.Wrap(services.ErrRemoteState, step, "verify media",
			fmt.Sprintf("media status %q, want %q", media.Status, MediaStatusPendingUpload), nil)
	}
	return media, result, nil
}

// ActivateMedia transitions the media record to "Active" and sets its
// display name and content type. The response status field is asserted.
//
// PUT /media/{id}/?organization={org} expects 200.
func (c *Client) ActivateMedia(ctx context.Context, media Media, name, contentType string) (Media, Result, error) {
	const step = "4.2-activate-media"
	payload := map[string]any{
		"id":                  media.ID,
		"url":                 media.URL,
		"status":              MediaStatusActive,
		"name":                name,
		"content_type":        contentType,
		"organization":        c.org,
		"typeform_url":        nil,
		"typeform_compatible": false,
	}
	result, err := c.doJSON(ctx, step, "activate media", http.MethodPut, c.mediaEndpoint(media.ID), payload, http.StatusOK)
	if err != nil {
		return Media{}, Result{}, err
	}
	activated := decodeMedia(media.ID, result.Body)
	if activated.Status != MediaStatusActive {
		return activated, result, services.Wrap(services.ErrRemoteState, step, "activate media",
			fmt.Sprintf("media status %q, want %q", activated.Status, MediaStatusActive), nil)
	}
	return activated, result, nil
}

func (c *Client) mediaEndpoint(mediaID int64) *url.URL {
	endpoint := c.endpoint(fmt.Sprintf("media/%d/", mediaID))
	query := url.Values{}
	query.Set("organization", strconv.FormatInt(c.org, 10))
	endpoint.RawQuery = query.Encode()
	return endpoint
}

func decodeMedia(id int64, body map[string]any) Media {
	media := Media{
		ID:          id,
		Status:      stringField(body, "status"),
		URL:         stringField(body, "url"),
		S3ObjectKey: stringField(body, "s3_object_key"),
		Name:        stringField(body, "name"),
		ContentType: stringField(body, "content_type"),
	}
	if media.URL == "" {
		media.URL = stringField(body, "media_url")
	}
	return media
}

func extractPresignedFields(body map[string]any) map[string]string {
	nested := map[string]any{}
	for _, key := range []string{"fields", "s3_fields", "upload_fields"} {
		if candidate, ok := body[key].(map[string]any); ok && len(candidate) > 0 {
			nested = candidate
			break
		}
	}

	fields := map[string]string{}
	if len(nested) > 0 {
		for key, value := range nested {
			fields[key] = fmt.Sprint(value)
		}
		return fields
	}

	// Fields are at the top level of the response.
	for _, mapping := range presignedFieldAliases {
		for _, alias := range mapping.aliases {
			if value, ok := body[alias]; ok {
				fields[mapping.canonical] = fmt.Sprint(value)
				break
			}
		}
	}
	return fields
}

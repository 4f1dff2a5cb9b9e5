package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"linkflow/internal/services"
	"linkflow/internal/services/uniqode"
)

const (
	stepKey            = "4-upload-media"
	defaultHTTPTimeout = 120 * time.Second
)

// expectedStatus is what the storage provider documents for a presigned POST;
// 200 and 201 are also accepted because some backends answer with them.
const expectedStatus = http.StatusNoContent

// Uploader performs the raw multipart POST to object storage using the
// presigned fields from step 3. The request is deliberately unauthenticated
// by API key; only the presigned fields authorize it.
type Uploader struct {
	http *http.Client
}

// NewUploader constructs an Uploader. A nil client gets a generous timeout
// suited to PDF payloads.
func NewUploader(client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Uploader{http: client}
}

// Upload posts the file at path to the presigned slot. The multipart field
// order matters to the storage provider: "key" first, then the remaining
// presigned fields, then Content-Type, with the file entry last.
func (u *Uploader) Upload(ctx context.Context, slot uniqode.MediaSlot, path, contentType string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, services.Wrap(services.ErrPrecondition, stepKey, "read pdf", path, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("key", slot.Fields["key"]); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", "write key field", err)
	}
	for _, name := range sortedFieldNames(slot.Fields) {
		if name == "key" {
			continue
		}
		if err := writer.WriteField(name, slot.Fields[name]); err != nil {
			return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", fmt.Sprintf("write %s field", name), err)
		}
	}
	if err := writer.WriteField("Content-Type", contentType); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", "write content type", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", "create file part", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", "copy file payload", err)
	}
	if err := writer.Close(); err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build form", "finalize form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, slot.UploadURL, &body)
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stepKey, "build request", slot.UploadURL, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.http.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrConnection, stepKey, "upload to storage", "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return resp.StatusCode, nil
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("upload to storage: %w", services.NewStatusError(stepKey, expectedStatus, resp.StatusCode, raw))
	}
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

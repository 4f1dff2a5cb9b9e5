package uniqode_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkflow/internal/services"
	"linkflow/internal/services/uniqode"
)

func TestCreateMediaSlotExtractsTopLevelPresignedFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("organization") != "949" || query.Get("content_type") != "application" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["public"] != true {
			t.Errorf("expected public true, got %v", payload["public"])
		}
		if _, ok := payload["folder"]; ok {
			t.Errorf("folder must be omitted when unset")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 5501,
			"post_action_url": "https://bucket.s3.amazonaws.com/",
			"key": "media/5501/upload.pdf",
			"policy": "b64policy",
			"x-amz-algorithm": "AWS4-HMAC-SHA256",
			"x-amz-credential": "cred",
			"x-amz-date": "20260831T000000Z",
			"x-amz-signature": "sig"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	slot, _, err := client.CreateMediaSlot(context.Background(), 0)
	if err != nil {
		t.Fatalf("CreateMediaSlot failed: %v", err)
	}
	if slot.ID != 5501 {
		t.Fatalf("unexpected media id: %d", slot.ID)
	}
	if slot.UploadURL != "https://bucket.s3.amazonaws.com/" {
		t.Fatalf("unexpected upload url: %q", slot.UploadURL)
	}
	want := map[string]string{
		"key":              "media/5501/upload.pdf",
		"Policy":           "b64policy",
		"X-Amz-Algorithm":  "AWS4-HMAC-SHA256",
		"X-Amz-Credential": "cred",
		"X-Amz-Date":       "20260831T000000Z",
		"X-Amz-Signature":  "sig",
	}
	for key, value := range want {
		if slot.Fields[key] != value {
			t.Fatalf("field %q: got %q want %q", key, slot.Fields[key], value)
		}
	}
}

func TestCreateMediaSlotPrefersNestedFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 5502,
			"upload_url": "https://bucket.s3.amazonaws.com/",
			"fields": {"key": "media/5502/upload.pdf", "Policy": "p"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	slot, _, err := client.CreateMediaSlot(context.Background(), 12)
	if err != nil {
		t.Fatalf("CreateMediaSlot failed: %v", err)
	}
	if slot.Fields["key"] != "media/5502/upload.pdf" || slot.Fields["Policy"] != "p" {
		t.Fatalf("unexpected fields: %v", slot.Fields)
	}
}

func TestCreateMediaSlotMissingKeyIsRemoteStateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 5503, "upload_url": "https://bucket.s3.amazonaws.com/"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, _, err := client.CreateMediaSlot(context.Background(), 0)
	if !errors.Is(err, services.ErrRemoteState) {
		t.Fatalf("expected remote state error for missing key, got %v", err)
	}
}

func TestGetMediaAssertsPendingUpload(t *testing.T) {
	status := uniqode.MediaStatusPendingUpload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/5501/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            5501,
			"status":        status,
			"url":           "https://cdn.example/media/5501",
			"s3_object_key": "media/5501/upload.pdf",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	media, _, err := client.GetMedia(context.Background(), 5501)
	if err != nil {
		t.Fatalf("GetMedia failed: %v", err)
	}
	if media.Status != uniqode.MediaStatusPendingUpload || media.S3ObjectKey != "media/5501/upload.pdf" {
		t.Fatalf("unexpected media: %+v", media)
	}

	// The call succeeded but the data is wrong: distinct error kind.
	status = uniqode.MediaStatusActive
	_, _, err = client.GetMedia(context.Background(), 5501)
	if !errors.Is(err, services.ErrRemoteState) {
		t.Fatalf("expected remote state error, got %v", err)
	}
	if errors.Is(err, services.ErrStatusMismatch) {
		t.Fatalf("remote state mismatch must not classify as http status mismatch: %v", err)
	}
}

func TestActivateMediaSendsLifecyclePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/media/5501/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["status"] != uniqode.MediaStatusActive {
			t.Errorf("payload status must request Active, got %v", payload["status"])
		}
		if payload["name"] != "catalog.pdf" || payload["content_type"] != "application/pdf" {
			t.Errorf("unexpected name/content_type: %v / %v", payload["name"], payload["content_type"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":           5501,
			"status":       uniqode.MediaStatusActive,
			"name":         "catalog.pdf",
			"content_type": "application/pdf",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	media := uniqode.Media{ID: 5501, URL: "https://cdn.example/media/5501", Status: uniqode.MediaStatusPendingUpload}
	activated, _, err := client.ActivateMedia(context.Background(), media, "catalog.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("ActivateMedia failed: %v", err)
	}
	if activated.Status != uniqode.MediaStatusActive {
		t.Fatalf("unexpected status: %q", activated.Status)
	}
}

func TestActivateMediaRejectsStaleRemoteState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 5501, "status": uniqode.MediaStatusPendingUpload})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, _, err := client.ActivateMedia(context.Background(), uniqode.Media{ID: 5501}, "catalog.pdf", "application/pdf")
	if !errors.Is(err, services.ErrRemoteState) {
		t.Fatalf("expected remote state error, got %v", err)
	}
}

package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"linkflow/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connect: connection refused")
	err := services.Wrap(services.ErrConnection, "1-create-linkpage", "create linkpage", "request failed", base)
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected ErrConnection marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	for _, fragment := range []string{"1-create-linkpage", "create linkpage", "request failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error %q missing fragment %q", err.Error(), fragment)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "4-upload-media", "upload", "", nil)
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected default ErrConnection marker, got %v", err)
	}
}

func TestStatusErrorClassification(t *testing.T) {
	statusErr := services.NewStatusError("3-get-signed-url", 201, 403, []byte(`{"detail":"forbidden"}`))
	wrapped := fmt.Errorf("create media slot: %w", statusErr)

	if !errors.Is(wrapped, services.ErrStatusMismatch) {
		t.Fatalf("expected ErrStatusMismatch, got %v", wrapped)
	}
	var extracted *services.StatusError
	if !errors.As(wrapped, &extracted) {
		t.Fatalf("expected StatusError to be extractable")
	}
	if extracted.Step != "3-get-signed-url" || extracted.Expected != 201 || extracted.Actual != 403 {
		t.Fatalf("unexpected status error fields: %+v", extracted)
	}
	if !strings.Contains(extracted.Error(), "forbidden") {
		t.Fatalf("expected body excerpt in message, got %q", extracted.Error())
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	long := strings.Repeat("x", 5000)
	statusErr := services.NewStatusError("2-create-qr", 201, 500, []byte(long))
	if len(statusErr.Body) > 2000 {
		t.Fatalf("body not truncated: %d bytes", len(statusErr.Body))
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	remote := services.Wrap(services.ErrRemoteState, "4.1-verify-media", "verify", "status Active, want Pending Upload", nil)
	if errors.Is(remote, services.ErrStatusMismatch) {
		t.Fatalf("remote state error should not classify as status mismatch")
	}
	local := services.Wrap(services.ErrPrecondition, "", "stat pdf", "file missing", nil)
	if errors.Is(local, services.ErrConnection) {
		t.Fatalf("precondition error should not classify as connection failure")
	}
}

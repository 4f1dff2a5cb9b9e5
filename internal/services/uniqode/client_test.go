package uniqode_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linkflow/internal/services"
	"linkflow/internal/services/uniqode"
)

func newTestClient(t *testing.T, baseURL string) *uniqode.Client {
	t.Helper()
	client, err := uniqode.New(uniqode.Config{
		Token:        "secret-token",
		Organization: 949,
		BaseURL:      baseURL,
		PDFBaseURL:   "https://q.eddy.pro",
	})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	return client
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := uniqode.New(uniqode.Config{Organization: 1, BaseURL: "http://example"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing token, got %v", err)
	}
	_, err = uniqode.New(uniqode.Config{Token: "t", BaseURL: "http://example"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing org, got %v", err)
	}
	_, err = uniqode.New(uniqode.Config{Token: "t", Organization: 1})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing base url, got %v", err)
	}
}

func TestRequestsCarryTokenAuth(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 101, "url": "https://q.linkpages.pro/abc"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, _, err := client.CreateLinkpage(context.Background(), "Test Page"); err != nil {
		t.Fatalf("CreateLinkpage failed: %v", err)
	}
	if captured == nil {
		t.Fatal("no request captured")
	}
	if got := captured.Header.Get("Authorization"); got != "Token secret-token" {
		t.Fatalf("unexpected auth header: %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type: %q", got)
	}
}

func TestConnectionFailureClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // immediately, so the dial fails

	client := newTestClient(t, server.URL)
	_, _, err := client.CreateLinkpage(context.Background(), "Test Page")
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if errors.Is(err, services.ErrStatusMismatch) {
		t.Fatalf("connection failure must not classify as status mismatch: %v", err)
	}
}

func TestTimeoutClassifiedAsConnectionFailure(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client, err := uniqode.New(uniqode.Config{
		Token:        "t",
		Organization: 1,
		BaseURL:      server.URL,
		Timeout:      50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New client failed: %v", err)
	}
	_, _, err = client.GetQRCode(context.Background(), 7)
	if !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected connection error on timeout, got %v", err)
	}
}

func TestStatusMismatchCarriesContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "name required"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, _, err := client.CreateLinkpage(context.Background(), "")
	if !errors.Is(err, services.ErrStatusMismatch) {
		t.Fatalf("expected status mismatch, got %v", err)
	}
	var statusErr *services.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Step != "1-create-linkpage" {
		t.Fatalf("unexpected step key: %q", statusErr.Step)
	}
	if statusErr.Expected != http.StatusCreated || statusErr.Actual != http.StatusBadRequest {
		t.Fatalf("unexpected statuses: %+v", statusErr)
	}
}

func TestPDFURLFormat(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:0")
	if got := client.PDFURL(5501); got != "https://q.eddy.pro/pdf/5501" {
		t.Fatalf("unexpected pdf url: %q", got)
	}
}

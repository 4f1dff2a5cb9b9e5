package uniqode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkflow/internal/services"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxBodyBytes       = 1 << 20
)

// Config describes the vendor API client configuration.
type Config struct {
	Token        string
	Organization int64
	BaseURL      string
	PDFBaseURL   string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client wraps the vendor REST API (linkpages, QR codes, media records).
// Every request carries the token and organization context; the storage
// upload at step 4 deliberately does not go through this client.
type Client struct {
	token   string
	org     int64
	baseURL *url.URL
	pdfBase string
	http    *http.Client
}

// New creates a Client from the supplied configuration.
func New(cfg Config) (*Client, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "new client", "api token is required", nil)
	}
	if cfg.Organization <= 0 {
		return nil, services.Wrap(services.ErrConfiguration, "", "new client", "organization id is required", nil)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "new client", "base url is required", nil)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "new client", fmt.Sprintf("parse base url %q", base), err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		token:   token,
		org:     cfg.Organization,
		baseURL: baseURL,
		pdfBase: strings.TrimRight(strings.TrimSpace(cfg.PDFBaseURL), "/"),
		http:    client,
	}, nil
}

// Organization returns the organization id the client operates under.
func (c *Client) Organization() int64 {
	return c.org
}

// PDFURL constructs the public PDF URL the platform serves for an uploaded
// media record: {pdf_base}/pdf/{media_id}. The format is part of the output
// contract and must not change.
func (c *Client) PDFURL(mediaID int64) string {
	return fmt.Sprintf("%s/pdf/%d", c.pdfBase, mediaID)
}

// Result captures the raw outcome of a vendor API call for the audit trail.
type Result struct {
	Status int
	Body   map[string]any
}

func (c *Client) endpoint(segments ...string) *url.URL {
	return c.baseURL.JoinPath(segments...)
}

// doJSON issues one authenticated request, validates the expected success
// status, and decodes the body into a generic map. Adapters never retry.
func (c *Client) doJSON(ctx context.Context, step, operation, method string, endpoint *url.URL, payload any, expect int) (Result, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return Result{}, services.Wrap(services.ErrConfiguration, step, operation, "encode request", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, step, operation, "build request", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConnection, step, operation, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, services.Wrap(services.ErrConnection, step, operation, "read response", err)
	}

	if resp.StatusCode != expect {
		return Result{}, fmt.Errorf("%s: %w", operation, services.NewStatusError(step, expect, resp.StatusCode, raw))
	}

	decoded := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return Result{}, services.Wrap(services.ErrRemoteState, step, operation, "decode response", err)
		}
	}
	return Result{Status: resp.StatusCode, Body: decoded}, nil
}

// doBinary issues one authenticated request and returns the raw payload.
func (c *Client) doBinary(ctx context.Context, step, operation string, endpoint *url.URL, expect int) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrConfiguration, step, operation, "build request", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrConnection, step, operation, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrConnection, step, operation, "read response", err)
	}
	if resp.StatusCode != expect {
		return nil, 0, fmt.Errorf("%s: %w", operation, services.NewStatusError(step, expect, resp.StatusCode, raw))
	}
	return raw, resp.StatusCode, nil
}

func intField(body map[string]any, key string) (int64, bool) {
	switch v := body[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

var errMissingField = errors.New("missing field")

func requireIntField(step, operation string, body map[string]any, key string) (int64, error) {
	value, ok := intField(body, key)
	if !ok {
		return 0, services.Wrap(services.ErrRemoteState, step, operation, fmt.Sprintf("response has no usable %q field", key), errMissingField)
	}
	return value, nil
}

// Package uniqode wraps the vendor REST API behind typed endpoint adapters:
// linkpage creation and widget management, QR code creation/details/download,
// and media record lifecycle (presigned slot, verification, activation).
//
// Each adapter sends exactly one authenticated request, validates the
// expected success status, and decodes the body into the next step's input.
// Failures are classified through the internal/services sentinels so the
// orchestrator can tell connection failures, HTTP status mismatches, and
// remote-state mismatches apart. No adapter retries; re-running the pipeline
// is the documented remedy for expired presigned URLs.
package uniqode

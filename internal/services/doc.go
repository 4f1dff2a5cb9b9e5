// Package services defines shared utilities consumed by the pipeline
// orchestrator and the vendor API adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and step keys for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification uniform: connection failures, HTTP status mismatches,
//     remote-state mismatches, and local precondition failures are distinct
//     kinds callers can branch on with errors.Is.
//
// Use these helpers when wiring new step logic so operational behaviour stays
// uniform across the pipeline.
package services

// Package flow orchestrates the linkpage publishing workflow: it runs the
// fixed sequence of vendor API steps, threads each step's output into the
// next, and accumulates an auditable RunContext of per-step results.
package flow

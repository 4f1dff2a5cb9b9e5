// Package preflight provides readiness checks for the vendor API and the
// local filesystem paths a run depends on.
//
// These checks run in two contexts:
//   - The "linkflow check" command runs RunAll to display readiness before
//     a user commits to a run.
//   - The run command calls RunAll first so a doomed invocation fails before
//     creating any remote resources.
//
// Checks never mutate remote state; the API probe is a read.
package preflight

// Package results persists pipeline run audit records in SQLite and writes
// the per-run JSON dump.
//
// The Store holds a file lock for the lifetime of the connection so only one
// linkflow process writes the database at a time. Runs and their step results
// are inserted together after the pipeline finishes; the database is an audit
// archive, never an input to pipeline decisions. Schema changes bump the
// version in schema.go; users delete the database to adopt the new schema.
package results

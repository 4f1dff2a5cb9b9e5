package preflight

import (
	"context"

	"linkflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// pdfPath is optional; the PDF check only runs when a path is supplied.
func RunAll(ctx context.Context, cfg *config.Config, pdfPath string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckCredentials(cfg))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Output.Dir))

	if pdfPath != "" {
		results = append(results, CheckPDFFile(pdfPath))
	}

	// Only probe the API when the credentials check can pass at all.
	if cfg.API.Token != "" && cfg.API.Organization > 0 {
		results = append(results, CheckAPI(ctx, cfg))
	}

	return results
}

// AllPassed reports whether every check in the set passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

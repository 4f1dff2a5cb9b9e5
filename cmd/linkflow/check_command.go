package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkflow/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run readiness checks without touching remote state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			checks := preflight.RunAll(cmd.Context(), cfg, pdfPath)
			renderPreflight(out, checks, colorize)

			if !preflight.AllPassed(checks) {
				return fmt.Errorf("one or more checks failed")
			}
			fmt.Fprintln(out, renderStatusLine("Ready", statusOK, "", colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf-path", "", "PDF to include in the checks")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"linkflow/internal/config"
	"linkflow/internal/flow"
	"linkflow/internal/logging"
	"linkflow/internal/preflight"
	"linkflow/internal/results"
	"linkflow/internal/services/storage"
	"linkflow/internal/services/uniqode"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		pdfPath      string
		linkpageName string
		qrName       string
		mediaFolder  int64
		deleteAfter  bool
		outputDir    string
		environment  string
		token        string
		orgID        int64
		skipChecks   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a linkpage and QR code, upload the PDF, and attach it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			applyRunOverrides(cfg, token, orgID, environment, outputDir)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			if !skipChecks {
				checks := preflight.RunAll(cmd.Context(), cfg, pdfPath)
				renderPreflight(out, checks, colorize)
				if !preflight.AllPassed(checks) {
					return fmt.Errorf("preflight checks failed")
				}
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			api, err := uniqode.New(uniqode.Config{
				Token:        cfg.API.Token,
				Organization: cfg.API.Organization,
				BaseURL:      cfg.APIBaseURL(),
				PDFBaseURL:   cfg.PDFBaseURL(),
				Timeout:      time.Duration(cfg.API.RequestTimeout) * time.Second,
			})
			if err != nil {
				return err
			}

			pipeline, err := flow.New(api, storage.NewUploader(nil), uniqode.DownloadOptions{
				Size:                 cfg.QR.Size,
				ErrorCorrectionLevel: cfg.QR.ErrorCorrectionLevel,
				CanvasType:           cfg.QR.CanvasType,
			}, logger)
			if err != nil {
				return err
			}

			req := flow.Request{
				PDFPath:      pdfPath,
				LinkpageName: resolveName(linkpageName, cfg.Run.LinkpageName, "Linkpage"),
				QRName:       resolveName(qrName, cfg.Run.QRName, "QR"),
				MediaFolder:  resolveFolder(mediaFolder, cfg.Run.MediaFolder),
				DeleteAfter:  deleteAfter,
				OutputDir:    cfg.Output.Dir,
			}

			rc, runErr := pipeline.Run(cmd.Context(), cfg.API.Environment, req)
			persistRun(cmd.Context(), out, cfg, rc, colorize)
			renderRunSummary(out, rc, colorize)
			return runErr
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf-path", "", "Path to the PDF to publish (required)")
	cmd.Flags().StringVar(&linkpageName, "linkpage-name", "", "Name for the new linkpage")
	cmd.Flags().StringVar(&qrName, "qr-name", "", "Name for the new QR code")
	cmd.Flags().Int64Var(&mediaFolder, "media-folder", 0, "Media folder id for the upload")
	cmd.Flags().BoolVar(&deleteAfter, "delete-after", false, "Delete the PDF widget after attaching it")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the QR image and run dump")
	cmd.Flags().StringVar(&environment, "env", "", "Target environment (qa or prod)")
	cmd.Flags().StringVar(&token, "token", "", "API token override")
	cmd.Flags().Int64Var(&orgID, "org-id", 0, "Organization id override")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip preflight checks")
	_ = cmd.MarkFlagRequired("pdf-path")

	return cmd
}

func applyRunOverrides(cfg *config.Config, token string, orgID int64, environment, outputDir string) {
	if token = strings.TrimSpace(token); token != "" {
		cfg.API.Token = token
	}
	if orgID > 0 {
		cfg.API.Organization = orgID
	}
	if environment = strings.TrimSpace(environment); environment != "" {
		cfg.API.Environment = strings.ToLower(environment)
	}
	if outputDir = strings.TrimSpace(outputDir); outputDir != "" {
		cfg.Output.Dir = outputDir
	}
}

func resolveName(flagValue, configValue, kind string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(configValue); v != "" {
		return v
	}
	return fmt.Sprintf("%s %s", kind, time.Now().Format("2006-01-02 15:04:05"))
}

func resolveFolder(flagValue, configValue int64) int64 {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

// persistRun saves the audit record; persistence problems are reported but
// never mask the pipeline outcome.
func persistRun(ctx context.Context, out io.Writer, cfg *config.Config, rc *flow.RunContext, colorize bool) {
	if rc == nil {
		return
	}

	if path, err := results.WriteDump(rc, cfg.Output.Dir); err != nil {
		fmt.Fprintln(out, renderStatusLine("Run dump", statusWarn, err.Error(), colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Run dump", statusInfo, path, colorize))
	}

	store, err := results.Open(cfg)
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Run database", statusWarn, err.Error(), colorize))
		return
	}
	defer store.Close()
	if _, err := store.SaveRun(ctx, rc); err != nil {
		fmt.Fprintln(out, renderStatusLine("Run database", statusWarn, err.Error(), colorize))
	}
}

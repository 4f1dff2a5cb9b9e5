package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"linkflow/internal/results"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := results.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, runViews(runs))
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.Environment,
					run.State,
					strconv.FormatInt(run.LinkpageID, 10),
					strconv.FormatInt(run.QRCodeID, 10),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			table := renderTable(
				[]string{"Run", "Env", "State", "Linkpage", "QR", "Started"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run with its step results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := results.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetByRunID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			steps, err := store.Steps(cmd.Context(), run.RunID)
			if err != nil {
				return err
			}

			if jsonOut {
				view := runView(run)
				view.Steps = stepViews(steps)
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Run "+run.RunID, colorize) {
				fmt.Fprintln(out, line)
			}
			stateKind := statusError
			if run.Succeeded() {
				stateKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("State", stateKind, run.State, colorize))
			if run.FailureStep != "" {
				fmt.Fprintln(out, renderStatusLine("Failed at", statusError, run.FailureStep, colorize))
			}
			if run.Failure != "" {
				fmt.Fprintln(out, renderStatusLine("Failure", statusError, run.Failure, colorize))
			}
			if run.LinkpageURL != "" {
				fmt.Fprintln(out, renderStatusLine("Linkpage", statusInfo, run.LinkpageURL, colorize))
			}
			if run.PDFURL != "" {
				fmt.Fprintln(out, renderStatusLine("PDF URL", statusInfo, run.PDFURL, colorize))
			}
			if run.QRImagePath != "" {
				fmt.Fprintln(out, renderStatusLine("QR image", statusInfo, run.QRImagePath, colorize))
			}

			rows := make([][]string, 0, len(steps))
			for _, step := range steps {
				rows = append(rows, []string{
					step.Step,
					strconv.Itoa(step.StatusCode),
					step.RecordedAt.Local().Format("15:04:05"),
				})
			}
			if len(rows) > 0 {
				table := renderTable(
					[]string{"Step", "Status", "Recorded"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(out, table)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

type runJSONView struct {
	RunID        string         `json:"run_id"`
	Environment  string         `json:"environment"`
	Organization int64          `json:"organization"`
	State        string         `json:"state"`
	FailureStep  string         `json:"failure_step,omitempty"`
	Failure      string         `json:"failure,omitempty"`
	LinkpageID   int64          `json:"linkpage_id,omitempty"`
	LinkpageURL  string         `json:"linkpage_url,omitempty"`
	QRCodeID     int64          `json:"qr_code_id,omitempty"`
	QRURL        string         `json:"qr_url,omitempty"`
	QRImagePath  string         `json:"qr_image_path,omitempty"`
	MediaID      int64          `json:"media_id,omitempty"`
	PDFURL       string         `json:"pdf_url,omitempty"`
	LinkID       int64          `json:"link_id,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	Steps        []stepJSONView `json:"steps,omitempty"`
}

type stepJSONView struct {
	Step       string    `json:"step"`
	StatusCode int       `json:"status_code"`
	RecordedAt time.Time `json:"recorded_at"`
}

func runView(run *results.Run) runJSONView {
	view := runJSONView{
		RunID:        run.RunID,
		Environment:  run.Environment,
		Organization: run.Organization,
		State:        run.State,
		FailureStep:  run.FailureStep,
		Failure:      run.Failure,
		LinkpageID:   run.LinkpageID,
		LinkpageURL:  run.LinkpageURL,
		QRCodeID:     run.QRCodeID,
		QRURL:        run.QRURL,
		QRImagePath:  run.QRImagePath,
		MediaID:      run.MediaID,
		PDFURL:       run.PDFURL,
		LinkID:       run.LinkID,
		StartedAt:    run.StartedAt,
	}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		view.FinishedAt = &finished
	}
	return view
}

func runViews(runs []*results.Run) []runJSONView {
	views := make([]runJSONView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView(run))
	}
	return views
}

func stepViews(steps []results.StepRecord) []stepJSONView {
	views := make([]stepJSONView, 0, len(steps))
	for _, step := range steps {
		views = append(views, stepJSONView{
			Step:       step.Step,
			StatusCode: step.StatusCode,
			RecordedAt: step.RecordedAt,
		})
	}
	return views
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/harsanitizer/internal/config"
	"github.com/nao1215/harsanitizer/internal/database"
	"github.com/nao1215/harsanitizer/internal/report"
)

// dateLayout is the format accepted by --delete-before.
const dateLayout = "2006-01-02"

// ErrRunNotFound is returned when a run id is not in the history.
var ErrRunNotFound = errors.New("run not found")

// NewHistoryCmd creates the history command.
// This command shows runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past sanitization runs",
		Long: `History lists the runs recorded by 'harsanitizer sanitize', newest first.

Each run records its source path, status, the digests of the input and the
sanitized output, the number of redacted occurrences and audit findings.
Captured values are never stored.

Give a run id to show the stored summary of that run.

Examples:
  # List the 20 most recent runs
  harsanitizer history

  # List runs of one file
  harsanitizer history --source capture.har --limit 5

  # Show one run as Markdown
  harsanitizer history -m 3f2c9a4e-1b7d-4c55-9e1a-0c8d2b6f7a10

  # Remove runs recorded before a date
  harsanitizer history --delete-before 2026-01-01`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", database.DefaultListLimit, "Maximum number of runs listed")
	cmd.Flags().StringP("source", "s", "", "Only list runs of this source path")
	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Show a run summary as Markdown")
	cmd.Flags().String("delete-before", "",
		"Delete runs started before this date (format: YYYY-MM-DD)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// historyOptions holds the flag values of the history command.
type historyOptions struct {
	dbDir        string
	runID        string
	limit        int
	source       string
	jsonOutput   bool
	markdown     bool
	deleteBefore string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts := historyOptions{dbDir: config.XDGDataDir()}
	flags := cmd.Flags()

	var err error
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return err
	}
	if opts.source, err = flags.GetString("source"); err != nil {
		return err
	}
	if opts.jsonOutput, err = flags.GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if opts.deleteBefore, err = flags.GetString("delete-before"); err != nil {
		return err
	}
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		opts.dbDir = dbDir
	}
	if len(args) == 1 {
		opts.runID = args[0]
	}

	if opts.jsonOutput && opts.markdown {
		return config.ErrConflictingReportFormats
	}

	return runHistory(cmd.Context(), opts, cmd.OutOrStdout())
}

// runHistory opens the database and performs the requested action.
func runHistory(ctx context.Context, opts historyOptions, out io.Writer) error {
	// Validate the date before opening the database.
	var cutoff time.Time
	if opts.deleteBefore != "" {
		var err error
		cutoff, err = time.ParseInLocation(dateLayout, opts.deleteBefore, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	db, err := database.Open(opts.dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	switch {
	case !cutoff.IsZero():
		n, err := db.DeleteRunsBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to delete runs: %w", err)
		}
		fmt.Fprintf(out, "Deleted %d run(s) started before %s\n", n, opts.deleteBefore)
		return nil
	case opts.runID != "":
		return showRun(ctx, db, opts, out)
	default:
		return listRuns(ctx, db, opts, out)
	}
}

// showRun prints the stored summary of one run.
func showRun(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	run, err := db.GetRun(ctx, opts.runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, opts.runID)
	}

	if opts.jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(run)
	}

	if run.Summary == nil {
		return writeRunList(out, []database.RunRecord{*run}, "")
	}

	var w report.Writer = report.NewSimpleWriter(out, report.WithVerbose(true))
	if opts.markdown {
		w = report.NewMarkdownWriter(out)
	}
	_, err = w.WriteSummary(run.Summary)
	return err
}

// listRuns prints the most recent runs.
func listRuns(ctx context.Context, db *database.HistoryDB, opts historyOptions, out io.Writer) error {
	runs, err := db.ListRuns(ctx, database.ListOptions{Limit: opts.limit, Source: opts.source})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if opts.jsonOutput {
		if runs == nil {
			runs = []database.RunRecord{}
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)
	}

	if len(runs) == 0 {
		if opts.source != "" {
			fmt.Fprintf(out, "No runs found for %s\n", opts.source)
		} else {
			fmt.Fprintln(out, "No runs found")
		}
		fmt.Fprintln(out, "\nUse 'harsanitizer sanitize' to sanitize a HAR file.")
		return nil
	}

	return writeRunList(out, runs, "\nUse 'harsanitizer history <run-id>' to show the summary of a run.\n")
}

// writeRunList prints runs as a fixed-width table followed by footer.
func writeRunList(out io.Writer, runs []database.RunRecord, footer string) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-36s  %-19s  %-10s  %9s  %8s  %s\n",
		"Run ID", "Started", "Status", "Redacted", "Findings", "Source")
	sb.WriteString(strings.Repeat("-", 100) + "\n")

	for _, run := range runs {
		status := run.Status
		if run.FailedStage != "" {
			status += " (" + run.FailedStage + ")"
		}
		fmt.Fprintf(&sb, "%-36s  %-19s  %-10s  %9d  %8d  %s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			status,
			run.RedactedOccurrences,
			run.Findings,
			run.Source,
		)
	}
	sb.WriteString(footer)

	_, err := io.WriteString(out, sb.String())
	return err
}

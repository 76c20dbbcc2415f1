package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

type batchFlags struct {
	dir        string
	out        string
	failFast   bool
	strict     bool
	skipHidden bool
	journal    string
}

var batch batchFlags

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a folder of card images once and write the contacts",
	Long: "Scans the top level of a folder for .jpg, .jpeg, .png and .heic files, extracts contact details " +
		"from each and writes them to contacts.csv (or --out). A model failure skips that card unless --fail-fast is set.",
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	addBatchFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&batch.dir, "dir", "d", "", "folder containing business card images (prompted when empty)")
	cmd.Flags().StringVarP(&batch.out, "out", "o", "", "output file; .xlsx writes a workbook (default contacts.csv)")
	cmd.Flags().BoolVar(&batch.failFast, "fail-fast", false, "abort the batch on the first model failure and write nothing")
	cmd.Flags().BoolVar(&batch.strict, "strict", false, "request JSON replies and validate them before writing")
	cmd.Flags().BoolVar(&batch.skipHidden, "skip-hidden", false, "ignore files whose name starts with a dot")
	cmd.Flags().StringVar(&batch.journal, "journal", "", "SQLite file or Postgres DSN used to resume interrupted batches")
}

// applyBatchFlags lets explicit flags override the loaded config.
func applyBatchFlags(cmd *cobra.Command, cfg *common.Config) {
	if batch.out != "" {
		cfg.Input.Output = batch.out
	}
	if cmd.Flags().Changed("strict") {
		cfg.LLM.Strict = batch.strict
	}
	if batch.journal != "" {
		cfg.Journal.DSN = batch.journal
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &usageError{err: errors.New("unexpected arguments; use --dir")}
	}
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	applyBatchFlags(cmd, a.cfg)

	ctx, stop := interruptible(cmd.Context())
	defer stop()
	ctx = common.WithRunID(ctx, uuid.New().String())

	apiKey, err := a.resolveAPIKey(ctx)
	if err != nil {
		return err
	}
	dir, err := a.resolveDir(ctx, batch.dir)
	if err != nil {
		return err
	}

	runner, closeJournal, err := a.buildRunner(ctx, apiKey, pipeline.Options{
		FailFast:   batch.failFast,
		SkipHidden: batch.skipHidden,
	})
	if err != nil {
		return err
	}
	defer closeJournal()

	stats, err := runAndExport(ctx, runner, dir, a.cfg.Input.Output, export.NewExporter(a.stdout, a.logger), a.logger)
	a.printSummary(stats)
	return err
}

// batchRunner is the part of *pipeline.Runner the run command drives.
type batchRunner interface {
	Run(ctx context.Context, folder string) ([]pipeline.Result, pipeline.Stats, error)
}

// runAndExport runs the batch and writes its results. An interrupted batch
// still writes what finished; any other failure writes nothing.
func runAndExport(ctx context.Context, r batchRunner, dir, out string, exp *export.Exporter, logger *slog.Logger) (pipeline.Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results, stats, runErr := r.Run(ctx, dir)
	switch {
	case runErr == nil:
	case errors.Is(runErr, common.ErrInterrupted):
		logger.Warn("run.interrupted", "saved", len(results))
	default:
		logger.Error("run.failed", "error", runErr, "discarded", len(results))
		return stats, runErr
	}

	if err := exp.Export(out, results); err != nil {
		return stats, common.WrapError(err, "export")
	}
	return stats, runErr
}

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

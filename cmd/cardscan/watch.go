package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

var (
	watchDebounce time.Duration
	watchNoScan   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process card images as they appear in a folder",
	Long: "Processes the images already in the folder (unless --no-initial-scan), then every new image " +
		"added to its top level. Press Ctrl+C to stop; the collected contacts are written on exit.",
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addBatchFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before a new file is processed (default from config)")
	watchCmd.Flags().BoolVar(&watchNoScan, "no-initial-scan", false, "only process files added after start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	applyBatchFlags(cmd, a.cfg)
	if watchDebounce > 0 {
		a.cfg.Watch.Debounce = watchDebounce
	}
	if watchNoScan {
		a.cfg.Watch.InitialScan = false
	}

	ctx, stop := interruptible(cmd.Context())
	defer stop()

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

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        dir,
		InitialScan: a.cfg.Watch.InitialScan,
		SkipHidden:  batch.skipHidden,
		Debounce:    a.cfg.Watch.Debounce,
	}, a.logger)
	if err != nil {
		return common.WrapError(err, "start watcher")
	}
	go func() {
		for err := range errs {
			a.logger.Warn("watch.error", "error", err)
		}
	}()
	fmt.Fprintf(a.stdout, "Watching %s (Ctrl+C to stop)\n", dir)

	results, stats, watchErr := runner.Watch(ctx, events)
	a.printSummary(stats)
	if err := export.NewExporter(a.stdout, a.logger).Export(a.cfg.Input.Output, results); err != nil {
		return common.WrapError(err, "export")
	}
	return watchErr
}

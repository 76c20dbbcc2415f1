package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/ingest"
)

type Options struct {
	FailFast   bool // first model failure aborts the batch
	SkipHidden bool
}

// Runner drives the Processor over a folder or a stream of paths.
type Runner struct {
	proc    *Processor
	opts    Options
	console io.Writer
	logger  *slog.Logger
}

func NewRunner(proc *Processor, opts Options, console io.Writer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}
	return &Runner{proc: proc, opts: opts, console: console, logger: logger}
}

// Run processes the top-level card images of folder in listing order and
// returns the successful results in that order. On cancellation the results
// gathered so far are returned with an error wrapping common.ErrInterrupted.
func (r *Runner) Run(ctx context.Context, folder string) ([]Result, Stats, error) {
	runID := common.RunIDFromContext(ctx)
	files, dirStats, err := ingest.ScanDirectory(folder, ingest.ScanOptions{SkipHidden: r.opts.SkipHidden, Logger: r.logger})
	if err != nil {
		return nil, Stats{}, err
	}
	stats := Stats{Scanned: int(dirStats.Scanned), Matched: int(dirStats.Matched)}
	r.logger.Info("pipeline.run.start", "run_id", runID, "folder", folder, "matched", stats.Matched, "fail_fast", r.opts.FailFast)

	var results []Result
	for _, f := range files {
		res, err := r.processOne(ctx, f.Path, r.hash(f.Path), &stats)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Warn("pipeline.run.interrupted", "run_id", runID, "done", len(results))
				return results, stats, fmt.Errorf("%w: %w", common.ErrInterrupted, ctx.Err())
			}
			if r.opts.FailFast {
				r.logger.Error("pipeline.run.aborted", "run_id", runID, "path", f.Path, "error", err)
				return results, stats, err
			}
			continue
		}
		if res.Status == constants.StatusOK {
			results = append(results, res)
		}
	}

	r.logger.Info("pipeline.run.done",
		"run_id", runID,
		"succeeded", stats.Succeeded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"resumed", stats.Resumed,
	)
	return results, stats, nil
}

// Watch processes paths from events until the channel closes or ctx is
// cancelled. Files whose contents were already handled in this session are
// ignored, as are the JPEGs written when converting HEIC cards. Cancellation
// is the normal way to stop and is not an error.
func (r *Runner) Watch(ctx context.Context, events <-chan string) ([]Result, Stats, error) {
	seen := map[string]struct{}{}
	converted := map[string]struct{}{}
	var (
		results []Result
		stats   Stats
	)
	for {
		select {
		case <-ctx.Done():
			return results, stats, nil
		case path, ok := <-events:
			if !ok {
				return results, stats, nil
			}
			if _, ours := converted[filepath.Clean(path)]; ours {
				r.logger.Debug("pipeline.watch.converted_output", "path", path)
				continue
			}
			hash := r.hash(path)
			if hash != "" {
				if _, dup := seen[hash]; dup {
					r.logger.Debug("pipeline.watch.duplicate", "path", path)
					continue
				}
				seen[hash] = struct{}{}
			}
			stats.Scanned++
			stats.Matched++

			res, err := r.processOne(ctx, path, hash, &stats)
			if res.Converted != "" {
				converted[filepath.Clean(res.Converted)] = struct{}{}
			}
			if err != nil {
				if ctx.Err() != nil {
					return results, stats, nil
				}
				if r.opts.FailFast {
					return results, stats, err
				}
				continue
			}
			if res.Status == constants.StatusOK {
				results = append(results, res)
			}
		}
	}
}

// hash returns "" when the file cannot be read; OCR then reports the failure.
func (r *Runner) hash(path string) string {
	h, err := ingest.HashFile(path)
	if err != nil {
		r.logger.Warn("pipeline.hash.failed", "path", path, "error", err)
		return ""
	}
	return h
}

func (r *Runner) processOne(ctx context.Context, path, hash string, stats *Stats) (Result, error) {
	res, err := r.proc.ProcessFile(ctx, path, hash)
	switch {
	case err != nil && errors.Is(err, ErrModel):
		stats.Failed++
	case err != nil:
	case res.Status == constants.StatusOK:
		stats.Succeeded++
		if res.Resumed {
			stats.Resumed++
		}
	default:
		stats.Skipped++
	}
	return res, err
}

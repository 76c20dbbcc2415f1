package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/journal"
)

// ErrModel marks a failed model call or rejected reply for one image.
var ErrModel = errors.New("pipeline: detail parsing failed")

// Processor coordinates OCR then model parsing for one image and keeps the
// journal up to date.
type Processor struct {
	logger  *slog.Logger
	console io.Writer
	ocr     *OCRStage
	parse   *ParseStage
	journal journal.Journal
}

func NewProcessor(logger *slog.Logger, console io.Writer, ocr *OCRStage, parse *ParseStage, j journal.Journal) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}
	if j == nil {
		j = journal.NewNopJournal()
	}
	return &Processor{logger: logger, console: console, ocr: ocr, parse: parse, journal: j}
}

// ProcessFile runs one image through the pipeline. A missing text is not an
// error: the result carries StatusNoText or StatusOCRFailed. A model failure
// is returned wrapped in ErrModel together with a StatusLLMFailed result.
func (p *Processor) ProcessFile(ctx context.Context, path, hash string) (Result, error) {
	start := time.Now()
	res := Result{SourcePath: path, ContentHash: hash}
	name := filepath.Base(path)
	fmt.Fprintf(p.console, "Processing %s\n", path)

	if hash != "" {
		entry, ok, err := p.journal.Get(ctx, hash)
		if err != nil {
			p.logger.Warn("pipeline.journal.get_failed", "path", path, "error", err)
		} else if ok && entry.Status == constants.StatusOK {
			res.Status = constants.StatusOK
			res.Reply = entry.Reply
			res.Resumed = true
			p.logger.Info("pipeline.file.resumed", "path", path, "hash", hash, "recorded_at", entry.UpdatedAt)
			fmt.Fprintf(p.console, "Parsed Details for %s:\n%s\n", name, res.Reply)
			return res, nil
		}
	}

	// 1) OCR stage
	out, err := p.ocr.Run(ctx, path)
	res.Converted = out.Converted
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if out.Status != constants.StatusOK {
		res.Status = out.Status
		fmt.Fprintf(p.console, "No text could be extracted from %s\n", path)
		p.record(ctx, res, errString(err))
		return res, nil
	}

	// 2) parse stage
	reply, contact, err := p.parse.Run(ctx, out.Text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		res.Status = constants.StatusLLMFailed
		p.logger.Error("pipeline.parse.failed", "path", path, "error", err)
		p.record(ctx, res, err.Error())
		return res, fmt.Errorf("%w: %s: %w", ErrModel, name, err)
	}

	res.Status = constants.StatusOK
	res.Reply = reply
	res.Contact = contact
	fmt.Fprintf(p.console, "Parsed Details for %s:\n%s\n", name, reply)
	p.record(ctx, res, "")

	p.logger.Info("pipeline.file.ok",
		"path", path,
		"strict", contact != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) record(ctx context.Context, res Result, msg string) {
	if res.ContentHash == "" {
		return
	}
	err := p.journal.Record(ctx, journal.Entry{
		ContentHash: res.ContentHash,
		SourcePath:  res.SourcePath,
		Status:      res.Status,
		Reply:       res.Reply,
		Error:       msg,
	})
	if err != nil {
		p.logger.Warn("pipeline.journal.record_failed", "path", res.SourcePath, "status", res.Status, "error", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

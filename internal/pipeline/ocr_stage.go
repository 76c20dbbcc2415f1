package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
)

// TextExtractor is the OCR dependency of the pipeline.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

type OCRStage struct {
	TextExtractor TextExtractor
	Console       io.Writer
	Logger        *slog.Logger
}

func NewOCRStage(tx TextExtractor, console io.Writer, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	if console == nil {
		console = io.Discard
	}
	return &OCRStage{TextExtractor: tx, Console: console, Logger: logger}
}

// OCROutput is what the OCR step hands to the parse step.
type OCROutput struct {
	Text   string
	Status constants.ResultStatus
	// Converted is the JPEG written beside a HEIC source, "" otherwise.
	Converted string
}

// Run returns the recognized text, or "" with a status explaining why there is none.
func (s *OCRStage) Run(ctx context.Context, path string) (OCROutput, error) {
	if constants.IsHEICExt(filepath.Ext(path)) {
		fmt.Fprintf(s.Console, "Converting HEIC image: %s\n", path)
	}

	res, err := s.TextExtractor.Extract(ctx, path)
	if err != nil {
		out := OCROutput{Status: constants.StatusOCRFailed, Converted: convertedPath(res)}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		fmt.Fprintf(s.Console, "Error reading the image: %v\n", err)
		s.Logger.Warn("pipeline.ocr.failed", "path", path, "error", err)
		return out, err
	}
	out := OCROutput{Converted: convertedPath(res)}

	// Blank cards come back as whitespace or a lone form feed.
	text := ocr.CleanText(res.Text)
	if text == "" {
		s.Logger.Info("pipeline.ocr.no_text", "path", path, "method", res.Method)
		out.Status = constants.StatusNoText
		return out, nil
	}

	s.Logger.Debug("pipeline.ocr.ok",
		"path", path,
		"raster", res.RasterPath,
		"converted", res.Converted,
		"method", res.Method,
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	out.Text = text
	out.Status = constants.StatusOK
	return out, nil
}

func convertedPath(res ocr.ExtractionResult) string {
	if res.Converted && res.RasterPath != "" {
		return res.RasterPath
	}
	return ""
}

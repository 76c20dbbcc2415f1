package ocr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

var (
	// ErrNotExist means the image path does not exist.
	ErrNotExist = errors.New("ocr: image not found")
	// ErrUnsupported means the extension is neither a raster nor a container format.
	ErrUnsupported = errors.New("ocr: unsupported image format")
	// ErrConvert means the HEIC container could not be converted to JPEG.
	ErrConvert = errors.New("ocr: heic conversion failed")
	// ErrDecode means the raster image could not be decoded.
	ErrDecode = errors.New("ocr: image decode failed")
	// ErrOCR means the OCR engine failed on a decodable image.
	ErrOCR = errors.New("ocr: text recognition failed")
)

type Config struct {
	Engine    string // "tesseract" (default) | "gosseract"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng"
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text

	HeicConverter string // "magick" | "heif-convert" | "sips"
}

type ExtractionResult struct {
	Text       string
	SourcePath string // the path that was passed in
	RasterPath string // the path OCR actually ran on (differs for HEIC)
	Converted  bool
	Method     string // engine name
	Duration   time.Duration
	Confidence float32
}

// Engine turns a raster image into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (string, error)
}

type Extractor struct {
	cfg    Config
	runner Runner
	engine Engine
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRunner swaps the command runner used for tesseract and HEIC converters.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithEngine swaps the OCR engine.
func WithEngine(eng Engine) Option {
	return func(e *Extractor) { e.engine = eng }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Engine == "" {
		cfg.Engine = "tesseract"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.HeicConverter == "" {
		cfg.HeicConverter = "magick"
	}

	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		switch cfg.Engine {
		case "tesseract":
			e.engine = &tesseractEngine{cfg: cfg, runner: e.runner}
		case "gosseract":
			eng, err := newGosseractEngine(cfg)
			if err != nil {
				return nil, err
			}
			e.engine = eng
		default:
			return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
		}
	}
	return e, nil
}

// Extract converts HEIC containers when needed, checks that the raster image
// decodes, then runs OCR. Failures are wrapped with ErrNotExist, ErrConvert,
// ErrDecode or ErrOCR so callers can tell the stages apart.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	res := ExtractionResult{SourcePath: path, Method: e.engine.Name()}
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext, "engine", res.Method)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return res, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	raster := path
	switch constants.MapExtToFormat(ext) {
	case constants.CONTAINER:
		e.logger.Info("ocr.heic.convert", "path", path, "converter", e.cfg.HeicConverter)
		out, err := e.NormalizeHEIC(ctx, path)
		if err != nil {
			e.logger.Error("ocr.heic.convert_failed", "path", path, "error", err)
			return res, err
		}
		raster = out
		res.Converted = true
	case constants.RASTER:
	default:
		e.logger.Error("ocr.extract.unsupported", "extension", ext)
		return res, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	res.RasterPath = raster

	if err := checkDecodable(raster); err != nil {
		e.logger.Error("ocr.decode.failed", "path", raster, "error", err)
		return res, err
	}

	txt, err := e.engine.Recognize(ctx, raster)
	if err != nil {
		e.logger.Error("ocr.recognize.failed", "path", raster, "engine", res.Method, "error", err)
		return res, fmt.Errorf("%w: %w", ErrOCR, err)
	}

	res.Text = txt
	res.Confidence = heuristicConfidence(txt)
	res.Duration = time.Since(start)
	e.logger.Debug("ocr.extract.ok",
		"path", path,
		"bytes", len(txt),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

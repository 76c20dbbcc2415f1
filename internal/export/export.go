package export

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

// Exporter writes results to a CSV or XLSX file chosen by extension and
// reports the outcome on the console.
type Exporter struct {
	console io.Writer
	logger  *slog.Logger
}

func NewExporter(console io.Writer, logger *slog.Logger) *Exporter {
	if console == nil {
		console = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{console: console, logger: logger}
}

// Export writes results to path. An empty result set creates no file.
func (e *Exporter) Export(path string, results []pipeline.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(e.console, "No contacts to save.")
		e.logger.Info("export.skip.empty", "path", path)
		return nil
	}

	start := time.Now()
	f, err := os.Create(path)
	if err != nil {
		e.logger.Error("export.open.failed", "path", path, "error", err)
		return fmt.Errorf("create %s: %w", path, err)
	}

	var rows int
	format := "csv"
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		format = "xlsx"
		rows, err = WriteXLSX(f, results, e.logger)
	} else {
		rows, err = WriteCSV(f, results, e.logger)
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close %s: %w", path, cerr)
	}
	if err != nil {
		e.logger.Error("export.write.failed", "path", path, "format", format, "error", err)
		return err
	}

	e.logger.Info("export.ok",
		"path", path,
		"format", format,
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	fmt.Fprintf(e.console, "Contacts saved to %s\n", path)
	return nil
}

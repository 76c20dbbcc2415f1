package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

// WriteCSV writes the header and one row per reply that yields at least one field.
// It returns the number of data rows written.
func WriteCSV(w io.Writer, results []pipeline.Result, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cw := csv.NewWriter(w)
	cw.FieldsPerRecord = -1 // rows may be ragged

	if err := cw.Write(constants.Header); err != nil {
		return 0, fmt.Errorf("csv header: %w", err)
	}

	n := 0
	for _, r := range results {
		row := rowFor(r)
		if len(row) == 0 {
			logger.Debug("export.row.empty", "source", r.SourcePath)
			continue
		}
		warnRagged(logger, r.SourcePath, row)
		if err := cw.Write(row); err != nil {
			return n, fmt.Errorf("csv row %d: %w", n+1, err)
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("csv flush: %w", err)
	}
	return n, nil
}

func warnRagged(logger *slog.Logger, source string, row []string) {
	if len(row) != len(constants.Header) {
		logger.Warn("export.row.ragged", "source", source, "fields", len(row), "want", len(constants.Header))
	}
}

package export

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

// SheetName is the worksheet holding the contacts.
const SheetName = "Contacts"

// WriteXLSX writes the same rows as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, results []pipeline.Result, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := append([]string(nil), constants.Header...)
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("xlsx header: %w", err)
	}

	row := 2
	for _, r := range results {
		fields := rowFor(r)
		if len(fields) == 0 {
			continue
		}
		warnRagged(logger, r.SourcePath, fields)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, cell, &fields); err != nil {
			return row - 2, fmt.Errorf("xlsx row %d: %w", row-1, err)
		}
		row++
	}

	_ = f.SetColWidth(SheetName, "A", "A", 24) // name
	_ = f.SetColWidth(SheetName, "B", "B", 32) // email
	_ = f.SetColWidth(SheetName, "C", "C", 28) // company
	_ = f.SetColWidth(SheetName, "D", "D", 20) // contact

	if err := f.Write(w); err != nil {
		return row - 2, fmt.Errorf("xlsx write: %w", err)
	}
	return row - 2, nil
}

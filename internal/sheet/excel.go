// Package sheet provides the spreadsheet sinks extraction rows are written
// to: a local .xlsx workbook or a Google Sheets spreadsheet.
package sheet

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

const (
	// DataSheet is the worksheet extraction rows land on in a fresh workbook.
	// An existing workbook keeps whatever its first sheet is named.
	DataSheet = "Sheet1"
	// ErrorSheet collects per-file failure rows.
	ErrorSheet = "오류_로그"
)

var errorHeader = []string{"파일 이름", "오류 내용", "처리 시간"}

// ExcelWriter appends rows to a local workbook. The workbook is saved after
// every append so partial batches survive a crash.
type ExcelWriter struct {
	path      string
	f         *excelize.File
	dataSheet string
}

// NewExcelWriter opens the workbook at path, creating it if missing. The
// error sheet is created up front with its header.
func NewExcelWriter(path string) (*ExcelWriter, error) {
	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("opening workbook: %w", err)
		}
	} else {
		f = excelize.NewFile()
	}

	// Data rows go on the workbook's first sheet whatever it is named.
	w := &ExcelWriter{path: path, f: f, dataSheet: f.GetSheetName(0)}
	if w.dataSheet == "" {
		w.dataSheet = DataSheet
	}
	if err := w.ensureErrorSheet(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *ExcelWriter) ensureErrorSheet() error {
	if idx, _ := w.f.GetSheetIndex(ErrorSheet); idx != -1 {
		return nil
	}
	if _, err := w.f.NewSheet(ErrorSheet); err != nil {
		return fmt.Errorf("creating error sheet: %w", err)
	}
	return w.writeRow(ErrorSheet, 1, errorHeader)
}

// EnsureHeader writes the header to row 1 of the data sheet when the sheet
// is still empty. The workbook is local, so ctx is unused.
func (w *ExcelWriter) EnsureHeader(_ context.Context, header []string) error {
	rows, err := w.f.GetRows(w.dataSheet)
	if err != nil {
		return fmt.Errorf("reading data sheet: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	if err := w.writeRow(w.dataSheet, 1, header); err != nil {
		return err
	}
	return w.save()
}

// AppendRows adds rows after the current last row of the data sheet.
func (w *ExcelWriter) AppendRows(_ context.Context, rows [][]string) error {
	existing, err := w.f.GetRows(w.dataSheet)
	if err != nil {
		return fmt.Errorf("reading data sheet: %w", err)
	}
	next := len(existing) + 1
	for i, row := range rows {
		if err := w.writeRow(w.dataSheet, next+i, row); err != nil {
			return err
		}
	}
	return w.save()
}

// AppendErrorRow records a per-file failure on the error sheet.
func (w *ExcelWriter) AppendErrorRow(_ context.Context, filename, message, timestamp string) error {
	existing, err := w.f.GetRows(ErrorSheet)
	if err != nil {
		return fmt.Errorf("reading error sheet: %w", err)
	}
	if err := w.writeRow(ErrorSheet, len(existing)+1, []string{filename, message, timestamp}); err != nil {
		return err
	}
	return w.save()
}

// Close saves and releases the workbook.
func (w *ExcelWriter) Close() error {
	if err := w.save(); err != nil {
		_ = w.f.Close()
		return err
	}
	return w.f.Close()
}

func (w *ExcelWriter) writeRow(sheetName string, rowNumber int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNumber)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if err := w.f.SetCellValue(sheetName, cell, value); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}
	return nil
}

func (w *ExcelWriter) save() error {
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

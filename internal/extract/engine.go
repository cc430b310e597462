package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"taxdocs/internal/domain"
	"taxdocs/internal/fileorder"
	"taxdocs/internal/port"
)

// Engine drives the sequential per-file extraction loop over a folder of
// masked PDFs. Sheet writes happen per file so partial progress survives a
// crash mid-batch.
type Engine struct {
	folder     string
	model      port.VisionModel
	sheet      port.SheetWriter
	retries    int
	retryDelay time.Duration

	out   io.Writer
	sleep func(time.Duration)
}

func NewEngine(folder string, model port.VisionModel, sheet port.SheetWriter, retries int, retryDelay time.Duration) *Engine {
	if retries < 1 {
		retries = 1
	}
	return &Engine{
		folder:     folder,
		model:      model,
		sheet:      sheet,
		retries:    retries,
		retryDelay: retryDelay,
		out:        os.Stdout,
		sleep:      time.Sleep,
	}
}

// logf writes a timestamped progress line. The supervisor on the other end
// of the pipe reads these to estimate job progress, so wording is part of
// the contract.
func (e *Engine) logf(format string, args ...any) {
	fmt.Fprintf(e.out, "[%s] %s\n", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
}

// Run processes every PDF in the folder in batch order. Per-file failures
// are recorded on the error sheet and do not stop the run; Run returns an
// error only for batch-level failures such as a missing folder or an
// unreachable sheet.
func (e *Engine) Run(ctx context.Context) error {
	e.logf("pdf batch processing started: %s", e.folder)

	if err := e.sheet.EnsureHeader(ctx, Header()); err != nil {
		return fmt.Errorf("preparing sheet header: %w", err)
	}
	e.logf("sheet connection established")

	files, err := e.listPDFs()
	if err != nil {
		return err
	}
	e.logf("found %d pdf files to process", len(files))

	prompt := Prompt()
	var totalRows, succeeded, failed int

	for i, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := e.processFile(ctx, name, i+1, len(files), prompt)
		if err != nil {
			e.logf("[%d/%d] '%s' failed: %v", i+1, len(files), name, err)
			e.recordError(ctx, name, err.Error())
			failed++
			continue
		}
		totalRows += rows
		succeeded++
		e.logf("[%d/%d] '%s' file fully processed (%d rows)", i+1, len(files), name, rows)
	}

	e.logf("all processing complete: %d succeeded, %d failed, %d rows uploaded", succeeded, failed, totalRows)
	if failed > 0 {
		e.logf("see the 오류_로그 sheet for failure details")
	}
	return nil
}

func (e *Engine) listPDFs() ([]string, error) {
	entries, err := os.ReadDir(e.folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, e.folder)
		}
		return nil, fmt.Errorf("reading folder: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoPDFFiles, e.folder)
	}
	fileorder.Sort(files)
	return files, nil
}

// processFile extracts one PDF and appends its rows, returning the row
// count.
func (e *Engine) processFile(ctx context.Context, name string, number, total int, prompt string) (int, error) {
	e.logf("[%d/%d] '%s' ocr analysis started", number, total, name)

	data, err := os.ReadFile(filepath.Join(e.folder, name))
	if err != nil {
		return 0, fmt.Errorf("reading pdf: %w", err)
	}
	e.logf("[%d/%d] '%s' loaded (%.2f MB)", number, total, name, float64(len(data))/1024/1024)

	records, err := e.generateWithRetry(ctx, data, prompt, name, number, total)
	if err != nil {
		return 0, err
	}

	records = validateRecords(records)
	if len(records) == 0 {
		return 0, fmt.Errorf("no valid records extracted")
	}
	e.logf("[%d/%d] '%s' extraction succeeded: %d records", number, total, name, len(records))

	rows := buildRows(buildRecords(name, records))
	e.logf("[%d/%d] '%s' sheet upload: %d rows", number, total, name, len(rows))
	if err := e.sheet.AppendRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("appending rows: %w", err)
	}
	return len(rows), nil
}

func (e *Engine) generateWithRetry(ctx context.Context, pdf []byte, prompt, name string, number, total int) ([]map[string]any, error) {
	var lastErr error
	for attempt := 1; attempt <= e.retries; attempt++ {
		if attempt > 1 {
			e.logf("[%d/%d] '%s' retrying, attempt %d/%d", number, total, name, attempt, e.retries)
			e.sleep(e.retryDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.logf("[%d/%d] '%s' analyzing with vision model", number, total, name)
		text, err := e.model.GenerateFromPDF(ctx, pdf, prompt)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrExternalService, err)
			continue
		}
		e.logf("[%d/%d] '%s' response received (%d chars)", number, total, name, len(text))

		records := ParseModelOutput(text)
		if records == nil {
			lastErr = domain.ErrMalformedOutput
			continue
		}
		return records, nil
	}
	return nil, lastErr
}

func (e *Engine) recordError(ctx context.Context, name, message string) {
	if err := e.sheet.AppendErrorRow(ctx, name, message, time.Now().Format("2006-01-02 15:04:05")); err != nil {
		e.logf("error sheet write failed for '%s': %v", name, err)
	}
}

// validateRecords fills missing schema fields with the sentinel so every
// row has a value in every column.
func validateRecords(records []map[string]any) []map[string]any {
	valid := records[:0]
	for _, r := range records {
		if r == nil {
			continue
		}
		for _, field := range Fields {
			if _, ok := r[field]; !ok {
				r[field] = MissingValue
			}
		}
		valid = append(valid, r)
	}
	return valid
}

// buildRecords normalizes raw model records into ExtractedRecords. Row
// numbers restart at 1 per file; the filename drops the extension; newlines
// are flattened and currency fields cleaned here so the records are
// sheet-ready.
func buildRecords(filename string, raw []map[string]any) []domain.ExtractedRecord {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	records := make([]domain.ExtractedRecord, 0, len(raw))
	for i, r := range raw {
		fields := make(map[string]string, len(Fields))
		for _, field := range Fields {
			value := fmt.Sprintf("%v", r[field])
			value = strings.ReplaceAll(value, "\n", " ")
			value = strings.ReplaceAll(value, "\r", " ")
			if CurrencyFields[field] {
				value = CleanCurrency(value)
			}
			fields[field] = value
		}
		records = append(records, domain.ExtractedRecord{
			FileName:  stem,
			RowNumber: i + 1,
			Fields:    fields,
		})
	}
	return records
}

// buildRows flattens records into sheet rows in Header() column order.
func buildRows(records []domain.ExtractedRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, 0, len(Fields)+2)
		row = append(row, record.FileName, fmt.Sprintf("%d", record.RowNumber))
		for _, field := range Fields {
			row = append(row, record.Fields[field])
		}
		rows = append(rows, row)
	}
	return rows
}

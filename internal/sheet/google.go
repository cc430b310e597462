package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"taxdocs/internal/config"
)

// GoogleWriter appends rows to a Google Sheets spreadsheet through the
// Sheets API. Appends go through the values.append endpoint so concurrent
// readers of the sheet never see half-written ranges.
type GoogleWriter struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewGoogleWriter connects to the configured spreadsheet using a service
// account credentials file.
func NewGoogleWriter(ctx context.Context, cfg *config.SheetsConfig) (*GoogleWriter, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet id not configured")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	w := &GoogleWriter{svc: svc, spreadsheetID: cfg.SpreadsheetID}
	if err := w.ensureErrorSheet(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *GoogleWriter) ensureErrorSheet(ctx context.Context) error {
	meta, err := w.svc.Spreadsheets.Get(w.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == ErrorSheet {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: ErrorSheet}}},
		},
	}
	if _, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("creating error sheet: %w", err)
	}
	return w.append(ctx, ErrorSheet, [][]string{errorHeader})
}

// EnsureHeader writes the header when row 1 of the data sheet is empty.
func (w *GoogleWriter) EnsureHeader(ctx context.Context, header []string) error {
	resp, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, DataSheet+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading header row: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) > 0 {
		return nil
	}
	return w.append(ctx, DataSheet, [][]string{header})
}

// AppendRows adds extraction rows to the data sheet.
func (w *GoogleWriter) AppendRows(ctx context.Context, rows [][]string) error {
	return w.append(ctx, DataSheet, rows)
}

// AppendErrorRow records a per-file failure on the error sheet.
func (w *GoogleWriter) AppendErrorRow(ctx context.Context, filename, message, timestamp string) error {
	return w.append(ctx, ErrorSheet, [][]string{{filename, message, timestamp}})
}

// Close is a no-op; the Sheets API is stateless.
func (w *GoogleWriter) Close() error { return nil }

func (w *GoogleWriter) append(ctx context.Context, sheetName string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}

	vr := &sheets.ValueRange{Values: values}
	_, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID, sheetName+"!A1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending to %s: %w", sheetName, err)
	}
	return nil
}

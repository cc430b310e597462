package port

import "context"

// SheetWriter appends extraction rows to a spreadsheet. Implementations
// write either a local workbook or a remote Google Sheets spreadsheet.
type SheetWriter interface {
	// EnsureHeader writes the header row if the main sheet is still empty.
	EnsureHeader(ctx context.Context, header []string) error
	// AppendRows appends rows to the main sheet in order.
	AppendRows(ctx context.Context, rows [][]string) error
	// AppendErrorRow records a per-file failure on the error-log sheet.
	AppendErrorRow(ctx context.Context, filename, message, timestamp string) error
	// Close flushes any buffered state.
	Close() error
}

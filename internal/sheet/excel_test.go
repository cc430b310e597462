package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openRows(t *testing.T, path, sheetName string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func TestExcelWriterCreatesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.EnsureHeader(context.Background(), []string{"파일이름", "행번호", "성명"}))
	require.NoError(t, w.AppendRows(context.Background(), [][]string{
		{"1", "1", ""},
		{"1", "2", ""},
	}))
	require.NoError(t, w.Close())

	rows := openRows(t, path, DataSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"파일이름", "행번호", "성명"}, rows[0])
	assert.Equal(t, "2", rows[2][1])

	errRows := openRows(t, path, ErrorSheet)
	require.Len(t, errRows, 1)
	assert.Equal(t, errorHeader, errRows[0])
}

func TestExcelWriterAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.EnsureHeader(context.Background(), []string{"a", "b"}))
	require.NoError(t, w.AppendRows(context.Background(), [][]string{{"1", "x"}}))
	require.NoError(t, w.Close())

	// reopen and append more; header must not be rewritten
	w, err = NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.EnsureHeader(context.Background(), []string{"a", "b"}))
	require.NoError(t, w.AppendRows(context.Background(), [][]string{{"2", "y"}}))
	require.NoError(t, w.Close())

	rows := openRows(t, path, DataSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, "2", rows[2][0])
}

func TestExcelWriterRenamedFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	// A workbook whose first sheet is not named Sheet1.
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "데이터"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	w, err := NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.EnsureHeader(context.Background(), []string{"a", "b"}))
	require.NoError(t, w.AppendRows(context.Background(), [][]string{{"1", "x"}}))
	require.NoError(t, w.Close())

	rows := openRows(t, path, "데이터")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"1", "x"}, rows[1])
}

func TestExcelWriterErrorRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	w, err := NewExcelWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.AppendErrorRow(context.Background(), "3.pdf", "no valid records extracted", "2025-01-01 12:00:00"))
	require.NoError(t, w.Close())

	rows := openRows(t, path, ErrorSheet)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"3.pdf", "no valid records extracted", "2025-01-01 12:00:00"}, rows[1])
}

// Package ingest reads a review dataset file into header-keyed raw records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"review-dashboard/internal/models"
)

var ErrNoHeader = errors.New("dataset has no header row")

const utf8BOM = "\ufeff"

// Table is a parsed dataset: its header and one record per data row, in file order.
type Table struct {
	Header  []string
	Records []models.RawRecord
}

// MissingColumns lists the review columns absent from the header.
func (t Table) MissingColumns() []string {
	var missing []string
	for _, col := range models.Columns {
		if !slices.Contains(t.Header, col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// ReadFile dispatches on extension: .xlsx is read as a workbook, anything
// else as comma separated text.
func ReadFile(path string) (Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses delimited text whose first row names the columns.
// Cells beyond a short row are absent from its record; cells beyond the
// header width are dropped.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrNoHeader
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	t := Table{Header: normalizeHeader(header)}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read row %d: %w", len(t.Records)+1, err)
		}
		t.Records = append(t.Records, toRecord(t.Header, row))
	}
	return t, nil
}

// ReadXLSX parses the first sheet of a workbook the same way as ReadCSV.
// Cells are read as stored rather than as displayed.
func ReadXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, ErrNoHeader
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Table{}, ErrNoHeader
	}

	t := Table{Header: normalizeHeader(rows[0])}
	dateCol := slices.Index(t.Header, models.ColReviewDate)
	for _, row := range rows[1:] {
		if dateCol >= 0 && dateCol < len(row) {
			row[dateCol] = fromSerialDate(row[dateCol])
		}
		t.Records = append(t.Records, toRecord(t.Header, row))
	}
	return t, nil
}

// fromSerialDate rewrites an Excel date serial, as stored in date cells, to
// ISO form. Text dates are returned unchanged.
func fromSerialDate(v string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

func toRecord(header, row []string) models.RawRecord {
	rec := make(models.RawRecord, len(header))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		rec[col] = row[i]
	}
	return rec
}

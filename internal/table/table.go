// Package table loads tabular row data for form filling. Every cell is kept
// as text; missing cells read as "".
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// ErrUnsupportedFormat is returned for data files other than CSV.
var ErrUnsupportedFormat = errors.New("unsupported data file; only .csv is supported")

// Table is a header row plus data rows keyed by column name.
type Table struct {
	Columns []string
	Rows    []form.Row
}

// Load reads the data file at path.
func Load(path string) (*Table, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return Parse(content)
}

// Parse reads CSV content. The first record is the header. Short records are
// padded with "" and cells beyond the header are ignored.
func Parse(content []byte) (*Table, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(content))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("read headers: %w", err)
	}

	t := &Table{Columns: uniqueColumns(header)}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}

		row := make(form.Row, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// uniqueColumns names blank headers "Unnamed: i" and suffixes repeats with
// ".1", ".2", ... so every column is addressable.
func uniqueColumns(header []string) []string {
	cols := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	repeats := make(map[string]int)
	for i, h := range header {
		base := strings.TrimSpace(h)
		if base == "" {
			base = fmt.Sprintf("Unnamed: %d", i)
		}
		name := base
		for taken[name] {
			repeats[base]++
			name = fmt.Sprintf("%s.%d", base, repeats[base])
		}
		taken[name] = true
		cols[i] = name
	}
	return cols
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Row returns the data row at a one-based index.
func (t *Table) Row(index int) (form.Row, error) {
	if index < 1 || index > len(t.Rows) {
		return nil, fmt.Errorf("row %d out of range (1-%d)", index, len(t.Rows))
	}
	return t.Rows[index-1], nil
}

// HasColumn reports whether name is one of the header columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

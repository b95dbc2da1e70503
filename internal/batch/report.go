package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ReportFileName is the name of the report inside a batch archive.
const ReportFileName = "_REPORT.csv"

// Status is the outcome of one row.
type Status string

const (
	StatusOK         Status = "OK"
	StatusZeroFilled Status = "ZERO_FILLED"
	StatusError      Status = "ERROR"
)

// Entry is one row of the batch report.
type Entry struct {
	Row          int    `json:"row"`
	File         string `json:"file"`
	Status       Status `json:"status"`
	FilledFields int    `json:"filled_fields"`
	Error        string `json:"error"`
}

// StatusFor derives the row status from a fill outcome.
func StatusFor(filled int, err error) Status {
	switch {
	case err != nil:
		return StatusError
	case filled > 0:
		return StatusOK
	default:
		return StatusZeroFilled
	}
}

// Report lists one entry per data row, in row order.
type Report struct {
	Entries []Entry `json:"entries"`
}

// Summary counts entries per status.
type Summary struct {
	Total      int `json:"total"`
	OK         int `json:"ok"`
	ZeroFilled int `json:"zero_filled"`
	Errors     int `json:"errors"`
}

// Summary tallies the report.
func (r *Report) Summary() Summary {
	s := Summary{Total: len(r.Entries)}
	for _, e := range r.Entries {
		switch e.Status {
		case StatusOK:
			s.OK++
		case StatusZeroFilled:
			s.ZeroFilled++
		case StatusError:
			s.Errors++
		}
	}
	return s
}

var reportHeader = []string{"row", "file", "status", "filled_fields", "error"}

// WriteCSV writes the report with a header line.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, e := range r.Entries {
		record := []string{
			strconv.Itoa(e.Row),
			e.File,
			string(e.Status),
			strconv.Itoa(e.FilledFields),
			e.Error,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write report row %d: %w", e.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

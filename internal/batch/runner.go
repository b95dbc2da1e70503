// Package batch fills one document per data row and records a per-row report.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
	"github.com/a3tai/mcp-pdf-filler/internal/table"
)

// Sink receives each generated document.
type Sink interface {
	Put(name string, data []byte) error
}

// Job is one batch: a template, its rows and the fill configuration.
type Job struct {
	Template []byte
	Table    *table.Table
	Config   form.FillConfig
	// NameColumn overrides name column detection when it names a column.
	NameColumn string
}

// Runner executes batch jobs.
type Runner struct {
	logger  *slog.Logger
	workers int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for per-row records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithWorkers fills up to n rows concurrently. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fills every row of job into sink. Row failures are recorded in the
// report and never stop the batch; the report always has one entry per row,
// in row order. A canceled ctx marks the rows not yet started as errors.
func (r *Runner) Run(ctx context.Context, job Job, sink Sink) (*Report, error) {
	if job.Table == nil {
		return nil, fmt.Errorf("batch has no data table")
	}
	if len(job.Template) == 0 {
		return nil, fmt.Errorf("batch has no template")
	}

	names := newNamer(DetectNameColumn(job.Table.Columns, job.NameColumn))
	report := &Report{Entries: make([]Entry, job.Table.Len())}
	for i, row := range job.Table.Rows {
		report.Entries[i] = Entry{Row: i + 1, File: names.next(i+1, row)}
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i := range report.Entries {
		entry := &report.Entries[i]
		row := job.Table.Rows[i]
		g.Go(func() error {
			r.runRow(ctx, job, row, entry, sink)
			return nil
		})
	}
	_ = g.Wait()

	s := report.Summary()
	r.logger.Info("batch finished",
		slog.Int("rows", s.Total),
		slog.Int("ok", s.OK),
		slog.Int("zero_filled", s.ZeroFilled),
		slog.Int("errors", s.Errors))

	return report, nil
}

func (r *Runner) runRow(ctx context.Context, job Job, row form.Row, entry *Entry, sink Sink) {
	if err := ctx.Err(); err != nil {
		r.fail(entry, fmt.Errorf("batch canceled: %w", err))
		return
	}

	var out bytes.Buffer
	result, err := form.FillTemplate(job.Template, row, job.Config, &out)
	if err != nil {
		r.fail(entry, err)
		return
	}
	if err := sink.Put(entry.File, out.Bytes()); err != nil {
		r.fail(entry, fmt.Errorf("failed to store %s: %w", entry.File, err))
		return
	}

	entry.FilledFields = result.Filled
	entry.Status = StatusFor(result.Filled, nil)
	r.logger.Debug("row filled",
		slog.Int("row", entry.Row),
		slog.String("file", entry.File),
		slog.Int("filled_fields", entry.FilledFields))
}

func (r *Runner) fail(entry *Entry, err error) {
	entry.Status = StatusError
	entry.FilledFields = 0
	entry.Error = err.Error()
	r.logger.Warn("row failed",
		slog.Int("row", entry.Row),
		slog.String("file", entry.File),
		slog.String("error", entry.Error))
}

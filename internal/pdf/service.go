// Package pdf is the file-level facade over the form engine: it confines
// paths to the work directory, validates inputs, caches field catalogs and
// runs fills and batches on behalf of the transports.
package pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/mcp-pdf-filler/internal/batch"
	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/form"
	"github.com/a3tai/mcp-pdf-filler/internal/mapping"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-filler/internal/project"
	"github.com/a3tai/mcp-pdf-filler/internal/table"
)

// Service handles form operations by orchestrating the form engine, the
// batch runner and the project store
type Service struct {
	cfg       *config.Config
	logger    *slog.Logger
	inputs    *security.Sandbox
	outputs   *security.Sandbox
	validator *Validator
	catalogs  *CatalogCache
	projects  *project.Store
	now       func() time.Time
}

// NewService creates a service for cfg. A nil logger discards output.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	inputs, err := security.NewSandbox(cfg.WorkDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory sandbox: %w", err)
	}
	outputs, err := security.NewSandbox(cfg.OutputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory sandbox: %w", err)
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		inputs:    inputs,
		outputs:   outputs,
		validator: NewValidator(cfg.MaxFileSize),
		catalogs:  NewCatalogCache(cfg.CatalogCacheSize),
		projects:  project.NewStore(cfg.ProjectDirectory),
		now:       time.Now,
	}, nil
}

// template is a validated template with its catalog.
type template struct {
	path    string
	data    []byte
	hash    string
	catalog *form.Catalog
}

// dataFile is a validated and parsed data table.
type dataFile struct {
	path  string
	data  []byte
	table *table.Table
}

func (s *Service) loadTemplate(path string) (*template, error) {
	resolved, err := s.inputs.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	data, err := s.validator.ReadFile(resolved, KindTemplate)
	if err != nil {
		return nil, err
	}

	hash := mapping.HashBytes(data)
	catalog, ok := s.catalogs.Get(hash)
	if !ok {
		catalog, err = form.BuildCatalogFromBytes(data)
		if err != nil {
			s.logger.Error("template rejected", slog.String("path", resolved), slog.String("error", err.Error()))
			return nil, err
		}
		s.catalogs.Put(hash, catalog)
		s.logger.Debug("catalog built",
			slog.String("path", resolved),
			slog.Int("fields", len(catalog.Names)),
			slog.Int("pages", catalog.PageCount))
	}

	return &template{path: resolved, data: data, hash: hash, catalog: catalog}, nil
}

func (s *Service) loadData(path string) (*dataFile, error) {
	resolved, err := s.inputs.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	data, err := s.validator.ReadFile(resolved, KindData)
	if err != nil {
		return nil, err
	}
	t, err := table.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(resolved), err)
	}
	return &dataFile{path: resolved, data: data, table: t}, nil
}

// resolveMapping returns the configuration a fill uses, with the import
// warnings when it came from a saved configuration file.
func (s *Service) resolveMapping(src MappingSource, tpl *template, df *dataFile) (mapping.Config, []string, error) {
	if src.ConfigPath == "" {
		cfg := mapping.Config{Mapping: src.Mapping, Rules: src.Rules}
		return cfg.Clone(), nil, nil
	}

	snap, err := s.readSnapshot(src.ConfigPath)
	if err != nil {
		return mapping.Config{}, nil, err
	}
	cfg, warnings := mapping.Import(snap, mapping.Target{
		Catalog:      tpl.catalog,
		Columns:      df.table.Columns,
		TemplateHash: tpl.hash,
		DataHash:     mapping.HashBytes(df.data),
	})
	for _, w := range warnings {
		s.logger.Warn("config import", slog.String("warning", w))
	}
	return cfg, warnings, nil
}

func (s *Service) readSnapshot(path string) (*mapping.Snapshot, error) {
	resolved, err := s.inputs.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	data, err := s.validator.ReadFile(resolved, KindConfig)
	if err != nil {
		return nil, err
	}
	return mapping.Parse(data)
}

// outputPath resolves an output file path inside the output directory,
// using fallback when path is empty, and creates its parent directory.
func (s *Service) outputPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	resolved, err := s.outputs.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), config.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return resolved, nil
}

func (s *Service) snapshotBytes(cfg mapping.Config, tpl *template, df *dataFile) ([]byte, error) {
	snap := mapping.Export(cfg,
		mapping.Source{Name: filepath.Base(tpl.path), Data: tpl.data},
		mapping.Source{Name: filepath.Base(df.path), Data: df.data},
		s.now())
	return snap.Marshal()
}

// ListFields returns the template's fields in catalog order, optionally
// filtered by a case-insensitive substring.
func (s *Service) ListFields(req ListFieldsRequest) (*ListFieldsResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}

	names := mapping.FilterFields(tpl.catalog.Names, req.Query)
	fields := make([]FieldInfo, 0, len(names))
	for _, name := range names {
		fields = append(fields, FieldInfo{
			Name:        name,
			Type:        tpl.catalog.Types[name],
			Occurrences: tpl.catalog.Locations[name],
		})
	}

	return &ListFieldsResult{
		Path:      tpl.path,
		PageCount: tpl.catalog.PageCount,
		Total:     len(tpl.catalog.Names),
		Fields:    fields,
	}, nil
}

// FieldLocations returns the widget rectangles on one page together with the
// page's MediaBox, for drawing field overlays.
func (s *Service) FieldLocations(req FieldLocationsRequest) (*FieldLocationsResult, error) {
	tpl, err := s.loadTemplate(req.Path)
	if err != nil {
		return nil, err
	}
	if req.Page < 0 || req.Page >= tpl.catalog.PageCount {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", req.Page, tpl.catalog.PageCount)
	}

	wanted := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		wanted[f] = true
	}

	result := &FieldLocationsResult{
		Path:      tpl.path,
		Page:      req.Page,
		PageCount: tpl.catalog.PageCount,
		PageBox:   PageBox(tpl.data, req.Page),
		Locations: []FieldLocation{},
	}
	for _, name := range tpl.catalog.Names {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		for _, occ := range tpl.catalog.LocationsOnPage(name, req.Page) {
			result.Locations = append(result.Locations, FieldLocation{
				Name: name,
				Type: tpl.catalog.Types[name],
				Rect: occ.Rect,
			})
		}
	}
	return result, nil
}

// FillRow fills one data row (one-based) and writes the document.
func (s *Service) FillRow(req FillRowRequest) (*FillRowResult, error) {
	tpl, err := s.loadTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	df, err := s.loadData(req.DataPath)
	if err != nil {
		return nil, err
	}
	row, err := df.table.Row(req.Row)
	if err != nil {
		return nil, err
	}
	cfg, warnings, err := s.resolveMapping(req.MappingSource, tpl, df)
	if err != nil {
		return nil, err
	}

	out, err := s.outputPath(req.OutputPath, fmt.Sprintf("preview_row_%03d.pdf", req.Row))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fill, err := form.FillTemplate(tpl.data, row, cfg.FillConfig(s.cfg.ForceAutosize, s.logger), &buf)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}

	s.logger.Info("row filled",
		slog.Int("row", req.Row),
		slog.String("output", out),
		slog.Int("filled_fields", fill.Filled))

	return &FillRowResult{
		OutputPath: out,
		Row:        req.Row,
		Filled:     fill.Filled,
		Fields:     fill.Fields,
		Warnings:   warnings,
	}, nil
}

// GenerateBatch fills every data row. Documents go to a directory, or into
// a single ZIP archive when req.Zip is set; either way the report and the
// mapping configuration are written alongside them.
func (s *Service) GenerateBatch(ctx context.Context, req GenerateBatchRequest) (*GenerateBatchResult, error) {
	tpl, err := s.loadTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	df, err := s.loadData(req.DataPath)
	if err != nil {
		return nil, err
	}
	cfg, warnings, err := s.resolveMapping(req.MappingSource, tpl, df)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshotBytes(cfg, tpl, df)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dir, err := s.outputs.ResolveDir(defaultString(req.OutputDir,
		strings.TrimSuffix(batch.ArchiveName(now), ".zip")))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, config.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	job := batch.Job{
		Template:   tpl.data,
		Table:      df.table,
		Config:     cfg.FillConfig(s.cfg.ForceAutosize, s.logger),
		NameColumn: defaultString(req.NameColumn, s.cfg.NameColumn),
	}
	runner := batch.NewRunner(batch.WithLogger(s.logger), batch.WithWorkers(req.Workers))

	result := &GenerateBatchResult{OutputDir: dir, Warnings: warnings}

	var report *batch.Report
	if req.Zip {
		sink := batch.NewMemorySink()
		if report, err = runner.Run(ctx, job, sink); err != nil {
			return nil, err
		}
		var archive bytes.Buffer
		if err := batch.WriteZip(&archive, sink.Files(report), report, snapshot); err != nil {
			return nil, err
		}
		result.ArchivePath = filepath.Join(dir, batch.ArchiveName(now))
		if err := os.WriteFile(result.ArchivePath, archive.Bytes(), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write archive: %w", err)
		}
	} else {
		if report, err = runner.Run(ctx, job, batch.DirSink{Dir: dir}); err != nil {
			return nil, err
		}
		var csv bytes.Buffer
		if err := report.WriteCSV(&csv); err != nil {
			return nil, err
		}
		result.ReportPath = filepath.Join(dir, batch.ReportFileName)
		if err := os.WriteFile(result.ReportPath, csv.Bytes(), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, batch.ConfigFileName), snapshot, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write mapping configuration: %w", err)
		}
	}

	result.Summary = report.Summary()
	result.Entries = report.Entries
	return result, nil
}

// ExportConfig writes the mapping and rules, stamped with the template and
// data hashes, as JSON.
func (s *Service) ExportConfig(req ExportConfigRequest) (*ExportConfigResult, error) {
	tpl, err := s.loadTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	df, err := s.loadData(req.DataPath)
	if err != nil {
		return nil, err
	}

	cfg := mapping.Config{Mapping: req.Mapping, Rules: req.Rules}.Clone()
	data, err := s.snapshotBytes(cfg, tpl, df)
	if err != nil {
		return nil, err
	}

	out, err := s.outputPath(req.OutputPath, batch.ConfigFileName)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write configuration: %w", err)
	}

	return &ExportConfigResult{
		Path:     out,
		Mappings: len(cfg.MappedFields()),
		Rules:    len(cfg.Rules),
	}, nil
}

// ImportConfig reads an exported configuration and keeps only the entries
// that still resolve against the template and data file.
func (s *Service) ImportConfig(req ImportConfigRequest) (*ImportConfigResult, error) {
	tpl, err := s.loadTemplate(req.TemplatePath)
	if err != nil {
		return nil, err
	}
	df, err := s.loadData(req.DataPath)
	if err != nil {
		return nil, err
	}

	cfg, warnings, err := s.resolveMapping(MappingSource{ConfigPath: req.ConfigPath}, tpl, df)
	if err != nil {
		return nil, err
	}
	if warnings == nil {
		warnings = []string{}
	}
	return &ImportConfigResult{
		Mapping:  cfg.Mapping,
		Rules:    cfg.Rules,
		Warnings: warnings,
	}, nil
}

// ValidateFile checks path as kind without failing the call on invalid input.
func (s *Service) ValidateFile(path string, kind FileKind) (*ValidateFileResult, error) {
	resolved, err := s.inputs.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(resolved, kind), nil
}

// SaveProject persists the current paths, mapping and rules. An empty id
// creates a new project.
func (s *Service) SaveProject(req SaveProjectRequest) (*ProjectResult, error) {
	id := req.ID
	if id == "" {
		id = project.NewID()
	}

	cfg := mapping.Config{Mapping: req.Mapping, Rules: req.Rules}.Clone()
	path, err := s.projects.Save(id, project.Payload{
		"template_path": req.TemplatePath,
		"data_path":     req.DataPath,
		"name_column":   req.NameColumn,
		"mapping":       cfg.Mapping,
		"rules":         cfg.Rules,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project saved", slog.String("project_id", id), slog.String("path", path))
	return s.LoadProject(id)
}

// LoadProject returns the saved project id, or an error when it does not exist.
func (s *Service) LoadProject(id string) (*ProjectResult, error) {
	payload, err := s.projects.Load(id)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, fmt.Errorf("project not found: %s", id)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	result := &ProjectResult{}
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	result.Path = s.projects.Path(id)
	if result.Mapping == nil {
		result.Mapping = map[string]string{}
	}
	if result.Rules == nil {
		result.Rules = form.RuleSet{}
	}
	return result, nil
}

// ListProjects returns up to limit saved projects, most recent first.
func (s *Service) ListProjects(limit int) ([]ProjectSummary, error) {
	ids, err := s.projects.List(limit)
	if err != nil {
		return nil, err
	}

	out := make([]ProjectSummary, 0, len(ids))
	for _, id := range ids {
		summary := ProjectSummary{ID: id, Path: s.projects.Path(id)}
		if p, err := s.LoadProject(id); err == nil {
			summary.UpdatedAt = p.UpdatedAt
		}
		out = append(out, summary)
	}
	return out, nil
}

// ServerInfo returns the effective configuration and cache state.
func (s *Service) ServerInfo() *ServerInfoResult {
	return &ServerInfoResult{
		Name:             s.cfg.ServerName,
		Version:          s.cfg.Version,
		WorkDirectory:    s.inputs.Root(),
		OutputDirectory:  s.outputs.Root(),
		ProjectDirectory: s.cfg.ProjectDirectory,
		MaxFileSize:      s.cfg.MaxFileSize,
		ForceAutosize:    s.cfg.ForceAutosize,
		CatalogCache:     s.catalogs.Stats(),
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

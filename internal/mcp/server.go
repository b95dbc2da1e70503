package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/descriptions"
	"github.com/a3tai/mcp-pdf-filler/internal/form"
	"github.com/a3tai/mcp-pdf-filler/internal/mapping"
	"github.com/a3tai/mcp-pdf-filler/internal/pdf"
)

// shutdownTimeout bounds the graceful HTTP shutdown in server mode.
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

func mappingOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithObject("mapping",
			mcp.Description("Field name to CSV column, e.g. {\"Name\": \"FullName\"}"),
		),
		mcp.WithObject("rules",
			mcp.Description("Per-field checkbox rules: {\"Agree\": {\"checked_values\": [\"y\"], "+
				"\"unchecked_values\": [\"n\"], \"default\": \"off\"}}. Token lists may also be comma separated strings"),
		),
		mcp.WithString("config_path",
			mcp.Description("Exported mapping configuration to use instead of mapping and rules"),
		),
	}
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	listFieldsTool := mcp.NewTool(
		"pdf_list_fields",
		mcp.WithDescription(descriptions.PDFListFieldsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF form template"),
		),
		mcp.WithString("query",
			mcp.Description("Only list fields whose name contains this text (case-insensitive)"),
		),
	)
	s.mcpServer.AddTool(listFieldsTool, s.handleListFields)

	fieldLocationsTool := mcp.NewTool(
		"pdf_field_locations",
		mcp.WithDescription(descriptions.PDFFieldLocationsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF form template"),
		),
		mcp.WithNumber("page",
			mcp.Description("Zero-based page index (default 0)"),
		),
		mcp.WithArray("fields",
			mcp.Description("Only report these field names"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.mcpServer.AddTool(fieldLocationsTool, s.handleFieldLocations)

	validateTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.PDFValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the file"),
		),
		mcp.WithString("kind",
			mcp.Description("What the file is used as"),
			mcp.Enum(string(pdf.KindTemplate), string(pdf.KindData), string(pdf.KindConfig)),
			mcp.DefaultString(string(pdf.KindTemplate)),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateFile)

	fillRowOpts := []mcp.ToolOption{
		mcp.WithDescription(descriptions.PDFFillRowDescription),
		mcp.WithString("template_path", mcp.Required(), mcp.Description("Path to the PDF form template")),
		mcp.WithString("data_path", mcp.Required(), mcp.Description("Path to the CSV data file")),
		mcp.WithNumber("row", mcp.Description("One-based data row (default 1)")),
		mcp.WithString("output_path", mcp.Description("Output file, relative to the output directory")),
	}
	s.mcpServer.AddTool(mcp.NewTool("pdf_fill_row", append(fillRowOpts, mappingOptions()...)...), s.handleFillRow)

	batchOpts := []mcp.ToolOption{
		mcp.WithDescription(descriptions.PDFGenerateBatchDescription),
		mcp.WithString("template_path", mcp.Required(), mcp.Description("Path to the PDF form template")),
		mcp.WithString("data_path", mcp.Required(), mcp.Description("Path to the CSV data file")),
		mcp.WithString("output_dir", mcp.Description("Output directory, relative to the output directory")),
		mcp.WithString("name_column", mcp.Description("Column used to name the generated files")),
		mcp.WithBoolean("zip", mcp.Description("Package everything into one ZIP archive")),
		mcp.WithNumber("workers", mcp.Description("Rows filled concurrently (default 1)")),
	}
	s.mcpServer.AddTool(mcp.NewTool("pdf_generate_batch", append(batchOpts, mappingOptions()...)...),
		s.handleGenerateBatch)

	exportTool := mcp.NewTool(
		"pdf_export_config",
		mcp.WithDescription(descriptions.PDFExportConfigDescription),
		mcp.WithString("template_path", mcp.Required(), mcp.Description("Path to the PDF form template")),
		mcp.WithString("data_path", mcp.Required(), mcp.Description("Path to the CSV data file")),
		mcp.WithObject("mapping", mcp.Required(), mcp.Description("Field name to CSV column")),
		mcp.WithObject("rules", mcp.Description("Per-field checkbox rules")),
		mcp.WithString("output_path", mcp.Description("Output file, relative to the output directory")),
	)
	s.mcpServer.AddTool(exportTool, s.handleExportConfig)

	importTool := mcp.NewTool(
		"pdf_import_config",
		mcp.WithDescription(descriptions.PDFImportConfigDescription),
		mcp.WithString("config_path", mcp.Required(), mcp.Description("Path to the exported configuration")),
		mcp.WithString("template_path", mcp.Required(), mcp.Description("Path to the PDF form template")),
		mcp.WithString("data_path", mcp.Required(), mcp.Description("Path to the CSV data file")),
	)
	s.mcpServer.AddTool(importTool, s.handleImportConfig)

	projectSaveTool := mcp.NewTool(
		"pdf_project_save",
		mcp.WithDescription(descriptions.PDFProjectSaveDescription),
		mcp.WithString("id", mcp.Description("Existing project id; omit to create a project")),
		mcp.WithString("template_path", mcp.Description("Path to the PDF form template")),
		mcp.WithString("data_path", mcp.Description("Path to the CSV data file")),
		mcp.WithString("name_column", mcp.Description("Column used to name generated files")),
		mcp.WithObject("mapping", mcp.Description("Field name to CSV column")),
		mcp.WithObject("rules", mcp.Description("Per-field checkbox rules")),
	)
	s.mcpServer.AddTool(projectSaveTool, s.handleProjectSave)

	projectLoadTool := mcp.NewTool(
		"pdf_project_load",
		mcp.WithDescription(descriptions.PDFProjectLoadDescription),
		mcp.WithString("id", mcp.Required(), mcp.Description("Project id")),
	)
	s.mcpServer.AddTool(projectLoadTool, s.handleProjectLoad)

	projectListTool := mcp.NewTool(
		"pdf_project_list",
		mcp.WithDescription(descriptions.PDFProjectListDescription),
		mcp.WithNumber("limit", mcp.Description("Maximum number of projects (default 50)")),
	)
	s.mcpServer.AddTool(projectListTool, s.handleProjectList)

	serverInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.PDFServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Argument helpers

// decodeArg re-encodes the raw argument key into target. Missing keys leave
// target untouched.
func decodeArg(request mcp.CallToolRequest, key string, target any) error {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func mappingArg(request mcp.CallToolRequest) (map[string]string, error) {
	var m map[string]string
	if err := decodeArg(request, "mapping", &m); err != nil {
		return nil, err
	}
	return m, nil
}

// rulesArg reads checkbox rules. Token lists are accepted as arrays or as
// comma separated text.
func rulesArg(request mcp.CallToolRequest) (form.RuleSet, error) {
	var raw map[string]struct {
		CheckedValues   json.RawMessage `json:"checked_values"`
		UncheckedValues json.RawMessage `json:"unchecked_values"`
		Default         string          `json:"default"`
	}
	if err := decodeArg(request, "rules", &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	rules := make(form.RuleSet, len(raw))
	for field, r := range raw {
		checked, err := tokensArg(r.CheckedValues)
		if err != nil {
			return nil, fmt.Errorf("invalid rules for %s: %w", field, err)
		}
		unchecked, err := tokensArg(r.UncheckedValues)
		if err != nil {
			return nil, fmt.Errorf("invalid rules for %s: %w", field, err)
		}
		polarity := form.PolarityOff
		if form.Polarity(r.Default).IsOn() {
			polarity = form.PolarityOn
		}
		rules[field] = form.Rule{CheckedValues: checked, UncheckedValues: unchecked, Default: polarity}
	}
	return rules, nil
}

func tokensArg(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return mapping.ParseTokens(text), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("token list must be an array of strings or comma separated text")
	}
	return list, nil
}

func mappingSourceArg(request mcp.CallToolRequest) (pdf.MappingSource, error) {
	m, err := mappingArg(request)
	if err != nil {
		return pdf.MappingSource{}, err
	}
	rules, err := rulesArg(request)
	if err != nil {
		return pdf.MappingSource{}, err
	}
	return pdf.MappingSource{
		ConfigPath: request.GetString("config_path", ""),
		Mapping:    m,
		Rules:      rules,
	}, nil
}

// Handler functions

func (s *Server) handleListFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ListFields(pdf.ListFieldsRequest{
		Path:  path,
		Query: request.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatListFieldsResult(result)), nil
}

func (s *Server) handleFieldLocations(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FieldLocations(pdf.FieldLocationsRequest{
		Path:   path,
		Page:   request.GetInt("page", 0),
		Fields: request.GetStringSlice("fields", nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFieldLocationsResult(result)), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	kind := pdf.FileKind(request.GetString("kind", string(pdf.KindTemplate)))
	result, err := s.pdfService.ValidateFile(path, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	status := "INVALID"
	if result.Valid {
		status = "VALID"
	}
	text := fmt.Sprintf("%s: %s\n", status, result.Path)
	text += fmt.Sprintf("Kind: %s\n", result.Kind)
	if result.Valid {
		text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	}
	text += fmt.Sprintf("Message: %s\n", result.Message)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleFillRow(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templatePath, err := request.RequireString("template_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataPath, err := request.RequireString("data_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := mappingSourceArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FillRow(pdf.FillRowRequest{
		MappingSource: src,
		TemplatePath:  templatePath,
		DataPath:      dataPath,
		Row:           request.GetInt("row", 1),
		OutputPath:    request.GetString("output_path", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatFillRowResult(result)), nil
}

func (s *Server) handleGenerateBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templatePath, err := request.RequireString("template_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataPath, err := request.RequireString("data_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := mappingSourceArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.GenerateBatch(ctx, pdf.GenerateBatchRequest{
		MappingSource: src,
		TemplatePath:  templatePath,
		DataPath:      dataPath,
		OutputDir:     request.GetString("output_dir", ""),
		NameColumn:    request.GetString("name_column", ""),
		Zip:           request.GetBool("zip", false),
		Workers:       request.GetInt("workers", 1),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGenerateBatchResult(result)), nil
}

func (s *Server) handleExportConfig(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templatePath, err := request.RequireString("template_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dataPath, err := request.RequireString("data_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := mappingArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m == nil {
		return mcp.NewToolResultError("required argument \"mapping\" not found"), nil
	}
	rules, err := rulesArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExportConfig(pdf.ExportConfigRequest{
		TemplatePath: templatePath,
		DataPath:     dataPath,
		Mapping:      m,
		Rules:        rules,
		OutputPath:   request.GetString("output_path", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Configuration saved: %s\n", result.Path)
	text += fmt.Sprintf("Mapped fields: %d\n", result.Mappings)
	text += fmt.Sprintf("Checkbox rules: %d\n", result.Rules)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleImportConfig(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var req pdf.ImportConfigRequest
	var err error
	if req.ConfigPath, err = request.RequireString("config_path"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.TemplatePath, err = request.RequireString("template_path"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.DataPath, err = request.RequireString("data_path"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ImportConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatImportConfigResult(result)), nil
}

func (s *Server) handleProjectSave(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := mappingArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rules, err := rulesArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.SaveProject(pdf.SaveProjectRequest{
		ID:           request.GetString("id", ""),
		TemplatePath: request.GetString("template_path", ""),
		DataPath:     request.GetString("data_path", ""),
		NameColumn:   request.GetString("name_column", ""),
		Mapping:      m,
		Rules:        rules,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Project saved\n" + formatProjectResult(result)), nil
}

func (s *Server) handleProjectLoad(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.LoadProject(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatProjectResult(result)), nil
}

func (s *Server) handleProjectList(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.pdfService.ListProjects(request.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(projects) == 0 {
		return mcp.NewToolResultText("No saved projects\n"), nil
	}
	text := fmt.Sprintf("Saved projects (%d):\n", len(projects))
	for i, p := range projects {
		text += fmt.Sprintf("%d. %s (updated %s)\n", i+1, p.ID,
			time.Unix(p.UpdatedAt, 0).UTC().Format(mapping.TimestampLayout))
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatServerInfoResult(s.pdfService.ServerInfo())), nil
}

// Formatting functions

func formatListFieldsResult(result *pdf.ListFieldsResult) string {
	text := fmt.Sprintf("Form fields in: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	if len(result.Fields) == result.Total {
		text += fmt.Sprintf("Fields: %d\n", result.Total)
	} else {
		text += fmt.Sprintf("Fields: %d of %d match\n", len(result.Fields), result.Total)
	}

	for i, f := range result.Fields {
		text += fmt.Sprintf("%d. %s [%s]", i+1, f.Name, f.Type)
		if len(f.Occurrences) > 0 {
			pages := make([]string, 0, len(f.Occurrences))
			for _, occ := range f.Occurrences {
				pages = append(pages, fmt.Sprint(occ.Page))
			}
			text += fmt.Sprintf(" pages: %s", strings.Join(pages, ","))
		}
		text += "\n"
	}
	return text
}

func formatFieldLocationsResult(result *pdf.FieldLocationsResult) string {
	box := result.PageBox
	text := fmt.Sprintf("Page %d of %d in: %s\n", result.Page, result.PageCount, result.Path)
	text += fmt.Sprintf("MediaBox: [%g %g %g %g]\n", box[0], box[1], box[2], box[3])
	text += fmt.Sprintf("Widgets: %d\n", len(result.Locations))
	for i, loc := range result.Locations {
		r := loc.Rect
		text += fmt.Sprintf("%d. %s [%s] rect: [%g %g %g %g]\n",
			i+1, loc.Name, loc.Type, r[0], r[1], r[2], r[3])
	}
	return text
}

func formatFillRowResult(result *pdf.FillRowResult) string {
	text := fmt.Sprintf("Filled row %d: %s\n", result.Row, result.OutputPath)
	text += fmt.Sprintf("Fields written: %d\n", result.Filled)
	for _, f := range result.Fields {
		text += fmt.Sprintf("• %s ← %s: %q", f.Name, f.Column, f.Written)
		if f.Outcome != 0 {
			text += fmt.Sprintf(" (%s from %q)", f.Outcome, f.Input)
		}
		if f.Autosize != 0 {
			text += fmt.Sprintf(" autosize: %s", f.Autosize)
		}
		text += "\n"
	}
	text += formatWarnings(result.Warnings)
	return text
}

func formatGenerateBatchResult(result *pdf.GenerateBatchResult) string {
	sum := result.Summary
	text := fmt.Sprintf("Batch finished: %d rows (%d OK, %d zero filled, %d errors)\n",
		sum.Total, sum.OK, sum.ZeroFilled, sum.Errors)
	text += fmt.Sprintf("Output directory: %s\n", result.OutputDir)
	if result.ArchivePath != "" {
		text += fmt.Sprintf("Archive: %s\n", result.ArchivePath)
	}
	if result.ReportPath != "" {
		text += fmt.Sprintf("Report: %s\n", result.ReportPath)
	}

	for _, e := range result.Entries {
		if e.Error != "" {
			text += fmt.Sprintf("row %d %s %s: %s\n", e.Row, e.File, e.Status, e.Error)
		} else {
			text += fmt.Sprintf("row %d %s %s (%d fields)\n", e.Row, e.File, e.Status, e.FilledFields)
		}
	}
	text += formatWarnings(result.Warnings)
	return text
}

func formatImportConfigResult(result *pdf.ImportConfigResult) string {
	text := fmt.Sprintf("Imported %d mappings and %d checkbox rules\n", len(result.Mapping), len(result.Rules))
	for _, field := range sortedKeys(result.Mapping) {
		text += fmt.Sprintf("• %s ← %s\n", field, result.Mapping[field])
	}
	for _, field := range sortedKeys(result.Rules) {
		r := result.Rules[field]
		text += fmt.Sprintf("• rule %s: checked [%s] unchecked [%s] default %s\n",
			field, mapping.FormatTokens(r.CheckedValues), mapping.FormatTokens(r.UncheckedValues), r.Default)
	}
	text += formatWarnings(result.Warnings)
	return text
}

func formatProjectResult(result *pdf.ProjectResult) string {
	text := fmt.Sprintf("Project: %s\n", result.ID)
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Updated: %s\n", time.Unix(result.UpdatedAt, 0).UTC().Format(mapping.TimestampLayout))
	if result.TemplatePath != "" {
		text += fmt.Sprintf("Template: %s\n", result.TemplatePath)
	}
	if result.DataPath != "" {
		text += fmt.Sprintf("Data: %s\n", result.DataPath)
	}
	if result.NameColumn != "" {
		text += fmt.Sprintf("Name column: %s\n", result.NameColumn)
	}
	text += fmt.Sprintf("Mappings: %d, checkbox rules: %d\n", len(result.Mapping), len(result.Rules))
	return text
}

func formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s\n", result.Name, result.Version)
	text += fmt.Sprintf("Work directory: %s\n", result.WorkDirectory)
	text += fmt.Sprintf("Output directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("Project directory: %s\n", result.ProjectDirectory)
	text += fmt.Sprintf("Max file size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Auto-size text: %t\n", result.ForceAutosize)

	cache := result.CatalogCache
	text += fmt.Sprintf("Catalog cache: %d/%d entries, %d hits, %d misses (%.1f%%)\n",
		cache.Size, cache.Capacity, cache.Hits, cache.Misses, cache.HitRate)

	text += "\nAvailable tools:\n"
	for _, name := range descriptions.ToolNames {
		text += fmt.Sprintf("• %s: %s\n", name, descriptions.GetToolSummary(name))
	}
	return text
}

func formatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	text := fmt.Sprintf("Warnings (%d):\n", len(warnings))
	for _, w := range warnings {
		text += fmt.Sprintf("⚠ %s\n", w)
	}
	return text
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// done or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode",
		slog.String("work_dir", s.config.WorkDirectory))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the streamable HTTP transport until ctx is canceled.
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	addr := s.config.Address()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server", slog.String("address", addr))
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

package pdf

import (
	"github.com/a3tai/mcp-pdf-filler/internal/batch"
	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

// FieldInfo describes one template field.
type FieldInfo struct {
	Name        string            `json:"name"`
	Type        form.FieldType    `json:"type"`
	Occurrences []form.Occurrence `json:"occurrences"`
}

// FieldLocation is one widget rectangle on the requested page.
type FieldLocation struct {
	Name string         `json:"name"`
	Type form.FieldType `json:"type"`
	Rect form.Rect      `json:"rect"`
}

// MappingSource selects the field mapping for a fill. ConfigPath, when set,
// names an exported configuration that is imported against the current
// template and data; otherwise Mapping and Rules are used as given.
type MappingSource struct {
	ConfigPath string            `json:"config_path,omitempty"`
	Mapping    map[string]string `json:"mapping,omitempty"`
	Rules      form.RuleSet      `json:"rules,omitempty"`
}

// Request Types

// ListFieldsRequest represents a request to list the fields of a template
type ListFieldsRequest struct {
	Path  string `json:"path"`
	Query string `json:"query"`
}

// FieldLocationsRequest represents a request for widget rectangles on a page
type FieldLocationsRequest struct {
	Path   string   `json:"path"`
	Page   int      `json:"page"` // zero-based
	Fields []string `json:"fields"`
}

// FillRowRequest represents a request to fill one data row into a template
type FillRowRequest struct {
	MappingSource
	TemplatePath string `json:"template_path"`
	DataPath     string `json:"data_path"`
	Row          int    `json:"row"` // one-based
	OutputPath   string `json:"output_path"`
}

// GenerateBatchRequest represents a request to fill every data row
type GenerateBatchRequest struct {
	MappingSource
	TemplatePath string `json:"template_path"`
	DataPath     string `json:"data_path"`
	OutputDir    string `json:"output_dir"`
	NameColumn   string `json:"name_column"`
	Zip          bool   `json:"zip"`
	Workers      int    `json:"workers"`
}

// ExportConfigRequest represents a request to save a mapping configuration
type ExportConfigRequest struct {
	TemplatePath string            `json:"template_path"`
	DataPath     string            `json:"data_path"`
	Mapping      map[string]string `json:"mapping"`
	Rules        form.RuleSet      `json:"rules"`
	OutputPath   string            `json:"output_path"`
}

// ImportConfigRequest represents a request to load a mapping configuration
// against a template and data file
type ImportConfigRequest struct {
	ConfigPath   string `json:"config_path"`
	TemplatePath string `json:"template_path"`
	DataPath     string `json:"data_path"`
}

// Response Types

// ListFieldsResult represents the fields of a template
type ListFieldsResult struct {
	Path      string      `json:"path"`
	PageCount int         `json:"page_count"`
	Total     int         `json:"total"`
	Fields    []FieldInfo `json:"fields"`
}

// FieldLocationsResult represents the widget rectangles on one page
type FieldLocationsResult struct {
	Path      string          `json:"path"`
	Page      int             `json:"page"`
	PageCount int             `json:"page_count"`
	PageBox   form.Rect       `json:"page_box"`
	Locations []FieldLocation `json:"locations"`
}

// FillRowResult represents one filled document
type FillRowResult struct {
	OutputPath string             `json:"output_path"`
	Row        int                `json:"row"`
	Filled     int                `json:"filled"`
	Fields     []form.FieldResult `json:"fields"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// GenerateBatchResult represents the outcome of a batch run
type GenerateBatchResult struct {
	OutputDir   string        `json:"output_dir"`
	ReportPath  string        `json:"report_path,omitempty"`
	ArchivePath string        `json:"archive_path,omitempty"`
	Summary     batch.Summary `json:"summary"`
	Entries     []batch.Entry `json:"entries"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// ExportConfigResult represents a saved mapping configuration
type ExportConfigResult struct {
	Path     string `json:"path"`
	Mappings int    `json:"mappings"`
	Rules    int    `json:"rules"`
}

// ImportConfigResult represents a mapping configuration resolved against the
// current template and data
type ImportConfigResult struct {
	Mapping  map[string]string `json:"mapping"`
	Rules    form.RuleSet      `json:"rules"`
	Warnings []string          `json:"warnings"`
}

// ValidateFileResult represents the result of a file validation
type ValidateFileResult struct {
	Path    string   `json:"path"`
	Kind    FileKind `json:"kind"`
	Valid   bool     `json:"valid"`
	Size    int64    `json:"size"`
	Message string   `json:"message"`
}

// ProjectSummary is one saved project in a listing.
type ProjectSummary struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	UpdatedAt int64  `json:"updated_at"`
}

// ServerInfoResult represents server configuration and state
type ServerInfoResult struct {
	Name             string     `json:"name"`
	Version          string     `json:"version"`
	WorkDirectory    string     `json:"work_directory"`
	OutputDirectory  string     `json:"output_directory"`
	ProjectDirectory string     `json:"project_directory"`
	MaxFileSize      int64      `json:"max_file_size"`
	ForceAutosize    bool       `json:"force_autosize"`
	CatalogCache     CacheStats `json:"catalog_cache"`
}

// SaveProjectRequest represents a request to persist the current work
type SaveProjectRequest struct {
	ID           string            `json:"id"`
	TemplatePath string            `json:"template_path"`
	DataPath     string            `json:"data_path"`
	NameColumn   string            `json:"name_column"`
	Mapping      map[string]string `json:"mapping"`
	Rules        form.RuleSet      `json:"rules"`
}

// ProjectResult represents a saved project
type ProjectResult struct {
	ID           string            `json:"project_id"`
	Path         string            `json:"path"`
	TemplatePath string            `json:"template_path"`
	DataPath     string            `json:"data_path"`
	NameColumn   string            `json:"name_column"`
	Mapping      map[string]string `json:"mapping"`
	Rules        form.RuleSet      `json:"rules"`
	UpdatedAt    int64             `json:"updated_at"`
}

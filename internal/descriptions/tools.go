package descriptions

import "strings"

// Tool descriptions with practical examples and workflows

const (
	// Template inspection
	PDFListFieldsDescription = `List every fillable field of a PDF form template with its type and widget positions.

**When to use:** First step with any new template: discover the field names you will map data columns onto.

**Why it's useful:** Fields are merged across the form tree and the page annotations, so parent/kid duplicates appear once and checkbox or radio fields are never misreported as text.

**Examples:**
• Inspect a template: "List the fields of intake-form.pdf"
• Find a field quickly: "Which fields of intake-form.pdf contain 'date'?" (query: "date")

**Common workflows:**
1. Mapping: pdf_list_fields → match field names to CSV columns → pdf_fill_row to preview
2. Overlay: pdf_list_fields → pdf_field_locations for the page you are looking at

**Best practices:** Field types are "text" or "checkbox_or_radio"; only checkbox_or_radio fields use checkbox rules.`

	PDFFieldLocationsDescription = `Get the rectangles of the field widgets on one page, with the page's MediaBox.

**When to use:** Drawing field boxes over a rendered page, or checking which field sits where.

**Why it's useful:** Coordinates are PDF points with the origin at the bottom-left of the MediaBox, ready to scale onto a page image.

**Examples:**
• "Show where the fields are on page 0 of intake-form.pdf"
• "Where is the 'Signature' field?" (fields: ["Signature"])

**Best practices:** Pages are zero-based. A field repeated on several pages appears once per widget.`

	PDFValidateFileDescription = `Check that a template, data or configuration file is readable before using it.

**When to use:** Before a batch run, or when a file comes from an untrusted source.

**Why it's useful:** Reports extension, size and readability problems as a result instead of failing later in the middle of a fill.

**Examples:**
• "Is contracts.pdf a usable template?" (kind: "template")
• "Check people.csv" (kind: "data")

**Best practices:** Validation does not check for form fields; pdf_list_fields reports templates without an AcroForm or with XFA forms.`

	// Filling
	PDFFillRowDescription = `Fill one CSV row into the template and write a single PDF, for previewing a mapping.

**When to use:** Checking a mapping and its checkbox rules on a real row before generating a whole batch.

**Why it's useful:** Returns per-field details: the column used, the value written, how each checkbox value was classified and whether the font was set to auto-size.

**Examples:**
• "Fill row 1 of people.csv into intake-form.pdf with Name→FullName and Agree→Consent"
• "Preview row 12 using mapping_rules.json" (config_path)

**Common workflows:**
1. Tuning: pdf_fill_row → inspect fields → adjust mapping or rules → repeat
2. Sign-off: pdf_fill_row → pdf_export_config → pdf_generate_batch

**Best practices:** Rows are one-based. Mapped columns missing from the data are skipped, not errors.`

	PDFGenerateBatchDescription = `Fill every CSV row into the template, producing one PDF per row plus a report.

**When to use:** Producing the final documents once the mapping is right.

**Why it's useful:** Row failures never stop the batch: every row gets a report line with status OK, ZERO_FILLED or ERROR. File names come from a name column (File_No, ID, Name, PDF_Name or filename) and are made unique.

**Examples:**
• "Generate all forms from people.csv into run-2024-06"
• "Generate everything as a ZIP" (zip: true)

**Common workflows:**
1. Production: pdf_import_config → pdf_generate_batch → review _REPORT.csv
2. Delivery: pdf_generate_batch with zip → hand over the archive

**Best practices:** ZERO_FILLED usually means the mapping does not match the data columns. The mapping configuration is saved next to the output as mapping_rules.json.`

	// Configuration
	PDFExportConfigDescription = `Save a field mapping and checkbox rules as a JSON configuration.

**When to use:** Keeping a finished mapping for later runs or sharing it with others.

**Why it's useful:** The file records hashes of the template and data it was built with, so a later import can warn when either has changed.

**Examples:**
• "Save the current mapping for intake-form.pdf and people.csv"

**Best practices:** Rules are keyed by field name: {"checked_values": [...], "unchecked_values": [...], "default": "on"|"off"}.`

	PDFImportConfigDescription = `Load a saved mapping configuration against a template and data file.

**When to use:** Reusing a mapping, possibly with a newer template or data export.

**Why it's useful:** Entries whose field or column no longer exists are dropped with a warning instead of failing the import.

**Examples:**
• "Load mapping_rules.json for intake-form-v2.pdf and people-june.csv"

**Best practices:** Read the warnings: a hash mismatch means the template or data changed since the export.`

	// Projects
	PDFProjectSaveDescription = `Save the current template, data file, mapping and rules as a project.

**When to use:** Pausing work on a mapping to continue later.

**Examples:**
• "Save this as a new project" (no id)
• "Update project 0190c3..." (id)

**Best practices:** Omit the id to create a project; the generated id is returned.`

	PDFProjectLoadDescription = `Load a saved project by id.

**When to use:** Continuing work saved with pdf_project_save.

**Examples:**
• "Open project 0190c3..."`

	PDFProjectListDescription = `List saved projects, most recently saved first.

**When to use:** Finding a project id to load.

**Examples:**
• "Show my last 10 projects" (limit: 10)`

	PDFServerInfoDescription = `Get server configuration, directories, catalog cache state and the available tools.

**When to use:** Finding out where templates, data and outputs must live, or which tools exist.

**Why it's useful:** Every path argument must resolve inside the work directory; outputs land in the output directory.`
)

// ToolNames lists the tools in the order they are presented.
var ToolNames = []string{
	"pdf_list_fields",
	"pdf_field_locations",
	"pdf_validate_file",
	"pdf_fill_row",
	"pdf_generate_batch",
	"pdf_export_config",
	"pdf_import_config",
	"pdf_project_save",
	"pdf_project_load",
	"pdf_project_list",
	"pdf_server_info",
}

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_list_fields":     PDFListFieldsDescription,
	"pdf_field_locations": PDFFieldLocationsDescription,
	"pdf_validate_file":   PDFValidateFileDescription,
	"pdf_fill_row":        PDFFillRowDescription,
	"pdf_generate_batch":  PDFGenerateBatchDescription,
	"pdf_export_config":   PDFExportConfigDescription,
	"pdf_import_config":   PDFImportConfigDescription,
	"pdf_project_save":    PDFProjectSaveDescription,
	"pdf_project_load":    PDFProjectLoadDescription,
	"pdf_project_list":    PDFProjectListDescription,
	"pdf_server_info":     PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetToolSummary returns the first line of a tool's description.
func GetToolSummary(toolName string) string {
	desc := GetToolDescription(toolName)
	if i := strings.IndexByte(desc, '\n'); i >= 0 {
		return desc[:i]
	}
	return desc
}

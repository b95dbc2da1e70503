package pdf

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/batch"
	"github.com/a3tai/mcp-pdf-filler/internal/config"
	"github.com/a3tai/mcp-pdf-filler/internal/form"
	"github.com/a3tai/mcp-pdf-filler/internal/form/formtest"
)

const consentCSV = "Name,Consent\nAda Lovelace,yes\nAlan Turing,Y\nAda Lovelace,no\n"

var consentMapping = map[string]string{"Name": "Name", "Agree": "Consent"}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	root := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.WorkDirectory = root
	cfg.OutputDirectory = filepath.Join(root, "output")
	cfg.ProjectDirectory = filepath.Join(root, "projects")

	svc, err := NewService(cfg, nil)
	require.NoError(t, err)

	writeFile(t, root, "consent.pdf", formtest.ConsentForm())
	writeFile(t, root, "people.csv", []byte(consentCSV))
	return svc, root
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func fieldValue(t *testing.T, path, name string) string {
	t.Helper()
	d, err := form.OpenFile(path)
	require.NoError(t, err)
	for n := range d.Fields() {
		if n.Name() == name {
			return n.Value()
		}
	}
	t.Fatalf("field %q not found in %s", name, path)
	return ""
}

func TestNewService_RequiresConfig(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}

func TestService_ListFields(t *testing.T) {
	svc, root := newTestService(t)

	result, err := svc.ListFields(ListFieldsRequest{Path: "consent.pdf"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "consent.pdf"), result.Path)
	assert.Equal(t, 1, result.PageCount)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Fields, 2)
	assert.Equal(t, "Name", result.Fields[0].Name)
	assert.Equal(t, form.TypeText, result.Fields[0].Type)
	assert.Equal(t, "Agree", result.Fields[1].Name)
	assert.Equal(t, form.TypeCheckboxOrRadio, result.Fields[1].Type)

	filtered, err := svc.ListFields(ListFieldsRequest{Path: "consent.pdf", Query: "AGR"})
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Total)
	require.Len(t, filtered.Fields, 1)
	assert.Equal(t, "Agree", filtered.Fields[0].Name)
}

func TestService_CatalogCache(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.ListFields(ListFieldsRequest{Path: "consent.pdf"})
		require.NoError(t, err)
	}

	stats := svc.ServerInfo().CatalogCache
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, 1, stats.Size)
}

func TestService_RejectsBadTemplates(t *testing.T) {
	svc, root := newTestService(t)

	b := formtest.NewBuilder()
	f := b.Add("<< /FT /Tx /T (Name) >>")
	packet := b.Stream("<xdp:xdp/>")
	writeFile(t, root, "xfa.pdf", b.Document([]int{f}, [][]int{{}}, " /XFA "+formtest.Ref(packet)))
	writeFile(t, root, "notes.txt", []byte("hello"))
	writeFile(t, root, "fake.pdf", []byte("hello, world"))

	_, err := svc.ListFields(ListFieldsRequest{Path: "xfa.pdf"})
	assert.ErrorIs(t, err, form.ErrXFAUnsupported)

	tests := []struct {
		name string
		path string
	}{
		{name: "outside work directory", path: "../consent.pdf"},
		{name: "wrong extension", path: "notes.txt"},
		{name: "not a pdf", path: "fake.pdf"},
		{name: "missing", path: "missing.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListFields(ListFieldsRequest{Path: tt.path})
			assert.Error(t, err)
		})
	}
}

func TestService_FieldLocations(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.FieldLocations(FieldLocationsRequest{Path: "consent.pdf", Page: 0})
	require.NoError(t, err)

	assert.Equal(t, form.Rect{0, 0, 612, 792}, result.PageBox)
	assert.Equal(t, []FieldLocation{
		{Name: "Name", Type: form.TypeText, Rect: form.Rect{50, 700, 300, 720}},
		{Name: "Agree", Type: form.TypeCheckboxOrRadio, Rect: form.Rect{50, 650, 64, 664}},
	}, result.Locations)

	only, err := svc.FieldLocations(FieldLocationsRequest{Path: "consent.pdf", Fields: []string{"Agree"}})
	require.NoError(t, err)
	require.Len(t, only.Locations, 1)
	assert.Equal(t, "Agree", only.Locations[0].Name)

	_, err = svc.FieldLocations(FieldLocationsRequest{Path: "consent.pdf", Page: 1})
	assert.Error(t, err)
}

func TestService_FillRow(t *testing.T) {
	svc, root := newTestService(t)

	result, err := svc.FillRow(FillRowRequest{
		MappingSource: MappingSource{Mapping: consentMapping},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		Row:           2,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "output", "preview_row_002.pdf"), result.OutputPath)
	assert.Equal(t, 2, result.Filled)
	assert.Equal(t, "Alan Turing", fieldValue(t, result.OutputPath, "Name"))
	assert.Equal(t, form.OffState, fieldValue(t, result.OutputPath, "Agree"))
}

func TestService_FillRowErrors(t *testing.T) {
	svc, _ := newTestService(t)

	base := FillRowRequest{
		MappingSource: MappingSource{Mapping: consentMapping},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		Row:           1,
	}

	outOfRange := base
	outOfRange.Row = 4
	_, err := svc.FillRow(outOfRange)
	assert.Error(t, err)

	escape := base
	escape.OutputPath = "../../elsewhere.pdf"
	_, err = svc.FillRow(escape)
	assert.Error(t, err)

	wrongData := base
	wrongData.DataPath = "consent.pdf"
	_, err = svc.FillRow(wrongData)
	assert.Error(t, err)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	rules := form.RuleSet{"Agree": {
		CheckedValues:   []string{"y", "yes"},
		UncheckedValues: []string{"n"},
		Default:         form.PolarityOff,
	}}
	exported, err := svc.ExportConfig(ExportConfigRequest{
		TemplatePath: "consent.pdf",
		DataPath:     "people.csv",
		Mapping:      consentMapping,
		Rules:        rules,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Mappings)
	assert.Equal(t, 1, exported.Rules)

	imported, err := svc.ImportConfig(ImportConfigRequest{
		ConfigPath:   exported.Path,
		TemplatePath: "consent.pdf",
		DataPath:     "people.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, consentMapping, imported.Mapping)
	assert.Equal(t, rules, imported.Rules)
	assert.Empty(t, imported.Warnings)

	filled, err := svc.FillRow(FillRowRequest{
		MappingSource: MappingSource{ConfigPath: exported.Path},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		Row:           2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes", fieldValue(t, filled.OutputPath, "Agree"))
}

func TestService_ImportAgainstOtherData(t *testing.T) {
	svc, root := newTestService(t)

	exported, err := svc.ExportConfig(ExportConfigRequest{
		TemplatePath: "consent.pdf",
		DataPath:     "people.csv",
		Mapping:      consentMapping,
	})
	require.NoError(t, err)

	writeFile(t, root, "renamed.csv", []byte("FullName,Consent\nAda,yes\n"))
	imported, err := svc.ImportConfig(ImportConfigRequest{
		ConfigPath:   exported.Path,
		TemplatePath: "consent.pdf",
		DataPath:     "renamed.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Agree": "Consent"}, imported.Mapping)
	assert.GreaterOrEqual(t, len(imported.Warnings), 2)
}

func TestService_GenerateBatchToDirectory(t *testing.T) {
	svc, root := newTestService(t)

	result, err := svc.GenerateBatch(context.Background(), GenerateBatchRequest{
		MappingSource: MappingSource{Mapping: consentMapping},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		OutputDir:     "run1",
		Workers:       2,
	})
	require.NoError(t, err)

	dir := filepath.Join(root, "output", "run1")
	assert.Equal(t, dir, result.OutputDir)
	assert.Equal(t, batch.Summary{Total: 3, OK: 3}, result.Summary)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "Ada Lovelace_2.pdf", result.Entries[2].File)

	for _, e := range result.Entries {
		assert.FileExists(t, filepath.Join(dir, e.File))
	}
	assert.Equal(t, "Ada Lovelace", fieldValue(t, filepath.Join(dir, "Ada Lovelace.pdf"), "Name"))
	assert.Equal(t, "Yes", fieldValue(t, filepath.Join(dir, "Ada Lovelace.pdf"), "Agree"))

	report, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "row,file,status,filled_fields,error")
	assert.FileExists(t, filepath.Join(dir, batch.ConfigFileName))
	assert.Empty(t, result.ArchivePath)
}

func TestService_GenerateBatchToZip(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.GenerateBatch(context.Background(), GenerateBatchRequest{
		MappingSource: MappingSource{Mapping: consentMapping},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		Zip:           true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.ArchivePath)

	data, err := os.ReadFile(result.ArchivePath)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"Ada Lovelace.pdf", "Alan Turing.pdf", "Ada Lovelace_2.pdf",
		batch.ReportFileName, batch.ConfigFileName,
	}, names)
}

func TestService_GenerateBatchCanceled(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.GenerateBatch(ctx, GenerateBatchRequest{
		MappingSource: MappingSource{Mapping: consentMapping},
		TemplatePath:  "consent.pdf",
		DataPath:      "people.csv",
		OutputDir:     "canceled",
	})
	require.NoError(t, err)
	assert.Equal(t, batch.Summary{Total: 3, Errors: 3}, result.Summary)
}

func TestService_Projects(t *testing.T) {
	svc, _ := newTestService(t)

	saved, err := svc.SaveProject(SaveProjectRequest{
		TemplatePath: "consent.pdf",
		DataPath:     "people.csv",
		Mapping:      consentMapping,
		Rules:        form.RuleSet{"Agree": form.DefaultRule()},
	})
	require.NoError(t, err)
	assert.Len(t, saved.ID, 32)
	assert.NotZero(t, saved.UpdatedAt)
	assert.FileExists(t, saved.Path)

	loaded, err := svc.LoadProject(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, consentMapping, loaded.Mapping)
	assert.Equal(t, "consent.pdf", loaded.TemplatePath)
	assert.Equal(t, form.DefaultRule(), loaded.Rules["Agree"])

	list, err := svc.ListProjects(0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	assert.Equal(t, saved.UpdatedAt, list[0].UpdatedAt)

	_, err = svc.LoadProject("doesnotexist")
	assert.Error(t, err)
}

func TestService_ServerInfo(t *testing.T) {
	svc, root := newTestService(t)

	info := svc.ServerInfo()
	assert.Equal(t, "mcp-pdf-filler", info.Name)
	assert.Equal(t, root, info.WorkDirectory)
	assert.Equal(t, filepath.Join(root, "output"), info.OutputDirectory)
	assert.True(t, info.ForceAutosize)
}

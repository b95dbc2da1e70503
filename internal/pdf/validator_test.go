package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/form/formtest"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	tpl := writeFile(t, dir, "form.pdf", formtest.ConsentForm())
	upper := writeFile(t, dir, "FORM.PDF", formtest.ConsentForm())
	data := writeFile(t, dir, "rows.csv", []byte("a,b\n1,2\n"))
	empty := writeFile(t, dir, "empty.pdf", nil)
	garbage := writeFile(t, dir, "garbage.pdf", []byte("not a pdf at all"))
	broken := writeFile(t, dir, "broken.pdf", badStartxref())

	tests := []struct {
		name  string
		path  string
		kind  FileKind
		valid bool
	}{
		{name: "template", path: tpl, kind: KindTemplate, valid: true},
		{name: "upper case extension", path: upper, kind: KindTemplate, valid: true},
		{name: "data", path: data, kind: KindData, valid: true},
		{name: "data as template", path: data, kind: KindTemplate},
		{name: "template as data", path: tpl, kind: KindData},
		{name: "empty", path: empty, kind: KindTemplate},
		{name: "garbage", path: garbage, kind: KindTemplate},
		{name: "bad startxref", path: broken, kind: KindTemplate},
		{name: "directory", path: dir, kind: KindTemplate},
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), kind: KindTemplate},
		{name: "empty path", path: "", kind: KindTemplate},
	}

	v := NewValidator(1 << 20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateFile(tt.path, tt.kind)
			assert.Equal(t, tt.valid, result.Valid, result.Message)
			assert.NotEmpty(t, result.Message)
		})
	}
}

func TestValidator_MaxFileSize(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "form.pdf", formtest.ConsentForm())

	_, err := NewValidator(10).ReadFile(path, KindTemplate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	data, err := NewValidator(0).ReadFile(path, KindTemplate)
	require.NoError(t, err)
	assert.Equal(t, formtest.ConsentForm(), data)
}

func TestCheckPDF_ReaderPanicBecomesError(t *testing.T) {
	var err error
	require.NotPanics(t, func() { err = checkPDF(badStartxref()) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PDF file")

	assert.NoError(t, checkPDF(formtest.ConsentForm()))
}

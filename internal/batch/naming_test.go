package batch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Ada Lovelace", want: "Ada Lovelace"},
		{in: "  a/b\\c  ", want: "a_b_c"},
		{in: "x:*?y", want: "x_y"},
		{in: "multi   \t space", want: "multi _ space"},
		{in: "file-01.v2_final", want: "file-01.v2_final"},
		{in: "Zoë Ångström", want: "Zoë Ångström"},
		{in: "", want: "row"},
		{in: "   ", want: "row"},
		{in: "###", want: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in))
		})
	}
}

func TestSafeFilename_Truncates(t *testing.T) {
	long := strings.Repeat("a", 69) + " b" + strings.Repeat("c", 20)
	got := SafeFilename(long)
	assert.Equal(t, strings.Repeat("a", 69), got, "trailing space left by the cut is trimmed")

	runes := strings.Repeat("é", 100)
	assert.Equal(t, MaxBaseNameLength, len([]rune(SafeFilename(runes))))
}

func TestDetectNameColumn(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		preferred string
		want      string
	}{
		{name: "preferred present", columns: []string{"ID", "Email"}, preferred: "Email", want: "Email"},
		{name: "preferred absent falls back", columns: []string{"Email", "ID"}, preferred: "Nope", want: "ID"},
		{name: "sheet prefixed", columns: []string{"People::Email", "People::PDF_Name"}, want: "People::PDF_Name"},
		{name: "first candidate wins", columns: []string{"filename", "ID"}, want: "filename"},
		{name: "case sensitive", columns: []string{"name", "id"}, want: ""},
		{name: "none", columns: []string{"a", "b"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectNameColumn(tt.columns, tt.preferred))
		})
	}
}

func TestNamer(t *testing.T) {
	n := newNamer("Name")

	assert.Equal(t, "Ada.pdf", n.next(1, form.Row{"Name": "Ada"}))
	assert.Equal(t, "Ada_2.pdf", n.next(2, form.Row{"Name": "Ada"}))
	assert.Equal(t, "Ada_3.pdf", n.next(3, form.Row{"Name": " Ada "}))
	assert.Equal(t, "row_004.pdf", n.next(4, form.Row{"Name": "  "}))
	assert.Equal(t, "row_005.pdf", n.next(5, form.Row{}))

	numbered := newNamer("")
	assert.Equal(t, "row_001.pdf", numbered.next(1, form.Row{"Name": "Ada"}))
	assert.Equal(t, "row_1000.pdf", numbered.next(1000, nil))
}

package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/form"
)

func TestParse(t *testing.T) {
	content := "\xef\xbb\xbfFullName,Consent,Notes\n" +
		"Ada Lovelace,Y,\"first, programmer\"\n" +
		"Alan Turing,true\n" +
		"Grace Hopper,no,x,extra\n"

	tbl, err := Parse([]byte(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"FullName", "Consent", "Notes"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, form.Row{"FullName": "Ada Lovelace", "Consent": "Y", "Notes": "first, programmer"}, tbl.Rows[0])
	assert.Equal(t, form.Row{"FullName": "Alan Turing", "Consent": "true", "Notes": ""}, tbl.Rows[1])
	assert.Equal(t, "x", tbl.Rows[2]["Notes"])
	assert.Len(t, tbl.Rows[2], 3)
}

func TestParse_Empty(t *testing.T) {
	tbl, err := Parse(nil)
	require.NoError(t, err)
	assert.Zero(t, tbl.Len())
	assert.Empty(t, tbl.Columns)

	tbl, err = Parse([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Zero(t, tbl.Len())
}

func TestParse_HeaderNormalization(t *testing.T) {
	tbl, err := Parse([]byte("id,,id, id ,\n1,2,3,4,5\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "Unnamed: 1", "id.1", "id.2", "Unnamed: 4"}, tbl.Columns)
	assert.Equal(t, "3", tbl.Rows[0]["id.1"])
}

func TestTable_Row(t *testing.T) {
	tbl, err := Parse([]byte("a\n1\n2\n"))
	require.NoError(t, err)

	row, err := tbl.Row(2)
	require.NoError(t, err)
	assert.Equal(t, "2", row["a"])

	_, err = tbl.Row(0)
	assert.Error(t, err)
	_, err = tbl.Row(3)
	assert.Error(t, err)

	assert.True(t, tbl.HasColumn("a"))
	assert.False(t, tbl.HasColumn("b"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "people.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("Name\nAda\n"), 0o600))
	tbl, err := Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, err = Load(filepath.Join(dir, "people.xlsx"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

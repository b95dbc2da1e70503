package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-filler/internal/form/formtest"
)

func TestParseMappings(t *testing.T) {
	m, err := parseMappings([]string{"Name=FullName", " Agree = Consent ", "Notes="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Name": "FullName", "Agree": "Consent", "Notes": ""}, m)

	m, err = parseMappings(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = parseMappings([]string{"NoEquals"})
	assert.Error(t, err)
	_, err = parseMappings([]string{"=Column"})
	assert.Error(t, err)
}

func TestMappingFlags_RequireSource(t *testing.T) {
	var m mappingFlags
	_, err := m.source()
	assert.Error(t, err)

	m.configPath = "mapping_rules.json"
	src, err := m.source()
	require.NoError(t, err)
	assert.Equal(t, "mapping_rules.json", src.ConfigPath)
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, Execute())
	return out.String()
}

func TestCommands_FieldsFillBatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "consent.pdf"), formtest.ConsentForm(), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "people.csv"),
		[]byte("Name,Consent\nAda Lovelace,yes\nAlan Turing,no\n"), 0o600))

	dirs := []string{
		"--work-dir", root,
		"--output-dir", filepath.Join(root, "output"),
		"--project-dir", filepath.Join(root, "projects"),
	}

	out := runCommand(t, append([]string{"fields", "consent.pdf"}, dirs...)...)
	assert.Equal(t, "Name\ttext\t0\nAgree\tcheckbox_or_radio\t0\n", out)

	out = runCommand(t, append([]string{"fill", "consent.pdf", "people.csv",
		"-m", "Name=Name", "-m", "Agree=Consent", "--row", "2"}, dirs...)...)
	assert.Contains(t, out, "preview_row_002.pdf: 2 fields written")

	out = runCommand(t, append([]string{"batch", "consent.pdf", "people.csv",
		"-m", "Name=Name", "-m", "Agree=Consent", "--out", "run"}, dirs...)...)
	assert.Contains(t, out, "1\tAda Lovelace.pdf\tOK\t2\n")
	assert.Contains(t, out, "2 rows: 2 OK, 0 zero filled, 0 errors")
	assert.FileExists(t, filepath.Join(root, "output", "run", "Alan Turing.pdf"))

	out = runCommand(t, append([]string{"locate", "consent.pdf", "-f", "Name"}, dirs...)...)
	assert.True(t, strings.HasPrefix(out, "page 0 mediabox [0 0 612 792]\n"), out)
	assert.Contains(t, out, "Name\ttext\t[50 700 300 720]")
}

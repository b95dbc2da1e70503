package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSandbox(t *testing.T) {
	_, err := NewSandbox("")
	assert.Error(t, err)

	s, err := NewSandbox("/non/existent/root/")
	require.NoError(t, err)
	assert.Equal(t, "/non/existent/root", s.Root())
}

func TestSandbox_Resolve(t *testing.T) {
	root := t.TempDir()
	s, err := NewSandbox(root)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(root, "forms"), 0o750))

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "relative", path: "forms/a.pdf", want: filepath.Join(root, "forms", "a.pdf")},
		{name: "absolute inside", path: filepath.Join(root, "b.csv"), want: filepath.Join(root, "b.csv")},
		{name: "root itself", path: root, want: root},
		{name: "dot segments inside", path: "forms/../c.pdf", want: filepath.Join(root, "c.pdf")},
		{name: "not yet created", path: "out/new/d.pdf", want: filepath.Join(root, "out", "new", "d.pdf")},
		{name: "escape with dots", path: "../outside.pdf", wantErr: true},
		{name: "absolute outside", path: "/etc/passwd", wantErr: true},
		{name: "sibling prefix", path: root + "-other/x.pdf", wantErr: true},
		{name: "empty", path: "", wantErr: true},
		{name: "null bytes only", path: "\x00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, s.Contains(tt.path))
		})
	}
}

func TestSandbox_RejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	s, err := NewSandbox(root)
	require.NoError(t, err)

	link := filepath.Join(root, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err = s.Resolve("link/secret.pdf")
	assert.ErrorIs(t, err, ErrOutsideSandbox)

	inner := filepath.Join(root, "inner")
	require.NoError(t, os.Mkdir(inner, 0o750))
	require.NoError(t, os.Symlink(inner, filepath.Join(root, "alias")))
	_, err = s.Resolve("alias/ok.pdf")
	assert.NoError(t, err)
}

func TestSandbox_ResolveDir(t *testing.T) {
	root := t.TempDir()
	s, err := NewSandbox(root)
	require.NoError(t, err)

	file := filepath.Join(root, "file.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err = s.ResolveDir("file.pdf")
	assert.Error(t, err)

	dir, err := s.ResolveDir("missing-dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "missing-dir"), dir)
}

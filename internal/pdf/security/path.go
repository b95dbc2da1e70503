// Package security confines file arguments to the configured work directory.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideSandbox is returned for paths that escape the sandbox root.
var ErrOutsideSandbox = errors.New("path is outside the work directory")

// Sandbox resolves user supplied paths against a root directory and rejects
// anything that lands outside it, including through symlinks.
type Sandbox struct {
	root string
}

// NewSandbox creates a sandbox rooted at root. The root does not have to
// exist yet.
func NewSandbox(root string) (*Sandbox, error) {
	if root == "" {
		return nil, fmt.Errorf("sandbox root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root: %w", err)
	}
	return &Sandbox{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute sandbox root.
func (s *Sandbox) Root() string {
	return s.root
}

// Resolve returns the absolute, cleaned form of path. Relative paths are
// taken relative to the root. The result, and its symlink target when it
// exists, must stay inside the root.
func (s *Sandbox) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	clean := filepath.Clean(path)

	if !within(clean, s.root) {
		return "", fmt.Errorf("%w: %s", ErrOutsideSandbox, path)
	}

	realRoot := s.root
	if resolved, err := filepath.EvalSymlinks(s.root); err == nil {
		realRoot = resolved
	}
	if real, ok := realPath(clean); ok && !within(real, realRoot) && !within(real, s.root) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideSandbox, path, real)
	}

	return clean, nil
}

// ResolveDir is Resolve for directories: it rejects paths that exist and
// are not directories.
func (s *Sandbox) ResolveDir(path string) (string, error) {
	dir, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", path)
	}
	return dir, nil
}

// Contains reports whether path resolves inside the sandbox.
func (s *Sandbox) Contains(path string) bool {
	_, err := s.Resolve(path)
	return err == nil
}

// realPath evaluates symlinks in path, or in its closest existing ancestor
// for paths that do not exist yet.
func realPath(path string) (string, bool) {
	rest := ""
	for p := path; ; p = filepath.Dir(p) {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(resolved, rest), true
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", false
		}
		rest = filepath.Join(filepath.Base(p), rest)
	}
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// Package project persists named mapping projects as JSON documents.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// DefaultListLimit is used by List when limit is not positive.
const DefaultListLimit = 50

// Payload is the free-form content of a project.
type Payload map[string]any

// Store keeps one JSON file per project in a directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// NewID returns a fresh project id: a time-ordered UUID without dashes.
func NewID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// Path returns the file that holds id. Characters other than letters and
// digits are dropped from id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, sanitizeID(id)+".json")
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, id)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	return nil
}

// Save writes payload under id, stamping project_id and updated_at (unix
// seconds). The caller's map is not modified. It returns the file path.
func (s *Store) Save(id string, payload Payload) (string, error) {
	if sanitizeID(id) == "" {
		return "", fmt.Errorf("invalid project id %q", id)
	}
	if err := s.ensureDir(); err != nil {
		return "", err
	}

	doc := make(Payload, len(payload)+2)
	for k, v := range payload {
		doc[k] = v
	}
	doc["project_id"] = id
	doc["updated_at"] = s.now().Unix()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode project: %w", err)
	}

	path := s.Path(id)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write project: %w", err)
	}
	return path, nil
}

// Load reads the project id. A project that does not exist yields (nil, nil).
func (s *Store) Load(id string) (Payload, error) {
	if sanitizeID(id) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return p, nil
}

// List returns up to limit project ids, most recently written first.
func (s *Store) List(limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	type stamped struct {
		id      string
		modTime time.Time
	}
	var found []stamped
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, stamped{id: strings.TrimSuffix(e.Name(), ".json"), modTime: info.ModTime()})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].modTime.Equal(found[j].modTime) {
			return found[i].modTime.After(found[j].modTime)
		}
		return found[i].id > found[j].id
	})

	if len(found) > limit {
		found = found[:limit]
	}
	ids := make([]string, len(found))
	for i, f := range found {
		ids[i] = f.id
	}
	return ids, nil
}

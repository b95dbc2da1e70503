package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DirSink writes each document into a directory.
type DirSink struct {
	Dir string
}

// Put writes data to Dir/name.
func (s DirSink) Put(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o600)
}

// File is one named document held in memory.
type File struct {
	Name string
	Data []byte
}

// MemorySink keeps documents in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Put stores a copy of data under name.
func (s *MemorySink) Put(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), data...)
	return nil
}

// Get returns the document stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[name]
	return data, ok
}

// Len returns the number of stored documents.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Files returns the stored documents ordered as in report.
func (s *MemorySink) Files(report *Report) []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []File
	for _, e := range report.Entries {
		if data, ok := s.files[e.File]; ok {
			out = append(out, File{Name: e.File, Data: data})
		}
	}
	return out
}

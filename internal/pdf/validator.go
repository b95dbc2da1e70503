package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FileKind tells the validator which extension and content checks apply.
type FileKind string

const (
	KindTemplate FileKind = "template"
	KindData     FileKind = "data"
	KindConfig   FileKind = "config"
)

var kindExtensions = map[FileKind]string{
	KindTemplate: ".pdf",
	KindData:     ".csv",
	KindConfig:   ".json",
}

// Validator checks input files before they are parsed.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator that rejects files above maxFileSize bytes.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile reports whether path is acceptable as kind. Validation
// failures are part of the result, not an error.
func (v *Validator) ValidateFile(path string, kind FileKind) *ValidateFileResult {
	result := &ValidateFileResult{
		Path: path,
		Kind: kind,
	}

	data, err := v.ReadFile(path, kind)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.Valid = true
	result.Size = int64(len(data))
	result.Message = fmt.Sprintf("valid %s file", kind)
	return result
}

// ReadFile validates path as kind and returns its contents.
func (v *Validator) ReadFile(path string, kind FileKind) ([]byte, error) {
	if err := v.checkFileInfo(path, kind); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}

	if kind == KindTemplate {
		if err := checkPDF(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (v *Validator) checkFileInfo(path string, kind FileKind) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if ext, ok := kindExtensions[kind]; ok && !strings.EqualFold(filepath.Ext(path), ext) {
		return fmt.Errorf("%s file must have a %s extension: %s", kind, ext, path)
	}

	if info.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)
	}

	return nil
}

// checkPDF proves data is a readable PDF with at least one page. Form
// specific checks happen later, when the template is opened for its fields.
// The reader panics on some malformed files (a bad startxref offset, for
// one), so the panic is reported as an invalid file.
func checkPDF(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid PDF file: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	if r.NumPage() == 0 {
		return fmt.Errorf("invalid PDF file: no pages")
	}
	return nil
}

package form

import (
	"errors"
	"fmt"
)

// Sentinel errors for templates that cannot be cataloged or filled at all.
var (
	ErrNoAcroForm      = errors.New("PDF has no AcroForm fields (not standard fillable)")
	ErrXFAUnsupported  = errors.New("PDF uses XFA forms; convert to AcroForm first")
	ErrNoFields        = errors.New("AcroForm exists, but no fields found in AcroForm.Fields")
	ErrUnreadableInput = errors.New("PDF could not be parsed")
)

// ErrorKind categorizes template-level failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnreadable
	KindMissingAcroForm
	KindXFA
	KindEmptyFieldList
	KindWrite
)

// String returns the report label of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindUnreadable:
		return "UNREADABLE"
	case KindMissingAcroForm:
		return "MISSING_ACROFORM"
	case KindXFA:
		return "XFA_UNSUPPORTED"
	case KindEmptyFieldList:
		return "EMPTY_FIELD_LIST"
	case KindWrite:
		return "WRITE_FAILED"
	default:
		return "UNKNOWN"
	}
}

// TemplateError is a fatal error for a whole template: nothing downstream of it
// (catalog or fill) can be trusted.
type TemplateError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *TemplateError) Error() string {
	if e.Err != nil && e.Message != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

func templateError(kind ErrorKind, err error, format string, args ...any) *TemplateError {
	return &TemplateError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// IsTemplateError reports whether err is fatal for the whole template.
func IsTemplateError(err error) bool {
	var te *TemplateError
	return errors.As(err, &te)
}

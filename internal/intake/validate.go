package intake

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"intake-go/internal/model"
)

var (
	// ErrUnsupportedType rejects files that are neither images nor PDFs.
	ErrUnsupportedType = errors.New("only images and PDF files are allowed")

	// ErrTooLarge rejects files at or above the size limit.
	ErrTooLarge = errors.New("file is too large")
)

// ValidationError reports why a file was refused at intake.
type ValidationError struct {
	Name  string
	Err   error // ErrUnsupportedType or ErrTooLarge
	Limit int64 // size limit in bytes, for ErrTooLarge
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrTooLarge) {
		return fmt.Sprintf("%s: file must be smaller than %s", e.Name, formatSize(e.Limit))
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Rules decides which files are accepted.
type Rules struct {
	MaxSize      int64    // bytes; files must be strictly smaller
	AllowedTypes []string // MIME types

	validate *validator.Validate
}

// NewRules creates Rules for the given limits.
func NewRules(maxSize int64, allowedTypes []string) *Rules {
	return &Rules{
		MaxSize:      maxSize,
		AllowedTypes: allowedTypes,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate checks f against the type rule first, then the size rule.
func (r *Rules) Validate(f File) error {
	typeRule := "required,oneof=" + strings.Join(r.AllowedTypes, " ")
	if err := r.validate.Var(f.ContentType, typeRule); err != nil {
		return r.wrap(f, ErrUnsupportedType, err)
	}

	sizeRule := fmt.Sprintf("min=0,lt=%d", r.MaxSize)
	if err := r.validate.Var(f.Size, sizeRule); err != nil {
		return r.wrap(f, ErrTooLarge, err)
	}

	return nil
}

// wrap converts a validator failure into a ValidationError. Anything other
// than a rule violation means the rule itself is malformed.
func (r *Rules) wrap(f File, reason error, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating %s: %w", f.Name, err)
	}
	return &ValidationError{Name: f.Name, Err: reason, Limit: r.MaxSize}
}

// formatSize renders a byte count the way upload limits are usually quoted.
func formatSize(n int64) string {
	const mib = 1024 * 1024
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= 1024 && n%1024 == 0:
		return fmt.Sprintf("%dKB", n/1024)
	}
	return fmt.Sprintf("%d bytes", n)
}

// KindOf maps a MIME type to a document kind. ok is false for anything
// that is neither an image nor a PDF.
func KindOf(contentType string) (kind model.Kind, ok bool) {
	switch {
	case contentType == "application/pdf":
		return model.KindPDF, true
	case strings.HasPrefix(contentType, "image/"):
		return model.KindImage, true
	}
	return "", false
}

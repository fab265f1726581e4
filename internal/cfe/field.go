package cfe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrFieldMissing marks a required element or attribute that is absent.
	ErrFieldMissing = errors.New("required field is missing")

	// ErrInvalidValue marks a field whose text cannot be interpreted.
	ErrInvalidValue = errors.New("invalid field value")
)

// FieldError reports a problem with one field of the document. Path uses
// the element path inside the root, e.g. "infCFe/emit/xNome".
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrFieldMissing) {
		return fmt.Sprintf("cfe: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cfe: %s: %v %q", e.Path, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(path string) error {
	return &FieldError{Path: path, Err: ErrFieldMissing}
}

func invalid(path, value string, cause error) error {
	err := ErrInvalidValue
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidValue, cause)
	}
	return &FieldError{Path: path, Value: value, Err: err}
}

// Field is the text of an element or attribute together with whether it
// was present in the document at all.
type Field struct {
	Value string
	Set   bool
}

// UnmarshalXML records the trimmed character data of the element.
func (f *Field) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	f.Value = strings.TrimSpace(s)
	f.Set = true
	return nil
}

// UnmarshalXMLAttr records the trimmed attribute value.
func (f *Field) UnmarshalXMLAttr(attr xml.Attr) error {
	f.Value = strings.TrimSpace(attr.Value)
	f.Set = true
	return nil
}

// Or returns the value, or def when the field is absent or blank.
func (f Field) Or(def string) string {
	if !f.Set || f.Value == "" {
		return def
	}
	return f.Value
}

// Text returns the value, or "" when the field is absent.
func (f Field) Text() string {
	return f.Value
}

// Either returns the first field that is present and not blank, or b.
func Either(a, b Field) Field {
	if a.Set && a.Value != "" {
		return a
	}
	return b
}

// Required returns the value of a field that must be present.
func Required(f Field, path string) (string, error) {
	if !f.Set {
		return "", missing(path)
	}
	return f.Value, nil
}

// RequiredDecimal parses a field that must be present.
func RequiredDecimal(f Field, path string) (decimal.Decimal, error) {
	if !f.Set {
		return decimal.Decimal{}, missing(path)
	}
	return parseDecimal(f.Value, path)
}

// DecimalOr parses a field, returning def when it is absent.
func DecimalOr(f Field, path string, def decimal.Decimal) (decimal.Decimal, error) {
	if !f.Set || f.Value == "" {
		return def, nil
	}
	return parseDecimal(f.Value, path)
}

func parseDecimal(s, path string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, invalid(path, s, nil)
	}
	return d, nil
}

package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// outputFormats are the values accepted by --output.
var outputFormats = []string{"text", "json"}

// formatValue implements pflag.Value to provide a custom type name in help text
// and validation for output formats.
type formatValue string

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(v string) error {
	v = strings.ToLower(v)
	if !slices.Contains(outputFormats, v) {
		return fmt.Errorf("must be one of: %s", strings.Join(outputFormats, ", "))
	}
	*f = formatValue(v)
	return nil
}

func (f *formatValue) Type() string {
	return "<format>"
}

// pathValue implements pflag.Value to provide a custom type name in help text.
// An explicitly given path may not be empty.
type pathValue string

func (p *pathValue) String() string {
	return string(*p)
}

func (p *pathValue) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("path must not be empty")
	}
	*p = pathValue(filepath.Clean(v))
	return nil
}

func (p *pathValue) Type() string {
	return "<path>"
}

package config

import (
	"fmt"
)

type MissingConfigError struct {
	Path string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

type ConfigExistsError struct {
	Path string
}

func (e *ConfigExistsError) Error() string {
	return fmt.Sprintf("%s already exists; use --force to overwrite it", e.Path)
}

type UnsupportedConfigFormatError struct {
	Path string
}

func (e *UnsupportedConfigFormatError) Error() string {
	return fmt.Sprintf("config file %s must end in .yml, .yaml or .toml", e.Path)
}

// InvalidConfigDocumentError is returned when a config file cannot be parsed at all.
type InvalidConfigDocumentError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigDocumentError) Error() string {
	return fmt.Sprintf("%s is not a valid config document: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigDocumentError) Unwrap() error {
	return e.Wrapped
}

// InvalidConfigError is returned when a parsed config file does not match the step table schema.
type InvalidConfigError struct {
	Path    string
	Wrapped error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%s does not describe a valid step table: %v", e.Path, e.Wrapped)
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Wrapped
}

type DuplicateStepError struct {
	Path string
	Name string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("%s defines step '%s' more than once", e.Path, e.Name)
}

type InvalidStepDirError struct {
	Path string
	Step string
	Dir  string
}

func (e *InvalidStepDirError) Error() string {
	return fmt.Sprintf(
		"%s: step '%s' has dir '%s'; dirs must be relative to the repository root and stay inside it",
		e.Path,
		e.Step,
		e.Dir,
	)
}

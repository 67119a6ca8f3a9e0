// Package config loads the step table that monofmt runs.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/andyballingall/monofmt/internal/fs"
	"github.com/andyballingall/monofmt/internal/runner"
	"github.com/andyballingall/monofmt/internal/validator"
)

const (
	// ConfigEnvVar names a config file to use instead of searching the repository root.
	ConfigEnvVar = "MONOFMT_CONFIG"

	// DefaultConfigFile is the file written by `monofmt init`.
	DefaultConfigFile = ".monofmt.yml"

	// BuiltinSource is the Table.Source of the built-in step table.
	BuiltinSource = "built-in"

	schemaID = "https://github.com/andyballingall/monofmt/config.schema.json"
)

// SearchFiles are looked for at the repository root, in order. The first one found wins.
var SearchFiles = []string{".monofmt.yml", ".monofmt.yaml", ".monofmt.toml"}

//go:embed config.schema.json
var schemaJSON []byte

// DefaultConfigContent is the built-in step table. `monofmt init` writes it out so it can be edited.
const DefaultConfigContent = `# monofmt step table
#
# Steps run one at a time, top to bottom. The first step that fails stops the
# run and its exit status becomes monofmt's exit status.
#
#   name:        used in logs and reports; must be unique
#   dir:         working directory, relative to the repository root (default ".")
#   command:     executable plus any fixed sub-command words
#   args:        appended to command
#   enabled:     set to false to keep a step in the table without running it
steps:
  - name: license
    description: Add missing license headers
    dir: .
    command: [addlicense]
    args: ["-l", "apache", "."]

  - name: toml
    description: Format TOML files
    dir: .
    command: [taplo, format]

  # Import sorting and style formatting are two separate invocations; both must succeed.
  - name: py-imports
    description: Sort Python imports
    dir: py
    command: [ruff, check]
    args: ["--select", "I", "--fix", "."]

  - name: py-format
    description: Format Python sources
    dir: py
    command: [ruff, format]
    args: ["."]

  - name: go
    description: Format Go sources
    dir: go
    command: [gofmt]
    args: ["-l", "-w", "."]

  - name: web
    description: Format JavaScript and TypeScript sources
    dir: js
    command: [npx, prettier]
    args: ["--write", "."]
    enabled: false
`

// Table is a loaded step table and where it came from.
type Table struct {
	Source string
	Steps  []runner.Step
}

type fileDoc struct {
	Steps []fileStep `json:"steps"`
}

type fileStep struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Dir         string   `json:"dir"`
	Command     []string `json:"command"`
	Args        []string `json:"args"`
	Enabled     *bool    `json:"enabled"`
}

// Loader finds, parses and validates step tables.
type Loader struct {
	explicitPath string
	baseDir      string
	envProvider  fs.EnvProvider
	compiler     validator.Compiler
	logger       *slog.Logger

	compileOnce sync.Once
	schema      validator.Validator
	schemaErr   error
}

// NewLoader creates a Loader. explicitPath, when set, takes precedence over the
// MONOFMT_CONFIG environment variable, which takes precedence over searching the root.
func NewLoader(explicitPath string, envProvider fs.EnvProvider, logger *slog.Logger) *Loader {
	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		explicitPath: explicitPath,
		envProvider:  envProvider,
		compiler:     validator.NewSanthoshCompiler(),
		logger:       logger.With("component", "config"),
	}
}

// SetBaseDir makes relative explicit paths (from the caller or MONOFMT_CONFIG)
// resolve against dir rather than the process working directory.
func (l *Loader) SetBaseDir(dir string) {
	l.baseDir = dir
}

// Steps implements runner.StepLoader.
func (l *Loader) Steps(root string) ([]runner.Step, error) {
	t, err := l.Load(root)
	if err != nil {
		return nil, err
	}
	return t.Steps, nil
}

// Load returns the step table for root.
func (l *Loader) Load(root string) (*Table, error) {
	path, err := l.locate(root)
	if err != nil {
		return nil, err
	}

	if path == "" {
		l.logger.Debug("using built-in step table")
		return l.parse(BuiltinSource, formatYAML, []byte(DefaultConfigContent))
	}

	l.logger.Debug("loading step table", "path", path)
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.parse(path, f, data)
}

// Default returns the built-in step table.
func Default() (*Table, error) {
	return NewLoader("", fs.MapEnvProvider{}, nil).parse(BuiltinSource, formatYAML, []byte(DefaultConfigContent))
}

// WriteDefault writes the built-in step table to DefaultConfigFile under root so it can be edited.
// An existing file is only replaced when force is set.
func WriteDefault(root string, force bool) (string, error) {
	path := filepath.Join(root, DefaultConfigFile)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", &ConfigExistsError{Path: path}
		}
	}
	if err := os.WriteFile(path, []byte(DefaultConfigContent), 0o644); err != nil { //nolint:gosec // config is not secret
		return "", err
	}
	return path, nil
}

type format int

const (
	formatYAML format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return formatYAML, nil
	case ".toml":
		return formatTOML, nil
	default:
		return 0, &UnsupportedConfigFormatError{Path: path}
	}
}

// locate returns the config file to use, or "" for the built-in table.
func (l *Loader) locate(root string) (string, error) {
	explicit := l.explicitPath
	if explicit == "" {
		explicit = l.envProvider.Get(ConfigEnvVar)
	}
	if explicit != "" {
		if l.baseDir != "" && !filepath.IsAbs(explicit) {
			explicit = filepath.Join(l.baseDir, explicit)
		}
		abs, err := fs.Abs(explicit)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				return "", &MissingConfigError{Path: abs}
			}
			return "", err
		}
		return abs, nil
	}

	for _, name := range SearchFiles {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// parse decodes a YAML or TOML document, validates it against the step table
// schema and converts it to a Table.
func (l *Loader) parse(path string, f format, data []byte) (*Table, error) {
	raw, err := decode(path, f, data)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so both formats are validated the same way.
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, &InvalidConfigDocumentError{Path: path, Wrapped: err}
	}

	if err := l.validate(path, jsonData); err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, &InvalidConfigDocumentError{Path: path, Wrapped: err}
	}

	return toTable(path, doc)
}

func decode(path string, f format, data []byte) (any, error) {
	if f == formatTOML {
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, &InvalidConfigDocumentError{Path: path, Wrapped: err}
		}
		return m, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidConfigDocumentError{Path: path, Wrapped: err}
	}
	return raw, nil
}

// stepTableSchema compiles the embedded schema the first time it is needed.
func (l *Loader) stepTableSchema() (validator.Validator, error) {
	l.compileOnce.Do(func() {
		schemaDoc, err := validator.ParseJSON(schemaJSON)
		if err == nil {
			err = l.compiler.AddSchema(schemaID, schemaDoc)
		}
		if err == nil {
			l.schema, err = l.compiler.Compile(schemaID)
		}
		if err != nil {
			l.schemaErr = fmt.Errorf("step table schema is corrupt: %w", err)
		}
	})
	return l.schema, l.schemaErr
}

func (l *Loader) validate(path string, jsonData []byte) error {
	v, err := l.stepTableSchema()
	if err != nil {
		return err
	}

	doc, err := validator.ParseJSON(jsonData)
	if err != nil {
		return &InvalidConfigDocumentError{Path: path, Wrapped: err}
	}
	if err := v.Validate(doc); err != nil {
		return &InvalidConfigError{Path: path, Wrapped: err}
	}
	return nil
}

func toTable(source string, doc fileDoc) (*Table, error) {
	seen := make(map[string]bool, len(doc.Steps))
	steps := make([]runner.Step, 0, len(doc.Steps))

	for _, fsStep := range doc.Steps {
		if seen[fsStep.Name] {
			return nil, &DuplicateStepError{Path: source, Name: fsStep.Name}
		}
		seen[fsStep.Name] = true

		dir := fsStep.Dir
		if dir == "" {
			dir = "."
		}
		if !fs.IsWithin(dir) {
			return nil, &InvalidStepDirError{Path: source, Step: fsStep.Name, Dir: dir}
		}

		enabled := true
		if fsStep.Enabled != nil {
			enabled = *fsStep.Enabled
		}

		steps = append(steps, runner.Step{
			Name:        fsStep.Name,
			Description: fsStep.Description,
			Dir:         filepath.Clean(dir),
			Command:     fsStep.Command,
			Args:        fsStep.Args,
			Enabled:     enabled,
		})
	}

	return &Table{Source: source, Steps: steps}, nil
}

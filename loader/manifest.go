package loader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes a load run in YAML.
//
//	database: bookstore
//	batch_size: 500
//	parallelism: 4
//	mode: concurrent
//	drain: file
//	continue_on_error: false
//	max_attempts: 3
//	retry_delay: 250ms
//	files:
//	  - contributors.tql
//	  - books.tql
//
// Omitted settings keep their DefaultConfig values. Relative file paths are
// resolved against the directory holding the manifest.
type Manifest struct {
	Database        string        `yaml:"database"`
	BatchSize       int           `yaml:"batch_size"`
	Parallelism     int           `yaml:"parallelism"`
	Mode            Mode          `yaml:"mode"`
	Drain           DrainPolicy   `yaml:"drain"`
	ContinueOnError *bool         `yaml:"continue_on_error"`
	MaxAttempts     int           `yaml:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	ReportInterval  int           `yaml:"report_interval"`
	Files           []string      `yaml:"files"`
}

// LoadManifest reads and parses the manifest at path. Unknown keys are rejected.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i, f := range m.Files {
		if !filepath.IsAbs(f) {
			m.Files[i] = filepath.Join(dir, f)
		}
	}
	return m, nil
}

// ParseManifest parses manifest YAML. File paths are returned as written.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("%w: no files listed", ErrInvalidManifest)
	}
	return &m, nil
}

// Config overlays the manifest's settings on DefaultConfig and validates the result.
func (m *Manifest) Config() (*Config, error) {
	cfg := DefaultConfig()
	if m.Database != "" {
		cfg.Database = m.Database
	}
	if m.BatchSize != 0 {
		cfg.BatchSize = m.BatchSize
	}
	if m.Parallelism != 0 {
		cfg.Parallelism = m.Parallelism
	}
	if m.Mode != "" {
		cfg.Mode = m.Mode
	}
	if m.Drain != "" {
		cfg.DrainEach = m.Drain
	}
	if m.ContinueOnError != nil {
		cfg.ContinueOnError = *m.ContinueOnError
	}
	if m.MaxAttempts != 0 {
		cfg.MaxAttempts = m.MaxAttempts
	}
	if m.RetryDelay != 0 {
		cfg.RetryDelay = m.RetryDelay
	}
	if m.ReportInterval != 0 {
		cfg.ReportInterval = m.ReportInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return cfg, nil
}

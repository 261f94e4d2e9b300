package internal

import (
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	State      StateConfig       `yaml:"state"`
	History    HistoryConfig     `yaml:"history"`
	Validation ValidationConfig  `yaml:"validation"`
	Import     ImportConfig      `yaml:"import"`
	Export     ExportConfig      `yaml:"export"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error { return nil }

// StateConfig holds the session state directory, home of the snapshot
// file and the history index.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// HistoryConfig holds scan history settings. IndexFile names the SQLite
// mirror inside the state directory; empty disables the index.
type HistoryConfig struct {
	Dir       string `yaml:"dir"`
	IndexFile string `yaml:"index_file"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// ValidationConfig holds the default barcode validation mode for new
// sessions. A restored snapshot carries its own flag.
type ValidationConfig struct {
	Strict bool `yaml:"strict"`
}

// ImportConfig holds CSV import settings.
//
// Strict re-enables strict barcode validation during import; the default
// is permissive so strict-mode exports re-import regardless of how the
// session flag was toggled in between. WatchDir, when set, is a hot
// folder: dropped .csv files are merged into the session automatically.
type ImportConfig struct {
	Strict   bool   `yaml:"strict"`
	WatchDir string `yaml:"watch_dir"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	SheetPrefix string `yaml:"sheet_prefix"`
}

// Validate validates the export configuration.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SheetPrefix, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// State lives under an application-specific hidden directory in the
// user's home location.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	stateDir := filepath.Join(home, ".scanbox")
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		State: StateConfig{
			Dir: stateDir,
		},
		History: HistoryConfig{
			Dir:       filepath.Join(stateDir, "logs"),
			IndexFile: "history.db",
		},
		Validation: ValidationConfig{
			Strict: true,
		},
		Import: ImportConfig{
			Strict: false,
		},
		Export: ExportConfig{
			SheetPrefix: "Box ",
		},
	}
}

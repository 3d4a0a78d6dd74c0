// Package config handles configuration loading and validation for prepfiles.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"prepfiles/internal/output"
	"prepfiles/internal/scanner"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidJSON     ConfigErrorType = "INVALID_JSON"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
	MissingRoot     ConfigErrorType = "MISSING_ROOT"
	InvalidRoot     ConfigErrorType = "INVALID_ROOT"
	NoMode          ConfigErrorType = "NO_MODE"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidJSON:
		return fmt.Sprintf("invalid JSON in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	case MissingRoot:
		return "--root is required"
	case InvalidRoot:
		return fmt.Sprintf("invalid root %s: %s", e.Path, e.Message)
	case NoMode:
		return "select at least one of --filenames, --metadata or --apply"
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Settings is the optional JSON settings file.
type Settings struct {
	AudioExtensions []string `json:"audioExtensions,omitempty"`
	Verbose         *bool    `json:"verbose,omitempty"`
}

// Configuration holds all settings for one run.
type Configuration struct {
	Root       string
	Filenames  bool
	Metadata   bool
	Apply      bool
	Yes        bool
	Verbose    bool
	Color      output.ColorMode
	ConfigFile string
	Help       bool

	AudioExtensions []string
}

// RunsFilenames reports whether the rename stage is selected.
func (c *Configuration) RunsFilenames() bool {
	return c.Filenames || c.Apply
}

// RunsMetadata reports whether the metadata stage is selected.
func (c *Configuration) RunsMetadata() bool {
	return c.Metadata || c.Apply
}

// Interactive reports whether the rename plan needs confirmation before it
// is executed. --apply and --yes both skip the gate.
func (c *Configuration) Interactive() bool {
	return !c.Apply && !c.Yes
}

// NewFlagSet builds the command line flag set bound to cfg.
func NewFlagSet(name string, cfg *Configuration, color *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	fs.BoolVar(&cfg.Filenames, "filenames", false, "rename album folders and track files into canonical form")
	fs.BoolVar(&cfg.Metadata, "metadata", false, "write tags derived from Artist/Album (YYYY)/NN Title paths")
	fs.BoolVar(&cfg.Apply, "apply", false, "run both stages without confirmation")
	fs.StringVar(&cfg.Root, "root", "", "music library root containing artist folders")
	fs.BoolVar(&cfg.Yes, "yes", false, "skip the confirmation prompt")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "print every planned change")
	fs.StringVar(color, "color", string(output.ColorAuto), "colorize output: auto, always or never")
	fs.StringVar(&cfg.ConfigFile, "config", "", "optional JSON settings file")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "show this help")
	return fs
}

// ParseFlags parses command line arguments (without the program name) and
// merges the settings file, if one is named. Flags override the file.
func ParseFlags(args []string, stderr io.Writer) (*Configuration, *pflag.FlagSet, error) {
	cfg := &Configuration{}
	var color string
	fs := NewFlagSet("prepfiles", cfg, &color)
	fs.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}
	if fs.NArg() > 0 {
		return nil, fs, &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("unexpected arguments: %v", fs.Args()),
		}
	}

	mode, err := output.ParseColorMode(color)
	if err != nil {
		return nil, fs, &ConfigError{Type: ValidationError, Message: err.Error()}
	}
	cfg.Color = mode
	cfg.AudioExtensions = scanner.DefaultAudioExtensions

	if cfg.ConfigFile != "" {
		settings, err := Load(cfg.ConfigFile)
		if err != nil {
			return nil, fs, err
		}
		if len(settings.AudioExtensions) > 0 {
			cfg.AudioExtensions = settings.AudioExtensions
		}
		if settings.Verbose != nil && !fs.Changed("verbose") {
			cfg.Verbose = *settings.Verbose
		}
	}

	return cfg, fs, nil
}

// Load reads and parses a settings file from the given path.
func Load(filePath string) (*Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Validate checks the settings file values.
func (s *Settings) Validate() error {
	for i, ext := range s.AudioExtensions {
		if ext == "" || ext == "." {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("audioExtensions[%d] cannot be empty", i),
			}
		}
	}
	return nil
}

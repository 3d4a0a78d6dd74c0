package config

import (
	"os"
	"path/filepath"
)

// Validate checks that a stage is selected and that the root is an existing
// directory. On success Root is replaced by its absolute form. Nothing on
// disk is touched.
func (c *Configuration) Validate() error {
	if !c.RunsFilenames() && !c.RunsMetadata() {
		return &ConfigError{Type: NoMode}
	}

	if c.Root == "" {
		return &ConfigError{Type: MissingRoot}
	}

	abs, err := filepath.Abs(c.Root)
	if err != nil {
		return &ConfigError{Type: InvalidRoot, Path: c.Root, Message: err.Error()}
	}

	info, err := os.Stat(abs)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return &ConfigError{Type: InvalidRoot, Path: c.Root, Message: "directory does not exist"}
		case os.IsPermission(err):
			return &ConfigError{Type: InvalidRoot, Path: c.Root, Message: "directory is not accessible"}
		default:
			return &ConfigError{Type: InvalidRoot, Path: c.Root, Message: err.Error()}
		}
	}
	if !info.IsDir() {
		return &ConfigError{Type: InvalidRoot, Path: c.Root, Message: "path is not a directory"}
	}

	c.Root = abs
	return nil
}

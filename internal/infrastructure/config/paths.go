package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths places studyflow's files inside the data directory.
type Paths struct {
	DataDir string
}

func (c *Config) Paths() Paths {
	return Paths{DataDir: c.Storage.DataDir}
}

// Ensure creates the data directory.
func (p Paths) Ensure() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(p.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Resolve returns the path of filename directly inside the data directory.
// Names that would escape it or reach into a subdirectory are rejected.
func (p Paths) Resolve(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	baseDir, err := filepath.Abs(p.DataDir)
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir+string(filepath.Separator)) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	return cleanPath, nil
}

// Database returns the SQLite file path for cfg.
func (c *Config) Database() (string, error) {
	return c.Paths().Resolve(c.Storage.Database)
}

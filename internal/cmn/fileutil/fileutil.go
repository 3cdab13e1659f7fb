package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileExists reports whether the named file exists.
// It returns false if os.Stat reports the file does not exist and true
// otherwise (including when os.Stat returns a different error).
func FileExists(file string) bool {
	_, err := os.Stat(file)
	return !os.IsNotExist(err)
}

// OpenOrCreateFile opens or creates the named file for appending and sets
// permissions to 0600.
func OpenOrCreateFile(name string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	file, err := os.OpenFile(name, flags, 0600) // nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to create/open file %s: %w", name, err)
	}
	return file, nil
}

const (
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"
)

var validYAMLExtensions = []string{yamlExtension, ymlExtension}

// IsYAMLFile checks if a file has a valid YAML extension (.yaml or .yml).
func IsYAMLFile(filename string) bool {
	if filename == "" {
		return false
	}
	return slices.Contains(validYAMLExtensions, filepath.Ext(filename))
}

// TrimYAMLFileExtension trims the .yml or .yaml extension from a filename.
func TrimYAMLFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if slices.Contains(validYAMLExtensions, ext) {
		return strings.TrimSuffix(filename, ext)
	}
	return filename
}

// ResolvePath resolves a path to an absolute path.
// It handles empty paths, tilde expansion, environment variables,
// and converts to an absolute path.
func ResolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(absPath), nil
}

// BuildFilePath joins the directory, the file name and the trimmed suffix.
// A separator is inserted only when dir does not already end with one.
func BuildFilePath(dir, fileName, suffix string) string {
	if !strings.HasSuffix(dir, string(os.PathSeparator)) && !strings.HasSuffix(dir, "/") {
		dir += string(os.PathSeparator)
	}
	return dir + fileName + strings.TrimSpace(suffix)
}

// ListNames returns the names of the direct entries of dir. Subdirectories
// are listed but not descended into.
func ListNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// ListNamesWithPrefix returns the names of the direct entries of dir that
// start with prefix.
func ListNamesWithPrefix(dir, prefix string) ([]string, error) {
	names, err := ListNames(dir)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(names, func(n string) bool {
		return !strings.HasPrefix(n, prefix)
	}), nil
}

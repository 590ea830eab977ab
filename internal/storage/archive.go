package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive stores generated settlement statements on the local filesystem.
// Statements are written once when a settlement is processed and kept as
// the permanent record of what was handed to the client.
type Archive struct {
	basePath string
}

// NewArchive creates an archive rooted at basePath
func NewArchive(basePath string) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// Save writes data under a year/month subdirectory (e.g. "statements/2026/08")
// and returns the relative path for database storage.
func (a *Archive) Save(data []byte, filename string, subDir string) (string, error) {
	dir := filepath.Join(a.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, _ := filepath.Rel(a.basePath, filePath)
	return relPath, nil
}

// Read returns the contents of an archived file
func (a *Archive) Read(relativePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(a.basePath, relativePath))
}

// Exists checks if an archived file is still present
func (a *Archive) Exists(relativePath string) bool {
	_, err := os.Stat(filepath.Join(a.basePath, relativePath))
	return err == nil
}

// Delete removes an archived file
func (a *Archive) Delete(relativePath string) error {
	return os.Remove(filepath.Join(a.basePath, relativePath))
}

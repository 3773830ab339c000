// internal/storage/file_storage.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage writes files under BaseDir. Writes are atomic per file.
type FileStorage struct {
	BaseDir string

	fileLocks sync.Map // path -> *sync.RWMutex
}

// NewFileStorage creates the base directory if needed
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{BaseDir: baseDir}, nil
}

func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Path returns the full path of filename inside dirPath
func (fs *FileStorage) Path(dirPath, filename string) string {
	return filepath.Join(fs.BaseDir, dirPath, filename)
}

// SaveTextFile writes content through a temp file and a rename, so readers
// never observe a partial file. It returns the full path written.
func (fs *FileStorage) SaveTextFile(dirPath, filename string, content []byte) (string, error) {
	fullDirPath := filepath.Join(fs.BaseDir, dirPath)
	fullPath := filepath.Join(fullDirPath, filename)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(fullDirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(fullDirPath, "."+filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fullPath, nil
}

// LoadTextFile reads a file written by SaveTextFile
func (fs *FileStorage) LoadTextFile(dirPath, filename string) ([]byte, error) {
	fullPath := filepath.Join(fs.BaseDir, dirPath, filename)

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// FileExists reports whether filename exists inside dirPath
func (fs *FileStorage) FileExists(dirPath, filename string) bool {
	info, err := os.Stat(filepath.Join(fs.BaseDir, dirPath, filename))
	return err == nil && !info.IsDir()
}

package filemanager

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// FileManager provides file operations with standardized error handling and logging
type FileManager struct {
	logger zerolog.Logger
}

// NewFileManager creates a new FileManager instance
func NewFileManager(logger zerolog.Logger) *FileManager {
	return &FileManager{
		logger: logger.With().Str("component", "FileManager").Logger(),
	}
}

// FileExists checks if a file or directory exists
func (fm *FileManager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// FileSize returns the size of a file in bytes, or an error if it cannot be
// stat'ed or is a directory.
func (fm *FileManager) FileSize(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return 0, errorwrapper.WrapError(err, "failed to stat "+path)
	}
	if stat.IsDir() {
		return 0, errorwrapper.NewValidationError("path", path, "is a directory, not a file")
	}
	return stat.Size(), nil
}

// EnsureDirectory creates a directory and its parents if they don't exist
func (fm *FileManager) EnsureDirectory(path string, perm fs.FileMode) error {
	stat, err := os.Stat(path)
	if err == nil {
		if !stat.IsDir() {
			return errorwrapper.NewValidationError("path", path, "exists but is not a directory")
		}
		return nil
	}

	if err := os.MkdirAll(path, perm); err != nil {
		return errorwrapper.WrapError(err, "failed to create directory: "+path)
	}

	fm.logger.Debug().Str("path", path).Msg("Created directory")
	return nil
}

// ReadFile reads the full content of a file
func (fm *FileManager) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read file: "+path)
	}
	return data, nil
}

// WriteFileAtomic writes data to a temporary file in the target directory and
// renames it into place, so readers never observe a partially written file.
func (fm *FileManager) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := fm.EnsureDirectory(dir, 0755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errorwrapper.WrapError(err, "failed to create temp file for: "+path)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return errorwrapper.WrapError(err, "failed to write temp file for: "+path)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return errorwrapper.WrapError(err, "failed to close temp file for: "+path)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return errorwrapper.WrapError(err, "failed to chmod temp file for: "+path)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errorwrapper.WrapError(err, "failed to rename temp file into place: "+path)
	}

	fm.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written")
	return nil
}

// CopyFile copies src to dst, creating parent directories of dst as needed.
func (fm *FileManager) CopyFile(src, dst string) error {
	data, err := fm.ReadFile(src)
	if err != nil {
		return err
	}
	return fm.WriteFileAtomic(dst, data, 0644)
}

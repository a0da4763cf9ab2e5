package datastore

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
	"github.com/aleister1102/maftyintel/internal/common/filemanager"
	"github.com/rs/zerolog"
)

// Well-known state document names.
const (
	DocSources      = "sources.json"
	DocDestinations = "destinations.json"
	DocHistory      = "history.json"
	DocHTTPCache    = "http_cache.json"
	DocPageHashes   = "page_hashes.json"
)

// JSONStore persists state documents as JSON files under a base directory.
// Loads never fail the caller for a missing, empty, or corrupt file: the
// destination value is left at its default and a warning is logged, so a
// damaged document degrades to a fresh one instead of taking the service down.
type JSONStore struct {
	baseDir     string
	backupDir   string
	logger      zerolog.Logger
	fileManager *filemanager.FileManager
}

// NewJSONStore creates a JSONStore rooted at baseDir.
func NewJSONStore(baseDir, backupDir string, logger zerolog.Logger) *JSONStore {
	componentLogger := logger.With().Str("component", "JSONStore").Logger()
	return &JSONStore{
		baseDir:     baseDir,
		backupDir:   backupDir,
		logger:      componentLogger,
		fileManager: filemanager.NewFileManager(componentLogger),
	}
}

// Path returns the absolute location of a named document.
func (s *JSONStore) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// LoadInto unmarshals a named document into v. When the file is missing,
// empty, or unparseable, v is left untouched and nil is returned.
func (s *JSONStore) LoadInto(name string, v any) error {
	path := s.Path(name)

	if !s.fileManager.FileExists(path) {
		s.logger.Warn().Str("document", name).Msg("Document does not exist, using default")
		return nil
	}

	size, err := s.fileManager.FileSize(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("document", name).Msg("Cannot stat document, using default")
		return nil
	}
	if size == 0 {
		s.logger.Warn().Str("document", name).Msg("Document is empty, using default")
		return nil
	}

	data, err := s.fileManager.ReadFile(path)
	if err != nil {
		s.logger.Error().Err(err).Str("document", name).Msg("Failed to read document, using default")
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Error().Err(err).Str("document", name).Msg("Document is not valid JSON, using default")
		return nil
	}

	return nil
}

// LoadRaw unmarshals a named document into an untyped value (for documents
// whose shape is normalized elsewhere, like the source registry). Returns nil
// when the document is unusable.
func (s *JSONStore) LoadRaw(name string) any {
	var raw any
	if err := s.LoadInto(name, &raw); err != nil {
		return nil
	}
	return raw
}

// Save marshals v with indentation and writes it atomically. Unicode content
// is written as-is rather than escaped.
func (s *JSONStore) Save(name string, v any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return errorwrapper.WrapError(err, "failed to marshal document "+name)
	}

	if err := s.fileManager.WriteFileAtomic(s.Path(name), buf.Bytes(), 0644); err != nil {
		return errorwrapper.WrapError(err, "failed to save document "+name)
	}

	s.logger.Debug().Str("document", name).Msg("Document saved")
	return nil
}

package datastore

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/maftyintel/internal/common/errorwrapper"
)

// Backup copies a named document into the backup directory with a timestamp
// suffix and returns the backup path. Backing up a document that does not
// exist is an error: the caller asked to preserve something that is not there.
func (s *JSONStore) Backup(name string) (string, error) {
	srcPath := s.Path(name)
	if !s.fileManager.FileExists(srcPath) {
		return "", errorwrapper.NewValidationError("document", name, "document does not exist, nothing to back up")
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	timestamp := time.Now().Format("20060102_150405")
	backupName := fmt.Sprintf("%s_backup_%s%s", base, timestamp, filepath.Ext(name))
	backupPath := filepath.Join(s.backupDir, backupName)

	if err := s.fileManager.CopyFile(srcPath, backupPath); err != nil {
		return "", errorwrapper.WrapError(err, "failed to back up document "+name)
	}

	s.logger.Info().Str("document", name).Str("backup", backupPath).Msg("Backup created")
	return backupPath, nil
}

package config

// StorageConfig defines where persisted state documents live
type StorageConfig struct {
	// DataDir holds the JSON state documents (sources, destinations,
	// history, http cache, page hashes).
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
	// BackupDir receives timestamped copies created before destructive
	// state mutations.
	BackupDir string `json:"backup_dir,omitempty" yaml:"backup_dir,omitempty"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:   "data",
		BackupDir: "data/backups",
	}
}

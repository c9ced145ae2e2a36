package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.docvec/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".docvec", "logs")
	}
	return filepath.Join(home, ".docvec", "logs")
}

// DefaultLogPath returns the default ingest log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "ingest.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}

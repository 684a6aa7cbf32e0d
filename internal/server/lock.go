package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// LockFileName is the relative path, under the server's working directory,
// that pins which engine identifier owns that directory.
const LockFileName = ".config"

// ErrEngineMismatch is returned (wrapped) when the working directory was
// previously used with a different engine identifier than the one
// currently being started with.
var ErrEngineMismatch = errors.New("engine mismatch")

// CheckAndLockEngine reads dir/.config (if present) and refuses to proceed
// if it names a different engine than selected. On success, or on first
// use, it (re)writes dir/.config with selected.
func CheckAndLockEngine(dir, selected string) error {
	path := filepath.Join(dir, LockFileName)

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("server: no engine lock file present, first use", "path", path)
	case err != nil:
		return fmt.Errorf("server: read engine lock file %s: %w", path, err)
	default:
		current := string(data)
		if current != selected {
			return fmt.Errorf("working directory was previously opened with engine %q, cannot start with %q: %w",
				current, selected, ErrEngineMismatch)
		}
	}

	if err := os.WriteFile(path, []byte(selected), 0644); err != nil {
		return fmt.Errorf("server: write engine lock file %s: %w", path, err)
	}
	slog.Info("server: engine lock file written", "path", path, "engine", selected)
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/Aman-CERP/applogs/internal/errors"
)

const (
	// MaxBackups backups are kept per config file; older ones are removed.
	MaxBackups = 3

	// BackupSuffix precedes the timestamp: applogs.yaml.bak.20261019-083015.250
	BackupSuffix = ".bak"

	backupStamp = "20060102-150405.000"
)

func backupPrefix(path string) string {
	return filepath.Base(path) + BackupSuffix + "."
}

// BackupFile copies path to a timestamped sibling and trims old backups.
// It returns "" without error when path does not exist.
func BackupFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return "", nil
	case err != nil:
		return "", permissionError("cannot read config for backup", path, err)
	}

	backup := filepath.Join(filepath.Dir(path), backupPrefix(path)+time.Now().Format(backupStamp))
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		return "", permissionError("cannot write config backup", backup, err)
	}

	if all, err := ListBackups(path); err == nil && len(all) > MaxBackups {
		for _, old := range all[MaxBackups:] {
			_ = os.Remove(old)
		}
	}
	return backup, nil
}

// ListBackups returns the backups of path, newest first.
func ListBackups(path string) ([]string, error) {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, permissionError("cannot list config directory", dir, err)
	}

	prefix := backupPrefix(path)
	var backups []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(backups)
	slices.Reverse(backups)
	return backups, nil
}

// RestoreFile overwrites path with backup. The file being replaced is
// itself backed up first.
func RestoreFile(path, backup string) error {
	data, err := os.ReadFile(backup)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeConfigNotFound, "backup not readable", err).
			WithDetail("path", backup)
	}
	if _, err := BackupFile(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return permissionError("cannot write restored config", path, err)
	}
	return nil
}

func permissionError(msg, path string, cause error) error {
	return apperrors.New(apperrors.ErrCodeConfigPermission, msg, cause).WithDetail("path", path)
}

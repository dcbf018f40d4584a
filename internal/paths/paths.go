package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/J-81/spacemake/internal/errors"
)

// AppName names the per-user configuration and data directories.
const AppName = "spacemake"

// Environment variables that relocate the per-user directories.
const (
	EnvConfigDir = "SPACEMAKE_CONFIG_DIR"
	EnvDataDir   = "SPACEMAKE_DATA_DIR"
)

const (
	SettingsFileName = "settings.yaml"
	ArchiveFileName  = "archive.db"
	// MetricsFileName is used when the metrics textfile names a directory.
	MetricsFileName = "spacemake_config.prom"
)

// DefaultDirPerm keeps the settings and archive directories private.
const DefaultDirPerm = 0o700

var (
	ErrHomeDirNotFound = errors.New("home directory not found")
	ErrInvalidPath     = errors.New("invalid path")
)

// EnsureDir creates path and its parents. A zero perm means DefaultDirPerm.
// Existing directories keep their mode.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory or ErrHomeDirNotFound.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome is the platform config root, ~/.config on Linux.
func ConfigHome() string { return xdg.ConfigHome }

// DataHome is the platform data root, ~/.local/share on Linux.
func DataHome() string { return xdg.DataHome }

// ConfigDir holds the settings file: $SPACEMAKE_CONFIG_DIR or
// <ConfigHome>/spacemake.
func ConfigDir() string {
	return dirFromEnv(EnvConfigDir, ConfigHome())
}

// DataDir holds the snapshot archive: $SPACEMAKE_DATA_DIR or
// <DataHome>/spacemake.
func DataDir() string {
	return dirFromEnv(EnvDataDir, DataHome())
}

// SettingsFile is the default settings file path.
func SettingsFile() string {
	return filepath.Join(ConfigDir(), SettingsFileName)
}

// ArchivePath is the default snapshot archive path.
func ArchivePath() string {
	return filepath.Join(DataDir(), ArchiveFileName)
}

func dirFromEnv(key, root string) string {
	if dir := os.Getenv(key); dir != "" {
		return dir
	}
	return filepath.Join(root, AppName)
}

// Expand resolves a leading "~/" against the home directory and cleans the
// result. Paths containing NUL bytes, or empty after cleaning, are invalid.
func Expand(path string) (string, error) {
	if path == "" {
		return "", errors.Wrap(ErrInvalidPath, "empty path")
	}
	if strings.ContainsRune(path, '\x00') {
		return "", errors.Wrapf(ErrInvalidPath, "%q contains a NUL byte", path)
	}
	if path == "~" || len(path) > 1 && path[0] == '~' && os.IsPathSeparator(path[1]) {
		home, err := ResolveHome()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Clean(path), nil
}

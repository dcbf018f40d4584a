// Package paths resolves the per-user directories of spacemake-config.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// On Linux the settings file lives in ~/.config/spacemake/settings.yaml and
// the snapshot archive in ~/.local/share/spacemake/archive.db.
//
// Both directories can be moved with environment variables, which tests use
// to isolate themselves from the real user configuration:
//
//	SPACEMAKE_CONFIG_DIR=/tmp/cfg  # settings.yaml lives here
//	SPACEMAKE_DATA_DIR=/tmp/data   # archive.db lives here
package paths

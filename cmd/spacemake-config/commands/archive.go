package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/archive"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/paths"
)

func init() {
	rootCmd.AddCommand(archiveCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Record and inspect resolved configuration snapshots",
	Long: `Keep a history of resolved configurations in a local SQLite database.

Each saved snapshot is stored once per digest, so repeated saves of an
unchanged configuration only add a record. The database location is the
archive_path setting (default ~/.local/share/spacemake/archive.db).`,
	Example: `  # Record the configuration used for a run
  spacemake-config archive save --label run-2024-05-01

  # List recorded snapshots
  spacemake-config archive list

  # Print a snapshot by id or digest prefix
  spacemake-config archive show 3f2a9c1b`,
}

// archivePath returns the expanded archive location from settings.
func archivePath() (string, error) {
	path := paths.ArchivePath()
	if settings != nil && settings.ArchivePath != "" {
		path = settings.ArchivePath
	}
	path, err := paths.Expand(path)
	if err != nil {
		return "", errors.NewUserError(err, "Set a valid archive_path with: spacemake-config settings set archive_path <path>")
	}
	return path, nil
}

// openArchive opens the archive named in settings.
func openArchive(ctx context.Context) (*archive.Archive, error) {
	path, err := archivePath()
	if err != nil {
		return nil, err
	}
	a, err := archive.Open(ctx, path)
	if err != nil {
		return nil, errors.NewSystemError(err, "Check that the archive directory is writable")
	}
	return a, nil
}

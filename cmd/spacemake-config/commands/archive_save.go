package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/logging"
)

var archiveSaveLabel string

func init() {
	archiveSaveCmd.Flags().StringVarP(&archiveSaveLabel, "label", "l", "",
		"free-form label stored with the record")
	archiveCmd.AddCommand(archiveSaveCmd)
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save [document...]",
	Short: "Resolve the configuration and record it",
	Long: `Resolve the configuration exactly as validate does and record the
result in the archive. Invalid configurations are not recorded.`,
	Example: `  spacemake-config archive save -f project_config.yaml --label sample-42`,
	RunE:    runArchiveSave,
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args)
	if err != nil {
		return loadFailed(err)
	}

	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Save(ctx, snap, archiveSaveLabel)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("archived snapshot", "id", rec.ID, "digest", rec.Digest)

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", rec.ID, rec.Digest)
	return nil
}

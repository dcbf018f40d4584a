package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

var (
	archiveShowFormat string
	archiveShowVerify bool
)

func init() {
	archiveShowCmd.Flags().StringVar(&archiveShowFormat, "format", "yaml",
		"output format: yaml, json, toml")
	archiveShowCmd.Flags().BoolVar(&archiveShowVerify, "verify", false,
		"re-validate the payload and check its digest")
	archiveCmd.AddCommand(archiveShowCmd)
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id|digest>",
	Short: "Print a recorded snapshot",
	Long: `Print the configuration recorded under a record id, a full digest or a
digest prefix of at least 8 characters.

With --verify the payload is loaded and validated on its own and its digest
compared with the recorded one.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveShow,
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(archiveShowFormat, document.FormatYAML, document.FormatJSON, document.FormatTOML)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.Get(ctx, args[0])
	if err != nil {
		return errors.NewUserError(err, "Run: spacemake-config archive list")
	}
	doc, err := a.Document(ctx, rec.Digest)
	if err != nil {
		return err
	}

	if archiveShowVerify {
		store := configstore.NewStore(configstore.WithLogger(logging.FromContext(ctx)))
		snap, err := store.Load(doc)
		if err != nil {
			return errors.NewSystemError(err, "The archived payload no longer validates")
		}
		if snap.Digest() != rec.Digest {
			return errors.NewSystemError(
				errors.Newf("digest mismatch: recorded %s, computed %s", rec.Digest, snap.Digest()),
				"The archive may have been modified outside spacemake-config")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "digest %s verified\n", rec.Digest)
	}

	return writeEncoded(cmd.OutOrStdout(), doc.Root, format)
}

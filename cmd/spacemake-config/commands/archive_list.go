package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/document"
)

var archiveListJSON bool

func init() {
	archiveListCmd.Flags().BoolVar(&archiveListJSON, "json", false,
		"output records as JSON")
	archiveCmd.AddCommand(archiveListCmd)
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

// archiveRecord is the JSON shape of one record.
type archiveRecord struct {
	ID      string    `json:"id"`
	Digest  string    `json:"digest"`
	Label   string    `json:"label,omitempty"`
	Sources []string  `json:"sources"`
	SavedAt time.Time `json:"saved_at"`
}

func runArchiveList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if archiveListJSON {
		rows := make([]archiveRecord, len(recs))
		for i, r := range recs {
			rows[i] = archiveRecord(r)
		}
		return writeEncoded(out, rows, document.FormatJSON)
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "No snapshots recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDIGEST\tSAVED\tLABEL\tSOURCES")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Digest[:12],
			r.SavedAt.Local().Format(time.DateTime),
			r.Label,
			strings.Join(r.Sources, ", "),
		)
	}
	return w.Flush()
}

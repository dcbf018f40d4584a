package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/barcode"
	"github.com/J-81/spacemake/internal/errors"
)

var (
	sliceR1 string
	sliceR2 string
)

func init() {
	sliceCmd.Flags().StringVar(&sliceR1, "r1", "", "read 1 sequence to extract from")
	sliceCmd.Flags().StringVar(&sliceR2, "r2", "", "read 2 sequence to extract from")
	rootCmd.AddCommand(sliceCmd)
}

var sliceCmd = &cobra.Command{
	Use:   "slice <expression>",
	Short: "Check a barcode slice expression",
	Long: `Parse a slice expression of the form r1[start:end] or r2[start:end] and
print the read and range it selects. With --r1 or --r2 the selected bases are
extracted from the given sequence.`,
	Example: `  # Check a cell barcode slice
  spacemake-config slice 'r1[0:12]'

  # Extract a UMI
  spacemake-config slice 'r1[12:20]' --r1 ACGTACGTACGTTTTTGGGG`,
	Args: cobra.ExactArgs(1),
	RunE: runSlice,
}

func runSlice(cmd *cobra.Command, args []string) error {
	expr, err := barcode.ParseSlice(args[0])
	if err != nil {
		return errors.NewUserError(err, "Expected r1[start:end] or r2[start:end] with 0 <= start < end")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "expression: %s\n", expr)
	fmt.Fprintf(out, "read:       r%d\n", expr.Read)
	fmt.Fprintf(out, "range:      [%d, %d)\n", expr.Start, expr.End)
	fmt.Fprintf(out, "length:     %d\n", expr.Len())

	if sliceR1 == "" && sliceR2 == "" {
		return nil
	}
	bases, err := expr.Extract(sliceR1, sliceR2)
	if err != nil {
		return errors.NewUserError(err, fmt.Sprintf("Pass --r%d with at least %d bases", expr.Read, expr.End))
	}
	fmt.Fprintf(out, "bases:      %s\n", bases)
	return nil
}

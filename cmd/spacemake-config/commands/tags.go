package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/barcode"
	"github.com/J-81/spacemake/internal/errors"
)

var (
	tagsFields []string
	tagsValues []string
)

func init() {
	tagsCmd.Flags().StringArrayVar(&tagsFields, "field", nil,
		"additional placeholder name to accept (repeatable)")
	tagsCmd.Flags().StringArrayVar(&tagsValues, "value", nil,
		"render the template with name=value (repeatable)")
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags <template>",
	Short: "Check a bam_tags template",
	Long: `Parse a bam_tags template such as "CR:{cell},MI:{UMI}" and list its
placeholders. A barcode flavor defines {cell} and {UMI}; {assigned} is
always available. Use --field to accept further names.

With --value the template is rendered; every placeholder needs a value.`,
	Example: `  # Check a template
  spacemake-config tags 'CR:{cell},CB:{cell},MI:{UMI},RG:{assigned}'

  # Render it
  spacemake-config tags 'CB:{cell},MI:{UMI}' --value cell=ACGT --value UMI=GGTT`,
	Args: cobra.ExactArgs(1),
	RunE: runTags,
}

func runTags(cmd *cobra.Command, args []string) error {
	known := append([]string{"cell", "UMI"}, tagsFields...)
	tmpl, err := barcode.ParseTagTemplate(args[0], known)
	if err != nil {
		return errors.NewUserError(err, "Known placeholders: "+strings.Join(append(known, barcode.AssignedField), ", "))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "template:     %s\n", tmpl)
	fmt.Fprintf(out, "placeholders: %s\n", strings.Join(tmpl.Placeholders(), ", "))

	if len(tagsValues) == 0 {
		return nil
	}
	values := make(map[string]string, len(tagsValues))
	for _, kv := range tagsValues {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return errors.NewUserError(errors.Newf("malformed --value %q", kv), "Use --value name=value")
		}
		values[k] = v
	}
	rendered, err := tmpl.Render(values)
	if err != nil {
		return errors.NewUserError(err, "Pass a --value for every placeholder")
	}
	fmt.Fprintf(out, "rendered:     %s\n", rendered)
	return nil
}

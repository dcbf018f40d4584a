package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/J-81/spacemake/internal/configstore"
	"github.com/J-81/spacemake/internal/document"
	"github.com/J-81/spacemake/internal/errors"
	"github.com/J-81/spacemake/internal/logging"
)

var runModeFormat string

// pickRunMode chooses a run mode interactively. Tests replace it.
var pickRunMode = fuzzyPickRunMode

func init() {
	runModeCmd.Flags().StringVar(&runModeFormat, "format", "yaml",
		"output format: yaml, json")
	rootCmd.AddCommand(runModeCmd)
}

var runModeCmd = &cobra.Command{
	Use:   "run-mode [name]",
	Short: "Print a resolved run mode",
	Long: `Print a run mode with every inherited field filled in.

Without a name on an interactive terminal, a fuzzy finder lists the run
modes with their inheritance chain and resolved fields as a preview.`,
	Example: `  # Print the visium run mode
  spacemake-config run-mode visium

  # Pick one interactively
  spacemake-config run-mode

  See Also: spacemake-config show run_modes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunMode,
}

func runRunMode(cmd *cobra.Command, args []string) error {
	format, err := parseFormatFlag(runModeFormat, document.FormatYAML, document.FormatJSON)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(cmd.Context(), nil)
	if err != nil {
		return loadFailed(err)
	}

	var name string
	if len(args) == 1 {
		name = args[0]
	} else {
		if !logging.IsTTY(os.Stdin) || !logging.IsTTY(cmd.OutOrStdout()) {
			return errors.NewUserError(errors.New("run mode name required"), "Run: spacemake-config show run_modes")
		}
		name, err = pickRunMode(snap)
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
	}
	return printEntry(cmd, snap, configstore.CategoryRunModes, name, format)
}

func fuzzyPickRunMode(snap *configstore.Snapshot) (string, error) {
	names := snap.Names(configstore.CategoryRunModes)
	idx, err := fuzzyfinder.Find(
		names,
		func(i int) string { return names[i] },
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return runModePreview(snap, names[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}
	return names[idx], nil
}

// runModePreview renders the inheritance chain and fields of one run mode.
func runModePreview(snap *configstore.Snapshot, name string) string {
	r, err := snap.RunMode(name)
	if err != nil {
		return err.Error()
	}

	chain := []string{name}
	for p := r.Parent; p != "" && len(chain) <= len(snap.Names(configstore.CategoryRunModes)); {
		chain = append(chain, p)
		pr, err := snap.RunMode(p)
		if err != nil {
			break
		}
		p = pr.Parent
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Chain: %s\n\n", strings.Join(chain, " -> "))
	fmt.Fprintf(&sb, "n_beads:                %d\n", r.NBeads)
	fmt.Fprintf(&sb, "umi_cutoff:             %v\n", r.UMICutoff)
	fmt.Fprintf(&sb, "clean_dge:              %t\n", r.CleanDGE)
	fmt.Fprintf(&sb, "detect_tissue:          %t\n", r.DetectTissue)
	fmt.Fprintf(&sb, "polyA_adapter_trimming: %t\n", r.PolyAAdapterTrimming)
	fmt.Fprintf(&sb, "count_intronic_reads:   %t\n", r.CountIntronicReads)
	fmt.Fprintf(&sb, "count_mm_reads:         %t\n", r.CountMMReads)
	fmt.Fprintf(&sb, "mesh_data:              %t\n", r.MeshData)
	if r.MeshData {
		fmt.Fprintf(&sb, "mesh_type:              %s\n", r.MeshType)
		fmt.Fprintf(&sb, "mesh_spot_diameter_um:  %g\n", r.MeshSpotDiameterUM)
		fmt.Fprintf(&sb, "mesh_spot_distance_um:  %g\n", r.MeshSpotDistanceUM)
	}
	return sb.String()
}

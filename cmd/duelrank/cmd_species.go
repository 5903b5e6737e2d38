package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/camtrap-arena/duelrank/internal/metrics"
	"github.com/camtrap-arena/duelrank/internal/report"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errTargetRequired = errors.New("--target is required when not running interactively")

// promptTarget is a test hook for replacing the class picker in tests.
var promptTarget = defaultPromptTarget

func defaultPromptTarget(in io.Reader, out io.Writer, classes []string) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errTargetRequired
	}

	var target string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Target class").
				Options(huh.NewOptions(classes...)...).
				Value(&target),
		),
	).WithInput(in).WithOutput(out).Run()
	if err != nil {
		return "", fmt.Errorf("selecting target: %w", err)
	}
	return target, nil
}

// observedClasses lists the ground-truth classes of the ledger, most
// frequent first, without the background class.
func observedClasses(cmd *cobra.Command, src ledger.Source, mode labels.Mode) ([]string, error) {
	records, err := src.Snapshot(cmd.Context())
	if err != nil {
		return nil, err
	}
	summary := metrics.Summarize(records, labels.ForMode(mode))
	classes := make([]string, 0, len(summary.Support))
	for _, c := range summary.Support {
		if c.Label != labels.Background {
			classes = append(classes, c.Label)
		}
	}
	return classes, nil
}

func newSpeciesCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionSpecies,
		prepare: func(cmd *cobra.Command, src ledger.Source, opts *leaderboard.Options) error {
			if opts.Target != "" {
				return nil
			}
			classes, err := observedClasses(cmd, src, opts.Normalization)
			if err != nil {
				return err
			}
			if len(classes) == 0 {
				return fmt.Errorf("ledger has no species to choose from: %w", errTargetRequired)
			}
			target, err := promptTarget(cmd.InOrStdin(), cmd.OutOrStdout(), classes)
			if err != nil {
				return err
			}
			opts.Target = target
			return nil
		},
		render: func(b *leaderboard.Board) view {
			return view{payload: b.Species, tables: []report.Table{report.SpeciesTable(b.Target, b.Species)}}
		},
	}
	cmd := &cobra.Command{
		Use:   "species [ledger]",
		Short: "One-vs-rest precision, recall and F1 for a target class",
		Long: `Score every model on one class against all others.

Without --target, an interactive terminal offers the classes seen in the
ledger to choose from.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	addTargetFlag(cmd, f)
	return cmd
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/camtrap-arena/duelrank/internal/projectconfig"
	"github.com/camtrap-arena/duelrank/internal/report"
	"github.com/camtrap-arena/duelrank/internal/spinner"
	"github.com/spf13/cobra"
)

// view is what a command prints for a board.
type view struct {
	payload any
	tables  []report.Table

	// markdown overrides the default rendering of tables.
	markdown func() string
}

// tableCommand describes one table-printing subcommand.
type tableCommand struct {
	sections leaderboard.Section

	// prepare may adjust options once the ledger is open, before the
	// board is built.
	prepare func(cmd *cobra.Command, src ledger.Source, opts *leaderboard.Options) error

	render func(b *leaderboard.Board) view
}

func (tc tableCommand) run(cmd *cobra.Command, args []string, f *rankFlags) error {
	if err := validateFormat(f.format); err != nil {
		return err
	}

	cfg, err := projectconfig.Load(".")
	if err != nil {
		return err
	}
	opts, err := resolveOptions(cmd, f, cfg)
	if err != nil {
		return err
	}
	opts.Sections = tc.sections | leaderboard.SectionSummary

	location, err := resolveLedger(args, cfg)
	if err != nil {
		return err
	}
	src, err := ledger.Open(location)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if tc.prepare != nil {
		if err := tc.prepare(cmd, src, &opts); err != nil {
			return err
		}
	}

	slog.Debug("building leaderboard", "ledger", location, "outcome", opts.Outcome, "bt_method", opts.BT.Method)
	stop := startSpinner(cmd, "building leaderboard")
	board, err := leaderboard.New(src).Build(ctx, opts)
	stop()
	if err != nil {
		return err
	}
	if f.requireDuels && board.Summary.Duels == 0 {
		return &NoDuelsError{Ledger: location}
	}

	return writeView(cmd.OutOrStdout(), f.format, tc.render(board))
}

// startSpinner shows progress on stderr when it is an interactive terminal.
func startSpinner(cmd *cobra.Command, message string) func() {
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return func() {}
	}
	return spinner.StartIfTerminal(f, message)
}

func writeView(w io.Writer, format string, v view) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v.payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "markdown":
		_, err := fmt.Fprint(w, markdownOf(v))
		return err
	case "html":
		page, err := report.HTMLPage(markdownOf(v))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, page)
		return err
	default:
		for i, t := range v.tables {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := report.WriteText(w, t); err != nil {
				return err
			}
		}
		return nil
	}
}

func markdownOf(v view) string {
	if v.markdown != nil {
		return v.markdown()
	}
	return report.MarkdownTables(v.tables...)
}

func newEloCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionElo,
		render: func(b *leaderboard.Board) view {
			return view{payload: b.Elo, tables: []report.Table{report.EloTable(b.Elo)}}
		},
	}
	cmd := &cobra.Command{
		Use:   "elo [ledger]",
		Short: "Rank models with bootstrapped Elo",
		Long: `Rank models with Elo ratings.

By default the ratings are the mean of many passes over independently
shuffled duel orders, reported with the central 95% interval of the passes.
Use --no-bootstrap for a single pass in ledger order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	addOutcomeFlags(cmd, f)
	addEloFlags(cmd, f)
	return cmd
}

func newBTCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionBradleyTerry,
		render: func(b *leaderboard.Board) view {
			return view{payload: b.BradleyTerry, tables: []report.Table{report.StrengthTable(b.BradleyTerry)}}
		},
	}
	cmd := &cobra.Command{
		Use:     "bt [ledger]",
		Aliases: []string{"bradley-terry"},
		Short:   "Rank models with Bradley-Terry strengths",
		Long: `Rank models with the Bradley-Terry model.

The mle method reports zero-centered log-strengths fitted with L-BFGS; the
mm method reports probability mass scaled to 10000 after a fixed number of
minorization-maximization rounds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	addOutcomeFlags(cmd, f)
	addBTFlags(cmd, f)
	return cmd
}

func newAccuracyCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionAccuracy,
		render: func(b *leaderboard.Board) view {
			return view{payload: b.Accuracy, tables: []report.Table{report.AccuracyTable(b.Accuracy)}}
		},
	}
	cmd := &cobra.Command{
		Use:   "accuracy [ledger]",
		Short: "Per-model species identification accuracy",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	addAccuracyFlags(cmd, f)
	return cmd
}

func newMacroCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionMacro,
		render: func(b *leaderboard.Board) view {
			return view{payload: b.Macro, tables: []report.Table{report.MacroTable(b.Macro)}}
		},
	}
	cmd := &cobra.Command{
		Use:   "macro [ledger]",
		Short: "Macro-averaged F1, recall and precision per model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	return cmd
}

func newSummaryCommand() *cobra.Command {
	f := &rankFlags{}
	tc := tableCommand{
		sections: leaderboard.SectionSummary,
		render: func(b *leaderboard.Board) view {
			return view{
				payload: b.Summary,
				tables: []report.Table{
					report.SupportTable(b.Summary),
					report.VotesTable(b.Summary),
					report.ComplianceTable(b.Summary),
				},
			}
		},
	}
	cmd := &cobra.Command{
		Use:   "summary [ledger]",
		Short: "Ledger overview: class support, votes and output compliance",
		Args:  cobra.MaximumNArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return tc.run(cmd, args, f) },
	}
	addCommonFlags(cmd, f)
	return cmd
}

func newConfusionCommand() *cobra.Command {
	f := &rankFlags{}
	var model string
	tc := tableCommand{
		sections: leaderboard.SectionConfusion,
		render: func(b *leaderboard.Board) view {
			var payload []any
			var tables []report.Table
			for _, m := range b.Confusion {
				if model != "" && m.Model != model {
					continue
				}
				payload = append(payload, m)
				tables = append(tables, report.ConfusionTable(m))
			}
			return view{payload: payload, tables: tables}
		},
	}
	cmd := &cobra.Command{
		Use:   "confusion [ledger]",
		Short: "Confusion matrix per model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tc.run(cmd, args, f)
		},
	}
	addCommonFlags(cmd, f)
	cmd.Flags().StringVarP(&model, "model", "m", "", "Only show this model")
	return cmd
}

func newReportCommand() *cobra.Command {
	f := &rankFlags{}
	var (
		output    string
		confusion bool
	)
	tc := tableCommand{
		sections: leaderboard.SectionStandard,
		render: func(b *leaderboard.Board) view {
			return view{
				payload:  b,
				tables:   report.Tables(b),
				markdown: func() string { return report.Markdown(b) },
			}
		},
	}
	cmd := &cobra.Command{
		Use:   "report [ledger]",
		Short: "Every leaderboard table from one ledger snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if confusion {
				tc.sections |= leaderboard.SectionConfusion
			}
			if output != "" {
				out, err := createOutput(output)
				if err != nil {
					return err
				}
				defer out.Close() //nolint:errcheck
				cmd.SetOut(out)
			}
			return tc.run(cmd, args, f)
		},
	}
	addCommonFlags(cmd, f)
	addAccuracyFlags(cmd, f)
	addTargetFlag(cmd, f)
	addOutcomeFlags(cmd, f)
	addEloFlags(cmd, f)
	addBTFlags(cmd, f)
	cmd.Flags().BoolVar(&confusion, "confusion", false, "Include a confusion matrix per model")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")
	return cmd
}

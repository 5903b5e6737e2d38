package main

import (
	"errors"
	"fmt"

	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/camtrap-arena/duelrank/internal/metrics"
	"github.com/camtrap-arena/duelrank/internal/projectconfig"
	"github.com/camtrap-arena/duelrank/internal/ranking"
	"github.com/spf13/cobra"
)

var errNoLedger = errors.New("no ledger given: pass a ledger location or set 'ledger' in " + projectconfig.FileName)

// rankFlags holds every flag that can override .duelrank.yaml. Each
// command binds only the subset it uses.
type rankFlags struct {
	format        string
	normalization string
	requireDuels  bool

	accuracy string
	target   string

	outcome          string
	excludeUndecided bool
	ignoreBothBad    bool

	k           float64
	noBootstrap bool
	iterations  int
	seed        int64
	workers     int

	btMethod     string
	btIterations int
}

func addCommonFlags(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "Output format: table, json, markdown or html")
	cmd.Flags().StringVar(&f.normalization, "normalization", projectconfig.DefaultNormalization, "Label normalization: standard or compact")
	cmd.Flags().BoolVar(&f.requireDuels, "require-duels", false, "Exit with status 1 when the ledger holds no duels")
}

func addAccuracyFlags(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().StringVar(&f.accuracy, "mode", projectconfig.DefaultAccuracy, "Accuracy mode: strict or fuzzy")
}

func addTargetFlag(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Target class for the one-vs-rest table")
}

func addOutcomeFlags(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().StringVar(&f.outcome, "outcome", projectconfig.DefaultOutcome, "Duel winner source: ground_truth or votes")
	cmd.Flags().BoolVar(&f.excludeUndecided, "exclude-undecided", false, "With votes, drop every vote without a single winner")
	cmd.Flags().BoolVar(&f.ignoreBothBad, "ignore-both-bad", false, "With votes, drop BOTH_BAD votes only")
}

func addEloFlags(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().Float64Var(&f.k, "k", projectconfig.DefaultEloK, "Elo K-factor")
	cmd.Flags().BoolVar(&f.noBootstrap, "no-bootstrap", false, "Run a single Elo pass in ledger order")
	cmd.Flags().IntVar(&f.iterations, "iterations", projectconfig.DefaultEloIterations, "Number of bootstrap passes")
	cmd.Flags().Int64Var(&f.seed, "seed", projectconfig.DefaultEloSeed, "Base seed for bootstrap shuffles")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", projectconfig.DefaultWorkers, "Parallel bootstrap passes")
}

func addBTFlags(cmd *cobra.Command, f *rankFlags) {
	cmd.Flags().StringVar(&f.btMethod, "method", projectconfig.DefaultBTMethod, "Bradley-Terry estimator: mle or mm")
	cmd.Flags().IntVar(&f.btIterations, "bt-iterations", projectconfig.DefaultBTIterations, "MM iteration count")
}

func validateFormat(format string) error {
	switch format {
	case "table", "json", "markdown", "html":
		return nil
	}
	return fmt.Errorf("unsupported format %q: must be table, json, markdown or html", format)
}

// resolveOptions layers defaults, the project config and explicitly set
// flags, in that order.
func resolveOptions(cmd *cobra.Command, f *rankFlags, cfg *projectconfig.ProjectConfig) (leaderboard.Options, error) {
	changed := cmd.Flags().Changed
	opts := leaderboard.DefaultOptions()
	var err error

	norm := cfg.Normalization
	if changed("normalization") {
		norm = f.normalization
	}
	if opts.Normalization, err = labels.ParseMode(norm); err != nil {
		return opts, err
	}

	acc := cfg.Metrics.Accuracy
	if changed("mode") {
		acc = f.accuracy
	}
	if opts.AccuracyMode, err = metrics.ParseAccuracyMode(acc); err != nil {
		return opts, err
	}

	opts.Target = cfg.Metrics.Target
	if changed("target") {
		opts.Target = f.target
	}

	r := cfg.Ranking
	outcome := r.Outcome
	if changed("outcome") {
		outcome = f.outcome
	}
	if opts.Outcome, err = ranking.ParseSource(outcome); err != nil {
		return opts, err
	}
	opts.VotePolicy = ranking.VotePolicy{
		ExcludeUndecided: deref(r.Votes.ExcludeUndecided),
		IgnoreBothBad:    deref(r.Votes.IgnoreBothBad),
	}
	if changed("exclude-undecided") {
		opts.VotePolicy.ExcludeUndecided = f.excludeUndecided
	}
	if changed("ignore-both-bad") {
		opts.VotePolicy.IgnoreBothBad = f.ignoreBothBad
	}

	opts.Elo = ranking.EloOptions{
		K:          r.Elo.K,
		Bootstrap:  r.Elo.Bootstrap == nil || *r.Elo.Bootstrap,
		Iterations: r.Elo.Iterations,
		Seed:       projectconfig.DefaultEloSeed,
		Workers:    r.Elo.Workers,
	}
	if r.Elo.Seed != nil {
		opts.Elo.Seed = *r.Elo.Seed
	}
	if changed("k") {
		opts.Elo.K = f.k
	}
	if changed("no-bootstrap") {
		opts.Elo.Bootstrap = !f.noBootstrap
	}
	if changed("iterations") {
		opts.Elo.Iterations = f.iterations
	}
	if changed("seed") {
		opts.Elo.Seed = f.seed
	}
	if changed("workers") {
		opts.Elo.Workers = f.workers
	}
	if opts.Elo.K <= 0 {
		return opts, fmt.Errorf("elo K-factor must be positive, got %v", opts.Elo.K)
	}
	if opts.Elo.Iterations <= 0 {
		return opts, fmt.Errorf("bootstrap iterations must be positive, got %d", opts.Elo.Iterations)
	}
	if opts.Elo.Workers < 0 {
		return opts, fmt.Errorf("workers must not be negative, got %d", opts.Elo.Workers)
	}

	method := r.BradleyTerry.Method
	if changed("method") {
		method = f.btMethod
	}
	if opts.BT.Method, err = ranking.ParseMethod(method); err != nil {
		return opts, err
	}
	opts.BT.Iterations = r.BradleyTerry.Iterations
	if changed("bt-iterations") {
		opts.BT.Iterations = f.btIterations
	}
	if opts.BT.Iterations <= 0 {
		return opts, fmt.Errorf("bradley-terry iterations must be positive, got %d", opts.BT.Iterations)
	}

	return opts, nil
}

// resolveLedger picks the ledger from the first argument or the config.
func resolveLedger(args []string, cfg *projectconfig.ProjectConfig) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Ledger != "" {
		return cfg.Ledger, nil
	}
	return "", errNoLedger
}

func deref(b *bool) bool {
	return b != nil && *b
}

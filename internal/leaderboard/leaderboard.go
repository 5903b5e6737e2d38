// Package leaderboard assembles every table of the arena leaderboard from
// one ledger snapshot.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/ledger"
	"github.com/camtrap-arena/duelrank/internal/metrics"
	"github.com/camtrap-arena/duelrank/internal/ranking"
)

// Section names one table of a Board.
type Section uint

const (
	SectionSummary Section = 1 << iota
	SectionAccuracy
	SectionMacro
	SectionElo
	SectionBradleyTerry
	SectionSpecies
	SectionConfusion

	// SectionStandard is every table except the per-model confusion
	// matrices.
	SectionStandard = SectionSummary | SectionAccuracy | SectionMacro | SectionElo | SectionBradleyTerry | SectionSpecies
	SectionAll      = SectionStandard | SectionConfusion
)

// Has reports whether s includes every section in other.
func (s Section) Has(other Section) bool {
	return s&other == other
}

// Options selects how each table is computed.
type Options struct {
	Normalization labels.Mode
	AccuracyMode  metrics.AccuracyMode
	Outcome       ranking.Source
	VotePolicy    ranking.VotePolicy
	Elo           ranking.EloOptions
	BT            ranking.BTOptions

	// Target, when set, adds the one-vs-rest table for that class.
	Target string

	// Sections selects the tables to compute. Zero means SectionStandard.
	Sections Section
}

// DefaultOptions returns compact normalization, strict accuracy, ground
// truth outcomes, bootstrap Elo and MLE Bradley-Terry.
func DefaultOptions() Options {
	return Options{
		Normalization: labels.ModeCompact,
		AccuracyMode:  metrics.AccuracyStrict,
		Outcome:       ranking.SourceGroundTruth,
		Elo:           ranking.DefaultEloOptions(),
		BT:            ranking.DefaultBTOptions(),
	}
}

// Board holds the computed tables. A selected table is empty, never nil,
// when the ledger is empty, so it encodes as []; tables outside
// Options.Sections stay nil and encode as null.
type Board struct {
	Summary      metrics.LedgerSummary     `json:"summary"`
	Accuracy     []metrics.AccuracyRow     `json:"accuracy"`
	Macro        []metrics.MacroRow        `json:"macro"`
	Elo          []ranking.EloRow          `json:"elo"`
	BradleyTerry []ranking.StrengthRow     `json:"bradley_terry"`
	Target       string                    `json:"target,omitempty"`
	Species      []metrics.BinaryRow       `json:"species"`
	Confusion    []metrics.ConfusionMatrix `json:"confusion"`

	Options Options `json:"-"`
}

// Service computes boards from a ledger source.
type Service struct {
	source ledger.Source
}

// New returns a Service reading from source.
func New(source ledger.Source) *Service {
	return &Service{source: source}
}

// Build takes one snapshot of the ledger and derives every table from it,
// so all tables describe the same set of duels.
func (s *Service) Build(ctx context.Context, opts Options) (*Board, error) {
	records, err := s.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	board := Compute(records, opts)

	slog.Debug("leaderboard built",
		"duels", len(records),
		"models", len(duel.Models(records)),
		"elo_rows", len(board.Elo),
		"bt_rows", len(board.BradleyTerry),
	)
	return board, nil
}

// Compute derives a board from records without touching any source.
func Compute(records []duel.Record, opts Options) *Board {
	sections := opts.Sections
	if sections == 0 {
		sections = SectionStandard
	}
	normalize := labels.ForMode(opts.Normalization)
	pool := duel.Flatten(records, normalize)
	board := &Board{Options: opts}

	if sections.Has(SectionSummary) {
		board.Summary = metrics.Summarize(records, normalize)
	}
	if sections.Has(SectionAccuracy) {
		board.Accuracy = nonNil(metrics.Accuracy(pool, opts.AccuracyMode))
	}
	if sections.Has(SectionMacro) {
		board.Macro = nonNil(metrics.Macro(pool))
	}
	if sections.Has(SectionElo) || sections.Has(SectionBradleyTerry) {
		outcomes, models := ranking.Outcomes(records, ranking.OutcomeOptions{
			Source:    opts.Outcome,
			Policy:    opts.VotePolicy,
			Normalize: normalize,
		})
		if sections.Has(SectionElo) {
			board.Elo = nonNil(ranking.Elo(outcomes, models, opts.Elo))
		}
		if sections.Has(SectionBradleyTerry) {
			board.BradleyTerry = nonNil(ranking.BradleyTerry(outcomes, models, opts.BT))
		}
	}
	if sections.Has(SectionSpecies) && opts.Target != "" {
		board.Target = normalize(opts.Target)
		board.Species = nonNil(metrics.OneVsRest(pool, opts.Target, normalize))
	}
	if sections.Has(SectionConfusion) {
		models := duel.Models(records)
		board.Confusion = make([]metrics.ConfusionMatrix, 0, len(models))
		for _, m := range models {
			board.Confusion = append(board.Confusion, metrics.Confusion(pool, m))
		}
	}
	return board
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

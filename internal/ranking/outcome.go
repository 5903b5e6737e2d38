// Package ranking turns duels into preference rankings: Elo ratings with
// order-randomization bootstrap and Bradley-Terry strengths.
package ranking

import (
	"fmt"
	"strings"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/response"
)

// Source selects where a duel's winner comes from.
type Source string

const (
	// SourceGroundTruth credits the contestant whose parsed prediction
	// matches the image's ground truth.
	SourceGroundTruth Source = "ground_truth"

	// SourceVotes uses the human preference vote recorded on the duel.
	SourceVotes Source = "votes"
)

// ParseSource validates a source name. Empty means ground truth.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case "", SourceGroundTruth:
		return SourceGroundTruth, nil
	case SourceVotes:
		return src, nil
	default:
		return "", fmt.Errorf("unknown outcome source %q: must be ground_truth or votes", s)
	}
}

// VotePolicy decides what non-decisive human votes contribute. With both
// fields false every non-decisive vote (TIE, BOTH_GOOD and BOTH_BAD) is a
// 0.5/0.5 split. Duels without a vote are always excluded.
type VotePolicy struct {
	// ExcludeUndecided drops every vote without a single winner.
	ExcludeUndecided bool `yaml:"exclude_undecided,omitempty" json:"exclude_undecided"`

	// IgnoreBothBad drops BOTH_BAD only; TIE and BOTH_GOOD still split.
	IgnoreBothBad bool `yaml:"ignore_both_bad,omitempty" json:"ignore_both_bad"`
}

// OutcomeOptions configures outcome derivation.
type OutcomeOptions struct {
	Source Source
	Policy VotePolicy

	// Normalize canonicalizes ground truth and predictions for
	// SourceGroundTruth. labels.Compact when nil.
	Normalize labels.Normalizer
}

// Outcome is one scored duel. ScoreA is 1 when A won, 0 when B won and 0.5
// for a split.
type Outcome struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	ScoreA float64 `json:"score_a"`
}

// Outcomes scores every record that produces a result under opts and
// returns them in record order, together with every contestant that appears
// in any record (sorted), including contestants whose duels were all
// excluded.
func Outcomes(records []duel.Record, opts OutcomeOptions) ([]Outcome, []string) {
	normalize := opts.Normalize
	if normalize == nil {
		normalize = labels.Compact
	}

	out := make([]Outcome, 0, len(records))
	for _, r := range records {
		var (
			score float64
			ok    bool
		)
		if opts.Source == SourceVotes {
			score, ok = voteScore(r.Result, opts.Policy)
		} else {
			score, ok = truthScore(r, normalize)
		}
		if ok {
			out = append(out, Outcome{A: r.ModelA, B: r.ModelB, ScoreA: score})
		}
	}
	return out, duel.Models(records)
}

// truthScore compares both parsed predictions with the ground truth. A duel
// where neither contestant is right is a null duel and is excluded.
func truthScore(r duel.Record, normalize labels.Normalizer) (float64, bool) {
	truth := normalize(r.Species)
	okA := labels.Matches(response.Parse(r.ResponseA, normalize).Label, truth)
	okB := labels.Matches(response.Parse(r.ResponseB, normalize).Label, truth)

	switch {
	case okA && okB:
		return 0.5, true
	case okA:
		return 1, true
	case okB:
		return 0, true
	default:
		return 0, false
	}
}

func voteScore(rc duel.ResultCode, p VotePolicy) (float64, bool) {
	switch rc {
	case duel.ResultAWins:
		return 1, true
	case duel.ResultBWins:
		return 0, true
	case duel.ResultNone:
		return 0, false
	}
	if p.ExcludeUndecided {
		return 0, false
	}
	if p.IgnoreBothBad && rc == duel.ResultBothBad {
		return 0, false
	}
	return 0.5, true
}

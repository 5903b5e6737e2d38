package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/camtrap-arena/duelrank/internal/statistics"
)

// AccuracyMode selects the matching policy for per-model accuracy.
type AccuracyMode string

const (
	// AccuracyStrict counts exact normalized label equality.
	AccuracyStrict AccuracyMode = "strict"

	// AccuracyFuzzy tolerates naming drift: containment in either direction,
	// and a "no detection" answer on background images.
	AccuracyFuzzy AccuracyMode = "fuzzy"
)

// ParseAccuracyMode validates a mode name. Empty means strict.
func ParseAccuracyMode(s string) (AccuracyMode, error) {
	switch m := AccuracyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", AccuracyStrict:
		return AccuracyStrict, nil
	case AccuracyFuzzy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown accuracy mode %q: must be strict or fuzzy", s)
	}
}

// AccuracyRow is one model's accuracy with a bootstrap interval.
type AccuracyRow struct {
	Model    string                        `json:"model"`
	Mode     AccuracyMode                  `json:"mode"`
	Correct  int                           `json:"correct"`
	Total    int                           `json:"total"`
	Accuracy float64                       `json:"accuracy"`
	CI       statistics.ConfidenceInterval `json:"ci"`
}

// accuracySeed keeps accuracy intervals reproducible across calls.
const accuracySeed = 42

// Accuracy dispatches to [ExactAccuracy] or [FuzzyAccuracy].
func Accuracy(pool []duel.Prediction, mode AccuracyMode) []AccuracyRow {
	if mode == AccuracyFuzzy {
		return FuzzyAccuracy(pool)
	}
	return ExactAccuracy(pool)
}

// ExactAccuracy is matches/total per model where a match is normalized label
// equality. Format errors never match.
func ExactAccuracy(pool []duel.Prediction) []AccuracyRow {
	return accuracyBy(pool, AccuracyStrict, func(p duel.Prediction) bool {
		return labels.Matches(p.Predicted, p.Truth)
	})
}

// FuzzyAccuracy is the looser accuracy. On background images a model is
// right when it reports no detection or no species; otherwise it is right
// when either label contains the other. Unparseable responses are misses.
func FuzzyAccuracy(pool []duel.Prediction) []AccuracyRow {
	return accuracyBy(pool, AccuracyFuzzy, fuzzyMatch)
}

// noDetection holds detection-field answers meaning "no animal", on top of
// the absence synonyms.
var noDetection = map[string]struct{}{
	"no":    {},
	"nao":   {},
	"não":   {},
	"false": {},
}

func fuzzyMatch(p duel.Prediction) bool {
	if !p.Parsed {
		return false
	}
	if p.Truth == labels.Background {
		det := labels.Normalize(p.Detection)
		if _, ok := noDetection[det]; ok {
			return true
		}
		// An empty detection field normalizes to background too, so only a
		// present one counts here.
		if strings.TrimSpace(p.Detection) != "" && det == labels.Background {
			return true
		}
		return p.Predicted == labels.Background
	}
	if p.Predicted == labels.Background || p.Predicted == "" {
		return false
	}
	return strings.Contains(p.Truth, p.Predicted) || strings.Contains(p.Predicted, p.Truth)
}

func accuracyBy(pool []duel.Prediction, mode AccuracyMode, hit func(duel.Prediction) bool) []AccuracyRow {
	groups, models := groupByModel(pool)
	rows := make([]AccuracyRow, 0, len(models))
	for _, m := range models {
		preds := groups[m]
		scores := make([]float64, len(preds))
		correct := 0
		for i, p := range preds {
			if hit(p) {
				correct++
				scores[i] = 1
			}
		}
		rows = append(rows, AccuracyRow{
			Model:    m,
			Mode:     mode,
			Correct:  correct,
			Total:    len(preds),
			Accuracy: safeDivide(float64(correct), float64(len(preds))),
			CI:       statistics.BootstrapCIWithSeed(scores, statistics.DefaultConfidenceLevel, accuracySeed),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Accuracy > rows[j].Accuracy
	})
	return rows
}

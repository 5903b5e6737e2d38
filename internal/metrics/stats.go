// Package metrics computes objective, ground-truth based classification
// metrics over the flat prediction pool.
package metrics

import (
	"math"
	"sort"

	"github.com/camtrap-arena/duelrank/internal/duel"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// groupByModel splits the pool per contestant. Model names are returned
// sorted.
func groupByModel(pool []duel.Prediction) (map[string][]duel.Prediction, []string) {
	groups := make(map[string][]duel.Prediction)
	var names []string
	for _, p := range pool {
		if _, ok := groups[p.Model]; !ok {
			names = append(names, p.Model)
		}
		groups[p.Model] = append(groups[p.Model], p)
	}
	sort.Strings(names)
	return groups, names
}

// truthLabels returns the sorted distinct ground-truth labels of the whole
// pool.
func truthLabels(pool []duel.Prediction) []string {
	return distinct(pool, false)
}

// allLabels returns the sorted union of ground-truth and predicted labels.
func allLabels(pool []duel.Prediction) []string {
	return distinct(pool, true)
}

func distinct(pool []duel.Prediction, withPredicted bool) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(l string) {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	for _, p := range pool {
		add(p.Truth)
		if withPredicted {
			add(p.Predicted)
		}
	}
	sort.Strings(out)
	return out
}

func safeDivide(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

package metrics

import (
	"sort"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
)

// MacroRow holds macro-averaged metrics for one model. The average runs over
// every ground-truth class observed in the whole pool, so a class a model
// never saw or never predicted still pulls its average down.
type MacroRow struct {
	Model          string  `json:"model"`
	MacroF1        float64 `json:"macro_f1"`
	MacroRecall    float64 `json:"macro_recall"`
	MacroPrecision float64 `json:"macro_precision"`
	Accuracy       float64 `json:"accuracy"`
	Samples        int     `json:"samples"`
}

// ClassScore is the per-class breakdown behind a MacroRow.
type ClassScore struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Macro computes macro F1, recall and precision plus plain accuracy per
// model, rounded to 4 digits and sorted by descending macro F1.
func Macro(pool []duel.Prediction) []MacroRow {
	if len(pool) == 0 {
		return []MacroRow{}
	}

	universe := truthLabels(pool)
	groups, models := groupByModel(pool)
	rows := make([]MacroRow, 0, len(models))
	for _, m := range models {
		preds := groups[m]
		classes := PerClass(preds, universe)

		var f1s, recalls, precisions []float64
		for _, c := range classes {
			f1s = append(f1s, c.F1)
			recalls = append(recalls, c.Recall)
			precisions = append(precisions, c.Precision)
		}

		correct := 0
		for _, p := range preds {
			if labels.Matches(p.Predicted, p.Truth) {
				correct++
			}
		}

		rows = append(rows, MacroRow{
			Model:          m,
			MacroF1:        roundTo4(Mean(f1s)),
			MacroRecall:    roundTo4(Mean(recalls)),
			MacroPrecision: roundTo4(Mean(precisions)),
			Accuracy:       roundTo4(safeDivide(float64(correct), float64(len(preds)))),
			Samples:        len(preds),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MacroF1 > rows[j].MacroF1
	})
	return rows
}

// PerClass scores preds against each label in universe. Predictions of
// labels outside universe (format errors, hallucinated species) only count
// as misses for their true class.
func PerClass(preds []duel.Prediction, universe []string) []ClassScore {
	out := make([]ClassScore, 0, len(universe))
	for _, label := range universe {
		var tp, fp, fn int
		for _, p := range preds {
			isTrue := p.Truth == label
			isPred := p.Predicted == label && p.Predicted != labels.FormatError
			switch {
			case isTrue && isPred:
				tp++
			case isPred:
				fp++
			case isTrue:
				fn++
			}
		}
		c := countsFrom(tp, fp, 0, fn)
		out = append(out, ClassScore{
			Label:     label,
			Precision: c.Precision,
			Recall:    c.Recall,
			F1:        c.F1,
			Support:   tp + fn,
		})
	}
	return out
}

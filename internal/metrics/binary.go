package metrics

import (
	"sort"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
)

// BinaryCounts is a one-vs-rest confusion summary with derived metrics.
type BinaryCounts struct {
	TP        int     `json:"true_positives"`
	FP        int     `json:"false_positives"`
	TN        int     `json:"true_negatives"`
	FN        int     `json:"false_negatives"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Accuracy  float64 `json:"accuracy"`
}

// BinaryRow is one model's one-vs-rest result for a target class.
type BinaryRow struct {
	Model string `json:"model"`
	BinaryCounts
	ErrorRate float64 `json:"error_rate"`
	Support   int     `json:"support"`
}

// binaryOutcome pairs the expected "is target" flag with the predicted one.
type binaryOutcome struct {
	isTarget   bool
	predTarget bool
}

// computeBinary calculates precision, recall, F1 and accuracy. Every ratio
// with a zero denominator is reported as 0.
func computeBinary(results []binaryOutcome) BinaryCounts {
	var tp, fp, tn, fn int
	for _, r := range results {
		switch {
		case r.isTarget && r.predTarget:
			tp++
		case !r.isTarget && r.predTarget:
			fp++
		case !r.isTarget && !r.predTarget:
			tn++
		default:
			fn++
		}
	}
	return countsFrom(tp, fp, tn, fn)
}

func countsFrom(tp, fp, tn, fn int) BinaryCounts {
	total := tp + fp + tn + fn

	precision := safeDivide(float64(tp), float64(tp+fp))
	recall := safeDivide(float64(tp), float64(tp+fn))

	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return BinaryCounts{
		TP:        tp,
		FP:        fp,
		TN:        tn,
		FN:        fn,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Accuracy:  safeDivide(float64(tp+tn), float64(total)),
	}
}

// OneVsRest collapses every model's predictions to "is target" / "is not
// target" and reports the binary metrics, sorted by descending F1. target is
// canonicalized with normalize (labels.Compact when nil), which must be the
// normalizer the pool was built with.
func OneVsRest(pool []duel.Prediction, target string, normalize labels.Normalizer) []BinaryRow {
	if len(pool) == 0 {
		return []BinaryRow{}
	}
	if normalize == nil {
		normalize = labels.Compact
	}
	target = normalize(target)

	groups, models := groupByModel(pool)
	rows := make([]BinaryRow, 0, len(models))
	for _, m := range models {
		results := make([]binaryOutcome, 0, len(groups[m]))
		for _, p := range groups[m] {
			results = append(results, binaryOutcome{
				isTarget:   p.Truth == target,
				predTarget: p.Predicted == target,
			})
		}
		c := computeBinary(results)
		row := BinaryRow{
			Model: m,
			BinaryCounts: BinaryCounts{
				TP:        c.TP,
				FP:        c.FP,
				TN:        c.TN,
				FN:        c.FN,
				Precision: roundTo4(c.Precision),
				Recall:    roundTo4(c.Recall),
				F1:        roundTo4(c.F1),
				Accuracy:  roundTo4(c.Accuracy),
			},
			ErrorRate: roundTo4(1 - c.Accuracy),
			Support:   c.TP + c.FN,
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].F1 > rows[j].F1
	})
	return rows
}

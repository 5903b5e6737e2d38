package metrics

import "github.com/camtrap-arena/duelrank/internal/duel"

// ConfusionMatrix counts one model's predictions. Rows are ground truth and
// columns are predictions, both indexed by Labels.
type ConfusionMatrix struct {
	Model  string   `json:"model"`
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

// Confusion builds the confusion matrix of model over the pool-wide sorted
// label set (ground truth plus every predicted label, so that format errors
// and out-of-universe predictions keep their column).
func Confusion(pool []duel.Prediction, model string) ConfusionMatrix {
	lbls := allLabels(pool)
	index := make(map[string]int, len(lbls))
	for i, l := range lbls {
		index[l] = i
	}

	counts := make([][]int, len(lbls))
	for i := range counts {
		counts[i] = make([]int, len(lbls))
	}
	for _, p := range pool {
		if p.Model != model {
			continue
		}
		counts[index[p.Truth]][index[p.Predicted]]++
	}

	return ConfusionMatrix{Model: model, Labels: lbls, Counts: counts}
}

// RowSums returns the number of true instances per label.
func (m ConfusionMatrix) RowSums() []int {
	sums := make([]int, len(m.Labels))
	for i, row := range m.Counts {
		for _, c := range row {
			sums[i] += c
		}
	}
	return sums
}

// ColSums returns the number of predicted instances per label.
func (m ConfusionMatrix) ColSums() []int {
	sums := make([]int, len(m.Labels))
	for _, row := range m.Counts {
		for j, c := range row {
			sums[j] += c
		}
	}
	return sums
}

// Total is the number of predictions counted in the matrix.
func (m ConfusionMatrix) Total() int {
	n := 0
	for _, s := range m.RowSums() {
		n += s
	}
	return n
}

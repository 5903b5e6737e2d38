package metrics

import (
	"testing"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/camtrap-arena/duelrank/internal/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfusion_SumsMatchPool(t *testing.T) {
	pool := []duel.Prediction{
		pred("x", "a", "a"),
		pred("x", "a", "b"),
		pred("x", "b", "b"),
		{Model: "x", Truth: "c", Predicted: labels.FormatError},
		pred("x", "c", "zzz"),
		pred("y", "d", "d"),
	}

	m := Confusion(pool, "x")
	assert.Equal(t, []string{labels.FormatError, "a", "b", "c", "d", "zzz"}, m.Labels)
	require.Len(t, m.Counts, len(m.Labels))
	for _, row := range m.Counts {
		require.Len(t, row, len(m.Labels))
	}

	truthCounts := map[string]int{}
	predCounts := map[string]int{}
	for _, p := range pool {
		if p.Model == "x" {
			truthCounts[p.Truth]++
			predCounts[p.Predicted]++
		}
	}
	rows, cols := m.RowSums(), m.ColSums()
	for i, l := range m.Labels {
		assert.Equal(t, truthCounts[l], rows[i], "row %s", l)
		assert.Equal(t, predCounts[l], cols[i], "col %s", l)
	}
	assert.Equal(t, 5, m.Total())
	assert.Equal(t, 1, m.Counts[0][1], "a predicted as b")
}

func TestConfusion_UnknownModel(t *testing.T) {
	m := Confusion([]duel.Prediction{pred("x", "a", "a")}, "nobody")
	assert.Equal(t, []string{"a"}, m.Labels)
	assert.Zero(t, m.Total())
}

func TestConfusion_Empty(t *testing.T) {
	m := Confusion(nil, "x")
	assert.Empty(t, m.Labels)
	assert.Empty(t, m.Counts)
}

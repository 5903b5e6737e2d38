package ranking

import (
	"testing"

	"github.com/camtrap-arena/duelrank/internal/duel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratingsOf(rows []EloRow) map[string]float64 {
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.Model] = r.Rating
	}
	return out
}

func TestElo_SinglePassNullDuel(t *testing.T) {
	records := []duel.Record{
		truthDuel("X", "Y", onca, wiedii),
		truthDuel("X", "Y", wiedii, wiedii), // null duel
		truthDuel("X", "Y", onca, wiedii),
	}
	outcomes, models := Outcomes(records, OutcomeOptions{})
	require.Len(t, outcomes, 2)

	start := SinglePass(nil, models, DefaultK)
	assert.Equal(t, map[string]float64{"X": 1000, "Y": 1000}, start)

	opts := EloOptions{K: DefaultK}
	rows := Elo(outcomes, models, opts)
	require.Len(t, rows, 2)
	assert.Equal(t, "X", rows[0].Model)
	assert.Greater(t, rows[0].Rating, rows[1].Rating)

	// The null duel contributes nothing: rating equals two straight wins.
	first := 1000 + DefaultK*(1-0.5)
	second := first + DefaultK*(1-ExpectedScore(first, 2000-first))
	assert.InDelta(t, second, ratingsOf(rows)["X"], 1e-9)
	assert.InDelta(t, 2000, ratingsOf(rows)["X"]+ratingsOf(rows)["Y"], 1e-9)
}

func TestElo_BootstrapSinglePassReduction(t *testing.T) {
	outcomes := []Outcome{
		{A: "a", B: "b", ScoreA: 1},
		{A: "b", B: "c", ScoreA: 0.5},
		{A: "c", B: "a", ScoreA: 1},
		{A: "a", B: "c", ScoreA: 0},
		{A: "b", B: "a", ScoreA: 1},
	}
	models := []string{"a", "b", "c"}

	perm := Shuffle(len(outcomes), 42)
	ordered := make([]Outcome, len(outcomes))
	for i, idx := range perm {
		ordered[i] = outcomes[idx]
	}
	want := SinglePass(ordered, models, DefaultK)

	rows := Elo(outcomes, models, EloOptions{K: DefaultK, Bootstrap: true, Iterations: 1, Seed: 42})
	for _, r := range rows {
		assert.Equal(t, want[r.Model], r.Rating, r.Model)
		assert.Equal(t, r.Rating, r.Lower)
		assert.Equal(t, r.Rating, r.Upper)
	}
}

func TestElo_BootstrapDeterministic(t *testing.T) {
	var outcomes []Outcome
	for i := 0; i < 30; i++ {
		outcomes = append(outcomes,
			Outcome{A: "a", B: "b", ScoreA: float64(i % 2)},
			Outcome{A: "b", B: "c", ScoreA: 1},
			Outcome{A: "a", B: "c", ScoreA: 0.5},
		)
	}
	models := []string{"a", "b", "c"}

	base := DefaultEloOptions()
	base.Workers = 1
	serial := Elo(outcomes, models, base)

	base.Workers = 8
	parallel := Elo(outcomes, models, base)
	assert.Equal(t, serial, parallel)

	again := Elo(outcomes, models, base)
	assert.Equal(t, parallel, again)

	for _, r := range serial {
		assert.LessOrEqual(t, r.Lower, r.Rating)
		assert.GreaterOrEqual(t, r.Upper, r.Rating)
	}
	assert.Equal(t, "b", serial[0].Model)
}

func TestElo_AllExcludedModelsStayAt1000(t *testing.T) {
	rows := Elo(nil, []string{"x", "y"}, DefaultEloOptions())
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 1000.0, r.Rating)
	}
	assert.Equal(t, "x", rows[0].Model, "ties sort by name")
}

func TestElo_SelfDuel(t *testing.T) {
	rows := Elo([]Outcome{{A: "x", B: "x", ScoreA: 1}}, []string{"x"}, EloOptions{})
	require.Len(t, rows, 1)
	assert.InDelta(t, 1000.0, rows[0].Rating, 1e-9)
}

func TestElo_Empty(t *testing.T) {
	assert.Empty(t, Elo(nil, nil, DefaultEloOptions()))
}

func TestExpectedScore(t *testing.T) {
	assert.Equal(t, 0.5, ExpectedScore(1000, 1000))
	assert.InDelta(t, 1/(1+0.1), ExpectedScore(1400, 1000), 1e-12)
}

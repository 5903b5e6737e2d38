package ranking

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/optimize"
)

func dominance() ([]Outcome, []string) {
	var outcomes []Outcome
	add := func(a, b string, n int, score float64) {
		for i := 0; i < n; i++ {
			outcomes = append(outcomes, Outcome{A: a, B: b, ScoreA: score})
		}
	}
	add("strong", "mid", 7, 1)
	add("strong", "mid", 3, 0)
	add("mid", "weak", 7, 1)
	add("mid", "weak", 3, 0)
	add("strong", "weak", 8, 1)
	add("strong", "weak", 2, 0)
	add("weak", "mid", 2, 0.5)
	return outcomes, []string{"mid", "strong", "weak"}
}

func names(rows []StrengthRow) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Model)
	}
	return out
}

func TestNewWinMatrix(t *testing.T) {
	w := NewWinMatrix([]Outcome{
		{A: "a", B: "b", ScoreA: 1},
		{A: "a", B: "b", ScoreA: 0.5},
		{A: "b", B: "a", ScoreA: 1},
		{A: "a", B: "a", ScoreA: 1},
	}, []string{"a", "b"})
	assert.Equal(t, [][]float64{{0, 1.5}, {1.5, 0}}, w.Wins)
}

func TestBradleyTerryMM(t *testing.T) {
	outcomes, models := dominance()
	rows := BradleyTerry(outcomes, models, BTOptions{Method: MethodMM, Iterations: 100})
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"strong", "mid", "weak"}, names(rows))

	sum := 0.0
	for _, r := range rows {
		sum += r.Score
		assert.Greater(t, r.Score, 0.0)
	}
	assert.InDelta(t, MMScale, sum, 0.1)
}

func TestBradleyTerryMLE(t *testing.T) {
	outcomes, models := dominance()
	rows := BradleyTerry(outcomes, models, DefaultBTOptions())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"strong", "mid", "weak"}, names(rows))

	sum := 0.0
	for _, r := range rows {
		sum += r.Score
	}
	assert.InDelta(t, 0, sum, 0.01, "logits are centered")
	assert.Equal(t, 20.0, rows[0].Matches)
}

func TestBradleyTerryMLE_NonConvergenceWarns(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	prevIters := mleMajorIterations
	mleMajorIterations = 1
	t.Cleanup(func() { mleMajorIterations = prevIters })

	outcomes, models := dominance()
	rows := BradleyTerry(outcomes, models, DefaultBTOptions())

	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.False(t, math.IsNaN(r.Score) || math.IsInf(r.Score, 0), "score of %s must be finite", r.Model)
	}
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "did not converge")
}

func TestConverged(t *testing.T) {
	tests := []struct {
		name   string
		result *optimize.Result
		err    error
		want   bool
	}{
		{"gradient threshold", &optimize.Result{Status: optimize.GradientThreshold}, nil, true},
		{"function convergence", &optimize.Result{Status: optimize.FunctionConvergence}, nil, true},
		{"iteration limit", &optimize.Result{Status: optimize.IterationLimit}, nil, false},
		{"failure", &optimize.Result{Status: optimize.Failure}, nil, false},
		{"error", &optimize.Result{Status: optimize.GradientThreshold}, errors.New("linesearch failed"), false},
		{"no result", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, converged(tt.result, tt.err))
		})
	}
}

func TestBradleyTerry_MethodsAgreeOnTwoPlayers(t *testing.T) {
	// 3 wins vs 1: MLE strength ratio is 3, so the logit gap is ln 3.
	outcomes := []Outcome{
		{A: "a", B: "b", ScoreA: 1},
		{A: "a", B: "b", ScoreA: 1},
		{A: "a", B: "b", ScoreA: 1},
		{A: "a", B: "b", ScoreA: 0},
	}
	models := []string{"a", "b"}

	mle := BradleyTerryMLE(NewWinMatrix(outcomes, models))
	assert.InDelta(t, 1.0986, mle[0].Score-mle[1].Score, 0.01)

	mm := BradleyTerryMM(NewWinMatrix(outcomes, models), 100)
	assert.InDelta(t, 7500, mm[0].Score, 1)
	assert.InDelta(t, 2500, mm[1].Score, 1)
}

func TestBradleyTerry_ZeroWinModel(t *testing.T) {
	outcomes := []Outcome{
		{A: "a", B: "b", ScoreA: 1},
		{A: "a", B: "c", ScoreA: 1},
		{A: "b", B: "c", ScoreA: 1},
	}
	models := []string{"a", "b", "c"}

	for _, m := range []Method{MethodMLE, MethodMM} {
		t.Run(string(m), func(t *testing.T) {
			rows := BradleyTerry(outcomes, models, BTOptions{Method: m})
			require.Len(t, rows, 3)
			assert.Equal(t, []string{"a", "b", "c"}, names(rows))
			for _, r := range rows {
				assert.False(t, r.Score != r.Score, "score must not be NaN")
			}
		})
	}
}

func TestBradleyTerry_NoOutcomes(t *testing.T) {
	models := []string{"x", "y"}
	mle := BradleyTerry(nil, models, DefaultBTOptions())
	require.Len(t, mle, 2)
	for _, r := range mle {
		assert.Zero(t, r.Score)
	}

	mm := BradleyTerry(nil, models, BTOptions{Method: MethodMM})
	require.Len(t, mm, 2)
	assert.Equal(t, 5000.0, mm[0].Score)

	assert.Empty(t, BradleyTerry(nil, nil, DefaultBTOptions()))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodMLE, m)

	m, err = ParseMethod("MM")
	require.NoError(t, err)
	assert.Equal(t, MethodMM, m)

	_, err = ParseMethod("glicko")
	assert.Error(t, err)
}

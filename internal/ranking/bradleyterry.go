package ranking

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/optimize"
)

// Method selects the Bradley-Terry estimator.
type Method string

const (
	// MethodMLE maximizes the log-likelihood over log-strengths with L-BFGS
	// and reports zero-centered logits.
	MethodMLE Method = "mle"

	// MethodMM runs the minorization-maximization fixed point and reports
	// probability mass scaled by MMScale.
	MethodMM Method = "mm"
)

const (
	// DefaultBTIterations is the fixed iteration count of the MM estimator.
	DefaultBTIterations = 100

	// MMScale turns MM probability mass into readable scores.
	MMScale = 10000.0

	// likelihoodEpsilon keeps log() and the win probability away from zero.
	likelihoodEpsilon = 1e-9

	// maxLogit bounds log-strengths during optimization so exp() stays
	// finite for undefeated models.
	maxLogit = 30.0
)

// ParseMethod validates an estimator name. Empty means MLE.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "", MethodMLE:
		return MethodMLE, nil
	case MethodMM:
		return m, nil
	default:
		return "", fmt.Errorf("unknown bradley-terry method %q: must be mle or mm", s)
	}
}

// BTOptions configures [BradleyTerry].
type BTOptions struct {
	Method Method

	// Iterations is the MM round count. Ignored by MLE.
	Iterations int
}

// DefaultBTOptions returns MLE with the default MM iteration count.
func DefaultBTOptions() BTOptions {
	return BTOptions{Method: MethodMLE, Iterations: DefaultBTIterations}
}

// WinMatrix accumulates Wins[i][j], the credit model i earned against model
// j. A split adds 0.5 in both directions. Self-duels carry no information
// and are skipped.
type WinMatrix struct {
	Models []string    `json:"models"`
	Wins   [][]float64 `json:"wins"`
}

// NewWinMatrix builds the win matrix of outcomes over models.
func NewWinMatrix(outcomes []Outcome, models []string) WinMatrix {
	idx := make(map[string]int, len(models))
	for i, m := range models {
		idx[m] = i
	}
	w := make([][]float64, len(models))
	for i := range w {
		w[i] = make([]float64, len(models))
	}
	for _, o := range outcomes {
		i, okI := idx[o.A]
		j, okJ := idx[o.B]
		if !okI || !okJ || i == j {
			continue
		}
		w[i][j] += o.ScoreA
		w[j][i] += 1 - o.ScoreA
	}
	return WinMatrix{Models: models, Wins: w}
}

// StrengthRow is one model's Bradley-Terry score.
type StrengthRow struct {
	Model   string  `json:"model"`
	Score   float64 `json:"score"`
	Wins    float64 `json:"wins"`
	Matches float64 `json:"matches"`
}

// BradleyTerry estimates strengths for outcomes, sorted by descending score.
func BradleyTerry(outcomes []Outcome, models []string, opts BTOptions) []StrengthRow {
	w := NewWinMatrix(outcomes, models)
	if opts.Method == MethodMM {
		return BradleyTerryMM(w, opts.Iterations)
	}
	return BradleyTerryMLE(w)
}

// BradleyTerryMM runs the minorization-maximization update
//
//	p_i = W_i / sum_j n_ij / (p_i + p_j)
//
// for a fixed number of rounds, renormalizing to sum 1 each round. Models
// without any decided match keep their share from the previous round.
func BradleyTerryMM(w WinMatrix, iterations int) []StrengthRow {
	n := len(w.Models)
	if n == 0 {
		return []StrengthRow{}
	}
	if iterations <= 0 {
		iterations = DefaultBTIterations
	}

	wins, matches := totals(w)
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	next := make([]float64, n)
	for it := 0; it < iterations; it++ {
		for i := 0; i < n; i++ {
			denom := 0.0
			for j := 0; j < n; j++ {
				nij := w.Wins[i][j] + w.Wins[j][i]
				if i == j || nij == 0 || p[i]+p[j] == 0 {
					continue
				}
				denom += nij / (p[i] + p[j])
			}
			if denom == 0 {
				next[i] = p[i]
				continue
			}
			next[i] = wins[i] / denom
		}

		sum := 0.0
		for _, v := range next {
			sum += v
		}
		if sum == 0 {
			break
		}
		for i := range next {
			p[i] = next[i] / sum
		}
	}

	rows := make([]StrengthRow, n)
	for i, m := range w.Models {
		rows[i] = StrengthRow{
			Model:   m,
			Score:   math.Round(p[i]*MMScale*100) / 100,
			Wins:    wins[i],
			Matches: matches[i],
		}
	}
	return sortStrengths(rows)
}

// BradleyTerryMLE minimizes the negative log-likelihood
//
//	-sum_ij W_ij log(pi_i / (pi_i + pi_j + eps) + eps),  pi = exp(x)
//
// over log-strengths x with L-BFGS, then centers x to zero mean. If the
// optimizer stops without converging the reached point is used and a
// warning is logged.
func BradleyTerryMLE(w WinMatrix) []StrengthRow {
	n := len(w.Models)
	if n == 0 {
		return []StrengthRow{}
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 { return negLogLikelihood(w.Wins, x) },
		Grad: func(grad, x []float64) { negLogLikelihoodGrad(w.Wins, grad, x) },
	}
	x0 := make([]float64, n)

	x := x0
	result, err := optimize.Minimize(problem, x0, &optimize.Settings{
		GradientThreshold: 1e-8,
		MajorIterations:   mleMajorIterations,
	}, &optimize.LBFGS{})
	if result != nil && len(result.X) == n {
		x = result.X
	}
	if !converged(result, err) {
		status := "none"
		if result != nil {
			status = result.Status.String()
		}
		slog.Warn("bradley-terry optimizer did not converge, using the last point reached",
			"status", status, "error", err, "models", n)
	}

	mean := 0.0
	for _, v := range x {
		mean += clampLogit(v)
	}
	mean /= float64(n)

	wins, matches := totals(w)
	rows := make([]StrengthRow, n)
	for i, m := range w.Models {
		rows[i] = StrengthRow{
			Model:   m,
			Score:   math.Round((clampLogit(x[i])-mean)*1000) / 1000,
			Wins:    wins[i],
			Matches: matches[i],
		}
	}
	return sortStrengths(rows)
}

// mleMajorIterations caps L-BFGS iterations.
var mleMajorIterations = 1000

// converged reports whether the optimizer stopped at a minimum rather than
// on a limit or a failure.
func converged(result *optimize.Result, err error) bool {
	if err != nil || result == nil {
		return false
	}
	switch result.Status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence,
		optimize.StepConvergence, optimize.FunctionThreshold, optimize.MethodConverge:
		return true
	}
	return false
}

func negLogLikelihood(wins [][]float64, x []float64) float64 {
	ll := 0.0
	for i := range wins {
		pi := math.Exp(clampLogit(x[i]))
		for j, wij := range wins[i] {
			if i == j || wij <= 0 {
				continue
			}
			pj := math.Exp(clampLogit(x[j]))
			ll += wij * math.Log(pi/(pi+pj+likelihoodEpsilon)+likelihoodEpsilon)
		}
	}
	return -ll
}

func negLogLikelihoodGrad(wins [][]float64, grad, x []float64) {
	for k := range grad {
		grad[k] = 0
	}
	for i := range wins {
		pi := math.Exp(clampLogit(x[i]))
		for j, wij := range wins[i] {
			if i == j || wij <= 0 {
				continue
			}
			pj := math.Exp(clampLogit(x[j]))
			s := pi + pj + likelihoodEpsilon
			q := pi / s
			coef := wij / (q + likelihoodEpsilon) / (s * s)
			if inRange(x[i]) {
				grad[i] -= coef * (pj + likelihoodEpsilon) * pi
			}
			if inRange(x[j]) {
				grad[j] += coef * pi * pj
			}
		}
	}
}

func clampLogit(v float64) float64 {
	return math.Max(-maxLogit, math.Min(maxLogit, v))
}

func inRange(v float64) bool {
	return v > -maxLogit && v < maxLogit
}

// totals returns decided credit and match count per model.
func totals(w WinMatrix) ([]float64, []float64) {
	n := len(w.Models)
	wins := make([]float64, n)
	matches := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			wins[i] += w.Wins[i][j]
			matches[i] += w.Wins[i][j] + w.Wins[j][i]
		}
	}
	return wins, matches
}

func sortStrengths(rows []StrengthRow) []StrengthRow {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Model < rows[j].Model
	})
	return rows
}

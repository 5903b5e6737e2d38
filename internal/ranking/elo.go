package ranking

import (
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/camtrap-arena/duelrank/internal/statistics"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultK             = 32.0
	DefaultIterations    = 100
	DefaultSeed          = 42
	DefaultInitialRating = 1000.0
)

// EloOptions configures [Elo].
type EloOptions struct {
	K float64

	// Bootstrap averages Iterations passes over independently shuffled
	// orders. When false a single pass runs in the given order.
	Bootstrap  bool
	Iterations int
	Seed       int64

	// Workers bounds parallel bootstrap passes. Zero means GOMAXPROCS.
	Workers int
}

// DefaultEloOptions returns bootstrap Elo with K=32, 100 passes, seed 42.
func DefaultEloOptions() EloOptions {
	return EloOptions{
		K:          DefaultK,
		Bootstrap:  true,
		Iterations: DefaultIterations,
		Seed:       DefaultSeed,
	}
}

// EloRow is one model's rating. Lower and Upper bound the central 95% of
// bootstrap passes and equal Rating in single-pass mode.
type EloRow struct {
	Model  string  `json:"model"`
	Rating float64 `json:"rating"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// ExpectedScore is the probability that a player rated ra beats one rated rb.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// SinglePass runs one Elo pass over outcomes in order. Every model starts
// at 1000.
func SinglePass(outcomes []Outcome, models []string, k float64) map[string]float64 {
	ratings := make(map[string]float64, len(models))
	for _, m := range models {
		ratings[m] = DefaultInitialRating
	}
	for _, o := range outcomes {
		ra, rb := ratings[o.A], ratings[o.B]
		ea := ExpectedScore(ra, rb)
		ratings[o.A] = ra + k*(o.ScoreA-ea)
		ratings[o.B] += k * ((1 - o.ScoreA) - (1 - ea))
	}
	return ratings
}

// Shuffle returns the permutation of [0, n) used by the bootstrap pass
// seeded with seed.
func Shuffle(n int, seed int64) []int {
	return rand.New(rand.NewSource(seed)).Perm(n)
}

// Elo rates every model, sorted by descending rating. In bootstrap mode pass
// i processes outcomes in the order Shuffle(len(outcomes), Seed+i) and the
// reported rating is the mean over passes, so output only depends on the
// inputs and the seed, never on worker scheduling.
func Elo(outcomes []Outcome, models []string, opts EloOptions) []EloRow {
	if len(models) == 0 {
		return []EloRow{}
	}
	if opts.K == 0 {
		opts.K = DefaultK
	}

	if !opts.Bootstrap {
		ratings := SinglePass(outcomes, models, opts.K)
		rows := make([]EloRow, 0, len(models))
		for _, m := range models {
			r := ratings[m]
			rows = append(rows, EloRow{Model: m, Rating: r, Lower: r, Upper: r})
		}
		return sortElo(rows)
	}

	iters := opts.Iterations
	if iters <= 0 {
		iters = DefaultIterations
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	passes := make([]map[string]float64, iters)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < iters; i++ {
		g.Go(func() error {
			perm := Shuffle(len(outcomes), opts.Seed+int64(i))
			ordered := make([]Outcome, len(outcomes))
			for j, idx := range perm {
				ordered[j] = outcomes[idx]
			}
			passes[i] = SinglePass(ordered, models, opts.K)
			return nil
		})
	}
	_ = g.Wait()

	rows := make([]EloRow, 0, len(models))
	samples := make([]float64, iters)
	for _, m := range models {
		for i, p := range passes {
			samples[i] = p[m]
		}
		lo, hi := statistics.PercentileInterval(samples, statistics.DefaultConfidenceLevel)
		rows = append(rows, EloRow{
			Model:  m,
			Rating: statistics.Mean(samples),
			Lower:  lo,
			Upper:  hi,
		})
	}
	return sortElo(rows)
}

func sortElo(rows []EloRow) []EloRow {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Rating != rows[j].Rating {
			return rows[i].Rating > rows[j].Rating
		}
		return rows[i].Model < rows[j].Model
	})
	return rows
}

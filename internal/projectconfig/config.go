// Package projectconfig provides the ProjectConfig struct and loader for
// .duelrank.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by [Load].
const FileName = ".duelrank.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultNormalization = "compact"
	DefaultAccuracy      = "strict"
	DefaultOutcome       = "ground_truth"

	DefaultEloK          = 32.0
	DefaultEloIterations = 100
	DefaultEloSeed       = 42
	DefaultWorkers       = 4

	DefaultBTMethod     = "mle"
	DefaultBTIterations = 100

	DefaultCacheDir = ".duelrank-cache"
)

// VotesConfig holds the policy for non-decisive human votes.
type VotesConfig struct {
	ExcludeUndecided *bool `yaml:"exclude_undecided,omitempty"`
	IgnoreBothBad    *bool `yaml:"ignore_both_bad,omitempty"`
}

// EloConfig holds Elo parameters.
type EloConfig struct {
	K          float64 `yaml:"k,omitempty"`
	Bootstrap  *bool   `yaml:"bootstrap,omitempty"`
	Iterations int     `yaml:"iterations,omitempty"`
	Seed       *int64  `yaml:"seed,omitempty"`
	Workers    int     `yaml:"workers,omitempty"`
}

// BradleyTerryConfig holds Bradley-Terry parameters.
type BradleyTerryConfig struct {
	Method     string `yaml:"method,omitempty"`
	Iterations int    `yaml:"iterations,omitempty"`
}

// RankingConfig groups preference ranking settings.
type RankingConfig struct {
	Outcome      string             `yaml:"outcome,omitempty"`
	Votes        VotesConfig        `yaml:"votes,omitempty"`
	Elo          EloConfig          `yaml:"elo,omitempty"`
	BradleyTerry BradleyTerryConfig `yaml:"bradley_terry,omitempty"`
}

// MetricsConfig groups classification metric settings.
type MetricsConfig struct {
	Accuracy string `yaml:"accuracy,omitempty"`
	Target   string `yaml:"target,omitempty"`
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .duelrank.yaml.
type ProjectConfig struct {
	// Ledger is the default ledger location when none is given on the
	// command line.
	Ledger        string        `yaml:"ledger,omitempty"`
	Normalization string        `yaml:"normalization,omitempty"`
	Ranking       RankingConfig `yaml:"ranking,omitempty"`
	Metrics       MetricsConfig `yaml:"metrics,omitempty"`
	Cache         CacheConfig   `yaml:"cache,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Normalization: DefaultNormalization,
		Ranking: RankingConfig{
			Outcome: DefaultOutcome,
			Votes: VotesConfig{
				ExcludeUndecided: boolPtr(false),
				IgnoreBothBad:    boolPtr(false),
			},
			Elo: EloConfig{
				K:          DefaultEloK,
				Bootstrap:  boolPtr(true),
				Iterations: DefaultEloIterations,
				Seed:       int64Ptr(DefaultEloSeed),
				Workers:    DefaultWorkers,
			},
			BradleyTerry: BradleyTerryConfig{
				Method:     DefaultBTMethod,
				Iterations: DefaultBTIterations,
			},
		},
		Metrics: MetricsConfig{
			Accuracy: DefaultAccuracy,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
	}
}

// Load finds .duelrank.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .duelrank.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Ledger != "" {
		dst.Ledger = src.Ledger
	}
	if src.Normalization != "" {
		dst.Normalization = src.Normalization
	}

	// Ranking
	r, sr := &dst.Ranking, &src.Ranking
	if sr.Outcome != "" {
		r.Outcome = sr.Outcome
	}
	if sr.Votes.ExcludeUndecided != nil {
		r.Votes.ExcludeUndecided = sr.Votes.ExcludeUndecided
	}
	if sr.Votes.IgnoreBothBad != nil {
		r.Votes.IgnoreBothBad = sr.Votes.IgnoreBothBad
	}
	if sr.Elo.K != 0 {
		r.Elo.K = sr.Elo.K
	}
	if sr.Elo.Bootstrap != nil {
		r.Elo.Bootstrap = sr.Elo.Bootstrap
	}
	if sr.Elo.Iterations != 0 {
		r.Elo.Iterations = sr.Elo.Iterations
	}
	if sr.Elo.Seed != nil {
		r.Elo.Seed = sr.Elo.Seed
	}
	if sr.Elo.Workers != 0 {
		r.Elo.Workers = sr.Elo.Workers
	}
	if sr.BradleyTerry.Method != "" {
		r.BradleyTerry.Method = sr.BradleyTerry.Method
	}
	if sr.BradleyTerry.Iterations != 0 {
		r.BradleyTerry.Iterations = sr.BradleyTerry.Iterations
	}

	// Metrics
	if src.Metrics.Accuracy != "" {
		dst.Metrics.Accuracy = src.Metrics.Accuracy
	}
	if src.Metrics.Target != "" {
		dst.Metrics.Target = src.Metrics.Target
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func int64Ptr(i int64) *int64 {
	return &i
}

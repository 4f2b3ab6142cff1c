package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/nnaakkaaii/game2048/internal/domain"
)

// Config は自動プレイ全体の設定
type Config struct {
	Board    BoardConfig    `yaml:"board"`
	Solver   SolverConfig   `yaml:"solver"`
	AutoPlay AutoPlayConfig `yaml:"autoplay"`
}

// BoardConfig は盤面のルールと乱数シード
type BoardConfig struct {
	Side           int     `yaml:"side"`
	TwoProbability float64 `yaml:"two_probability"`
	Seed           int64   `yaml:"seed"` // 0なら現在時刻
}

// SolverConfig は探索の設定
type SolverConfig struct {
	Kind        string             `yaml:"kind"`
	Evaluator   string             `yaml:"evaluator"`
	Weights     map[string]float64 `yaml:"weights"` // evaluatorがweightedのときの係数
	Depth       int                `yaml:"depth"`
	SampleCells int                `yaml:"sample_cells"`
	MaxExplore  int                `yaml:"max_explore"`
	Workers     int                `yaml:"workers"` // parallelの並列数（0ならNumCPU）
}

// AutoPlayConfig は自動プレイの設定
type AutoPlayConfig struct {
	Games    int           `yaml:"games"`
	Workers  int           `yaml:"workers"`   // 0ならNumCPU
	MaxMoves int           `yaml:"max_moves"` // 0なら無制限
	Delay    time.Duration `yaml:"delay"`
	Verbose  bool          `yaml:"verbose"`
}

// Default はデフォルトの設定を返す
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load はYAMLファイルから設定を読み込む
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Parse はYAMLをデコードし、未設定の項目をデフォルト値で埋める
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Board.Side == 0 {
		c.Board.Side = 4
	}
	if c.Board.TwoProbability == 0 {
		c.Board.TwoProbability = domain.DefaultTwoProbability
	}
	if c.Solver.Kind == "" {
		c.Solver.Kind = string(domain.SolverExpectimax)
	}
	if c.Solver.Evaluator == "" {
		c.Solver.Evaluator = string(domain.EvaluatorLargest)
	}
	if c.Solver.Depth == 0 {
		c.Solver.Depth = 3
	}
	if c.Solver.SampleCells == 0 {
		c.Solver.SampleCells = 6
	}
	if c.Solver.MaxExplore == 0 {
		c.Solver.MaxExplore = 500
	}
	if c.AutoPlay.Games == 0 {
		c.AutoPlay.Games = 1
	}
}

// Validate は不正な項目をまとめて返す
func (c *Config) Validate() error {
	var err error

	err = multierr.Append(err, c.DomainBoard().Validate())
	if _, kindErr := domain.ParseSolverKind(c.Solver.Kind); kindErr != nil {
		err = multierr.Append(err, fmt.Errorf("solver.kind: %w", kindErr))
	}
	if _, evErr := c.Evaluator(); evErr != nil {
		err = multierr.Append(err, fmt.Errorf("solver.evaluator: %w", evErr))
	}
	if c.Solver.Depth < 1 || c.Solver.Depth > domain.MaxSearchDepth {
		err = multierr.Append(err, fmt.Errorf("solver.depth must be 1-%d, got %d", domain.MaxSearchDepth, c.Solver.Depth))
	}
	if c.Solver.SampleCells < 1 {
		err = multierr.Append(err, fmt.Errorf("solver.sample_cells must be positive, got %d", c.Solver.SampleCells))
	}
	if c.Solver.MaxExplore < 1 {
		err = multierr.Append(err, fmt.Errorf("solver.max_explore must be positive, got %d", c.Solver.MaxExplore))
	}
	if c.Solver.Workers < 0 {
		err = multierr.Append(err, errors.New("solver.workers must not be negative"))
	}
	if c.AutoPlay.Games < 1 {
		err = multierr.Append(err, fmt.Errorf("autoplay.games must be positive, got %d", c.AutoPlay.Games))
	}
	if c.AutoPlay.Workers < 0 {
		err = multierr.Append(err, errors.New("autoplay.workers must not be negative"))
	}
	if c.AutoPlay.MaxMoves < 0 {
		err = multierr.Append(err, errors.New("autoplay.max_moves must not be negative"))
	}
	if c.AutoPlay.Delay < 0 {
		err = multierr.Append(err, errors.New("autoplay.delay must not be negative"))
	}

	return err
}

// DomainBoard は盤面設定をdomain.BoardConfigに変換する
func (c *Config) DomainBoard() domain.BoardConfig {
	return domain.BoardConfig{
		Side:           c.Board.Side,
		TwoProbability: c.Board.TwoProbability,
	}
}

// SearchOptions は探索設定をdomain.SearchOptionsに変換する
func (c *Config) SearchOptions() domain.SearchOptions {
	return domain.SearchOptions{
		MaxDepth:       c.Solver.Depth,
		SampleCells:    c.Solver.SampleCells,
		TwoProbability: c.Board.TwoProbability,
		MaxExplore:     c.Solver.MaxExplore,
		Workers:        c.Solver.Workers,
	}
}

// EvaluatorKind は評価関数の種類と係数をdomainの型に変換する
func (c *Config) EvaluatorKind() (domain.EvaluatorKind, map[domain.EvaluatorKind]float64, error) {
	kind, err := domain.ParseEvaluatorKind(c.Solver.Evaluator)
	if err != nil {
		return "", nil, err
	}
	if len(c.Solver.Weights) > 0 && kind != domain.EvaluatorWeighted {
		return "", nil, fmt.Errorf("weights are only used by the %s evaluator", domain.EvaluatorWeighted)
	}

	weights := make(map[domain.EvaluatorKind]float64, len(c.Solver.Weights))
	for name, w := range c.Solver.Weights {
		k, err := domain.ParseEvaluatorKind(name)
		if err != nil {
			return "", nil, err
		}
		weights[k] = w
	}
	return kind, weights, nil
}

// Evaluator は設定された評価関数を生成する
func (c *Config) Evaluator() (domain.Evaluator, error) {
	kind, weights, err := c.EvaluatorKind()
	if err != nil {
		return nil, err
	}
	return domain.NewEvaluator(kind, weights)
}

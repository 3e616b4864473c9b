package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/bdesim/internal/series"
)

const (
	DefaultModel = "negation"
	DefaultRel   = 1e-9
	DefaultAbs   = 1e-12
)

// Config describes one simulation run. A run always names a registered
// model (the transition rule is code, not data); delays, histories, forcing
// and the end time can be overridden per run.
type Config struct {
	Model     string          `yaml:"model"`
	End       float64         `yaml:"end"`
	Delays    []float64       `yaml:"delays"`
	Histories []SeriesConfig  `yaml:"histories"`
	Forcing   []SeriesConfig  `yaml:"forcing"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
}

// SeriesConfig is the on-disk form of a BooleanTimeSeries.
type SeriesConfig struct {
	Label  string    `yaml:"label"`
	Times  []float64 `yaml:"times"`
	Values []bool    `yaml:"values"`
	End    float64   `yaml:"end"`
}

// ToleranceConfig overrides the time-comparison policy.
type ToleranceConfig struct {
	Rel float64 `yaml:"rel"`
	Abs float64 `yaml:"abs"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:     DefaultModel,
		Tolerance: ToleranceConfig{Rel: DefaultRel, Abs: DefaultAbs},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("config: model name is required")
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Eps returns the configured time-comparison policy.
func (c *Config) Eps() series.Tolerance {
	eps := series.Tolerance{Rel: c.Tolerance.Rel, Abs: c.Tolerance.Abs}
	if eps.Rel == 0 && eps.Abs == 0 {
		eps = series.DefaultTolerance()
	}
	return eps
}

// ToSeries builds the series described by s under the given tolerance.
func (s *SeriesConfig) ToSeries(eps series.Tolerance) (*series.BooleanTimeSeries, error) {
	bts, err := series.NewWithTolerance(s.Times, s.Values, s.End, eps)
	if err != nil {
		return nil, fmt.Errorf("config: series %q: %w", s.Label, err)
	}
	bts.Label = s.Label
	return bts, nil
}

// SeriesList converts a list of series configs.
func SeriesList(list []SeriesConfig, eps series.Tolerance) ([]*series.BooleanTimeSeries, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]*series.BooleanTimeSeries, len(list))
	for i := range list {
		s, err := list[i].ToSeries(eps)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// FromSeries captures a series back into its on-disk form.
func FromSeries(s *series.BooleanTimeSeries) SeriesConfig {
	t := make([]float64, len(s.T))
	copy(t, s.T)
	y := make([]bool, len(s.Y))
	copy(y, s.Y)
	return SeriesConfig{Label: s.Label, Times: t, Values: y, End: s.End}
}

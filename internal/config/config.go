// Package config loads the search configuration from YAML.
//
// Every tunable of a run lives in Config: the population and grid sizes, the
// epoch count, the offspring chances, the score schedule and where results
// go. Values missing from the file keep their Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"lifeforge/internal/evo"
	"lifeforge/internal/life"
	"lifeforge/internal/storage"
)

type Config struct {
	Evolution EvolutionConfig `yaml:"evolution"`
	Store     StoreConfig     `yaml:"store"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

type EvolutionConfig struct {
	GridSize       int         `yaml:"grid_size"`
	PopulationSize int         `yaml:"population_size"`
	Epochs         int         `yaml:"epochs"`
	Workers        int         `yaml:"workers"`
	Seed           int64       `yaml:"seed"`
	Chances        evo.Chances `yaml:"chances"`

	// Horizon is the number of simulated steps behind a score. ScoreWeights,
	// when set, replaces the default ramp and fixes the horizon to its length.
	Horizon      int       `yaml:"horizon"`
	ScoreWeights []float64 `yaml:"score_weights"`
}

type StoreConfig struct {
	Kind   string `yaml:"kind"`
	DBPath string `yaml:"db_path"`
}

type OutputConfig struct {
	ArtifactsDir    string `yaml:"artifacts_dir"`
	BestBoardPath   string `yaml:"best_board_path"`
	MetricsFile     string `yaml:"metrics_file"`
	SnapshotEvery   int    `yaml:"snapshot_every"`
	ContinueFromPop string `yaml:"continue_from_population"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	defaults := evo.DefaultConfig()
	return Config{
		Evolution: EvolutionConfig{
			GridSize:       defaults.GridSize,
			PopulationSize: defaults.PopulationSize,
			Epochs:         defaults.Epochs,
			Workers:        defaults.Workers,
			Seed:           defaults.Seed,
			Chances:        defaults.Chances,
			Horizon:        life.DefaultHorizon,
		},
		Store: StoreConfig{
			Kind:   storage.DefaultStoreKind(),
			DBPath: "lifeforge.db",
		},
		Output: OutputConfig{
			ArtifactsDir:  "runs",
			BestBoardPath: "best_board.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads path over Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	e := c.Evolution
	if e.GridSize <= 0 {
		return fmt.Errorf("evolution.grid_size must be > 0")
	}
	if e.PopulationSize <= 0 {
		return fmt.Errorf("evolution.population_size must be > 0")
	}
	if e.Epochs < 0 {
		return fmt.Errorf("evolution.epochs must be >= 0")
	}
	if e.Workers <= 0 {
		return fmt.Errorf("evolution.workers must be > 0")
	}
	if len(e.ScoreWeights) == 0 && e.Horizon <= 0 {
		return fmt.Errorf("evolution.horizon must be > 0")
	}
	if err := e.Chances.Validate(); err != nil {
		return fmt.Errorf("evolution.chances: %w", err)
	}
	switch c.Store.Kind {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("store.kind must be memory or sqlite: %q", c.Store.Kind)
	}
	if c.Store.Kind == "sqlite" && c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required for sqlite")
	}
	if c.Output.SnapshotEvery < 0 {
		return fmt.Errorf("output.snapshot_every must be >= 0")
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log.format must be auto, text or json: %q", c.Log.Format)
	}
	return nil
}

// Schedule builds the score schedule described by the configuration.
func (e EvolutionConfig) Schedule() (*life.Schedule, error) {
	if len(e.ScoreWeights) > 0 {
		return life.NewScheduleWithWeights(e.ScoreWeights)
	}
	if e.Horizon == life.DefaultHorizon {
		return life.DefaultSchedule(), nil
	}
	return life.NewSchedule(e.Horizon), nil
}

func (e EvolutionConfig) EvoConfig() (evo.Config, error) {
	schedule, err := e.Schedule()
	if err != nil {
		return evo.Config{}, err
	}
	cfg := evo.Config{
		GridSize:       e.GridSize,
		PopulationSize: e.PopulationSize,
		Epochs:         e.Epochs,
		Workers:        e.Workers,
		Seed:           e.Seed,
		Chances:        e.Chances,
		Schedule:       schedule,
	}
	return cfg, cfg.Validate()
}

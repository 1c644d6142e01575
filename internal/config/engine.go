package config

import (
	"fmt"
	"os"

	"roulette-oracle/internal/agent"
	"roulette-oracle/internal/strategy"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EngineConfig tunes the prediction engine. Values from TUNING_FILE
// override the environment.
type EngineConfig struct {
	Alpha        float64 `env:"AGENT_ALPHA" envDefault:"0.15"`
	Gamma        float64 `env:"AGENT_GAMMA" envDefault:"0.90"`
	Epsilon      float64 `env:"AGENT_EPSILON" envDefault:"0.90"`
	EpsilonMin   float64 `env:"AGENT_EPSILON_MIN" envDefault:"0.05"`
	EpsilonDecay float64 `env:"AGENT_EPSILON_DECAY" envDefault:"0.97"`
	MaxStates    int     `env:"AGENT_MAX_STATES" envDefault:"0"`
	Seed         int64   `env:"AGENT_SEED" envDefault:"0"`

	TuningFile string `env:"TUNING_FILE"`
}

func LoadEngine() (EngineConfig, error) {
	var cfg EngineConfig
	err := env.Parse(&cfg)
	return cfg, err
}

type tuningFile struct {
	Agent    agent.Params    `yaml:"agent"`
	Strategy strategy.Params `yaml:"strategy"`
}

// Resolve merges the environment with the optional tuning file and
// validates the result.
func (c EngineConfig) Resolve() (agent.Params, strategy.Params, error) {
	doc := tuningFile{
		Agent: agent.Params{
			Alpha:        c.Alpha,
			Gamma:        c.Gamma,
			Epsilon:      c.Epsilon,
			EpsilonMin:   c.EpsilonMin,
			EpsilonDecay: c.EpsilonDecay,
			MaxStates:    c.MaxStates,
		},
		Strategy: strategy.DefaultParams(),
	}
	if c.TuningFile != "" {
		data, err := os.ReadFile(c.TuningFile)
		if err != nil {
			return agent.Params{}, strategy.Params{}, fmt.Errorf("read tuning file: %w", err)
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return agent.Params{}, strategy.Params{}, fmt.Errorf("parse tuning file: %w", err)
		}
	}
	if err := doc.Agent.Validate(); err != nil {
		return agent.Params{}, strategy.Params{}, err
	}
	if err := doc.Strategy.Validate(); err != nil {
		return agent.Params{}, strategy.Params{}, err
	}
	return doc.Agent, doc.Strategy, nil
}

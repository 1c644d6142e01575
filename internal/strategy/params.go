package strategy

import "errors"

var ErrInvalidParams = errors.New("invalid_strategy_params")

// Params holds the reversal thresholds of the streak and imbalance
// strategies.
type Params struct {
	StreakReversal int     `yaml:"streak_reversal" json:"streak_reversal"`
	EvenHigh       float64 `yaml:"even_high" json:"even_high"`
	EvenLow        float64 `yaml:"even_low" json:"even_low"`
	LowHigh        float64 `yaml:"low_high" json:"low_high"`
	LowLow         float64 `yaml:"low_low" json:"low_low"`
}

func DefaultParams() Params {
	return Params{
		StreakReversal: 3,
		EvenHigh:       0.65,
		EvenLow:        0.35,
		LowHigh:        0.6,
		LowLow:         0.4,
	}
}

func (p Params) Validate() error {
	if p.StreakReversal < 1 {
		return ErrInvalidParams
	}
	if p.EvenLow < 0 || p.EvenHigh > 1 || p.EvenLow >= p.EvenHigh {
		return ErrInvalidParams
	}
	if p.LowLow < 0 || p.LowHigh > 1 || p.LowLow >= p.LowHigh {
		return ErrInvalidParams
	}
	return nil
}

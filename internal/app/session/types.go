package session

import (
	"roulette-oracle/internal/agent"
	"roulette-oracle/internal/analysis"
	"roulette-oracle/internal/category"
	"roulette-oracle/internal/consensus"
	"roulette-oracle/internal/wheel"
)

const (
	MinPredictionSpins = 5
	MinAgentSpins      = 8
	TopActions         = 6
	agentTrendWindow   = 8
)

// Event types pushed to the session event buffer.
const (
	EventSpin   = "spin"
	EventUndo   = "undo"
	EventRemove = "remove"
	EventReset  = "reset"
	EventImport = "import"
)

type Change struct {
	Kind   string      `json:"kind"`
	Number int         `json:"number"`
	Color  wheel.Color `json:"color,omitempty"`
	Index  int         `json:"index"`
	Length int         `json:"length"`
	// Agent is the action the live step scored, empty when the history was
	// too short to learn from.
	Agent agent.Action `json:"agent_action,omitempty"`
}

type Prediction struct {
	Consensus  consensus.Report    `json:"consensus"`
	Categories []category.Category `json:"categories"`
}

type AgentView struct {
	State       string         `json:"state"`
	Actions     []agent.Ranked `json:"actions"`
	StateCount  int            `json:"state_count"`
	AverageQ    float64        `json:"average_q"`
	Confidence  int            `json:"confidence"`
	Epsilon     float64        `json:"epsilon"`
	Updates     int64          `json:"updates"`
	RedPercent  int            `json:"red_percent"`
	EvenPercent int            `json:"even_percent"`
}

// Overview is everything a client needs to render a session. Sections
// are nil until the history is long enough to compute them.
type Overview struct {
	ID         string            `json:"id"`
	History    []int             `json:"history"`
	Last       *int              `json:"last,omitempty"`
	Prediction *Prediction       `json:"prediction,omitempty"`
	Agent      *AgentView        `json:"agent,omitempty"`
	Stats      *analysis.Summary `json:"stats,omitempty"`
}

package ws

import (
	appsession "roulette-oracle/internal/app/session"
	"roulette-oracle/internal/stream"
)

const ProtocolVersion = "1"

const maxRequestIDLen = 64

// Inbound message types.
const (
	MsgSpin   = "spin"
	MsgUndo   = "undo"
	MsgRemove = "remove"
	MsgReset  = "reset"
	MsgPing   = "ping"
)

type Command struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Number    *int   `json:"number,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

type Hello struct {
	Type            string              `json:"type"`
	ProtocolVersion string              `json:"protocol_version"`
	Overview        appsession.Overview `json:"overview"`
}

type Result struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	RequestID       string             `json:"request_id,omitempty"`
	Ok              bool               `json:"ok"`
	Error           string             `json:"error,omitempty"`
	Persisted       bool               `json:"persisted,omitempty"`
	Change          *appsession.Change `json:"change,omitempty"`
}

// Update is pushed for every change to the session, whoever made it.
type Update struct {
	Type            string              `json:"type"`
	ProtocolVersion string              `json:"protocol_version"`
	Event           stream.Event        `json:"event"`
	Overview        appsession.Overview `json:"overview"`
}

type Closed struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Reason          string `json:"reason"`
}

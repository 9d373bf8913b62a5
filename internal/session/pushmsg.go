package session

import (
	"encoding/json"

	"github.com/park285/tactic-client/internal/board"
)

// PushMessage is the decoded form of a push delivery: either a StateUpdate
// or Unrecognized. Unrecognized deliveries are discarded whole.
type PushMessage interface{ isPushMessage() }

type StateUpdate struct {
	MatchID string
	State   *board.GameState
}

func (StateUpdate) isPushMessage() {}

type Unrecognized struct{ Reason string }

func (Unrecognized) isPushMessage() {}

type pushEnvelope struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id,omitempty"`
	State   json.RawMessage `json:"state"`
}

const pushTypeStateUpdate = "state_update"

// DecodePush classifies a raw delivery. Only {"type":"state_update","state":..}
// with a valid snapshot is recognized.
func DecodePush(raw []byte) PushMessage {
	var env pushEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Unrecognized{Reason: "malformed envelope: " + err.Error()}
	}
	if env.Type != pushTypeStateUpdate {
		return Unrecognized{Reason: "unknown type " + env.Type}
	}
	st, err := board.DecodeState(env.State)
	if err != nil {
		return Unrecognized{Reason: err.Error()}
	}
	return StateUpdate{MatchID: env.MatchID, State: st}
}

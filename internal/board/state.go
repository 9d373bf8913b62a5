package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Phase of a match as reported by the server.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "setup":
		return PhaseSetup, nil
	case "playing":
		return PhasePlaying, nil
	case "ended", "finished":
		return PhaseEnded, nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

func (p *Phase) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	parsed, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// GameState is an authoritative snapshot. It is never patched: a newer
// snapshot replaces the held pointer wholesale.
type GameState struct {
	Board     Board  `json:"board"`
	Turn      string `json:"turn"`
	TurnCount int    `json:"turn_count"`
	Phase     Phase  `json:"phase"`
}

var ErrInvalidState = errors.New("invalid game state")

// Validate checks the fields the board decoder cannot check on its own.
func (s *GameState) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrInvalidState)
	}
	if strings.TrimSpace(s.Turn) == "" {
		return fmt.Errorf("%w: missing turn holder", ErrInvalidState)
	}
	if s.TurnCount < 0 {
		return fmt.Errorf("%w: negative turn count %d", ErrInvalidState, s.TurnCount)
	}
	if _, err := ParsePhase(string(s.Phase)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// DecodeState parses and validates a JSON snapshot.
func DecodeState(raw []byte) (*GameState, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidState)
	}
	var s GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// IsTurnOf reports whether player currently holds the turn.
func (s *GameState) IsTurnOf(player string) bool {
	return s != nil && s.Turn == player
}

package board

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ActionKind string

const (
	KindMove    ActionKind = "Move"
	KindAttack  ActionKind = "Attack"
	KindEndTurn ActionKind = "EndTurn"
)

// Action is one of Move{From,To}, Attack{From,To} or EndTurn.
// From/To are meaningless for EndTurn.
type Action struct {
	Kind ActionKind
	From Coord
	To   Coord
}

func Move(from, to Coord) Action   { return Action{Kind: KindMove, From: from, To: to} }
func Attack(from, to Coord) Action { return Action{Kind: KindAttack, From: from, To: to} }
func EndTurn() Action              { return Action{Kind: KindEndTurn} }

func (a Action) String() string {
	switch a.Kind {
	case KindMove, KindAttack:
		return fmt.Sprintf("%s %s->%s", a.Kind, a.From, a.To)
	case KindEndTurn:
		return string(KindEndTurn)
	default:
		return "Unknown"
	}
}

type wireFromTo struct {
	From Coord `json:"from"`
	To   Coord `json:"to"`
}

// MarshalJSON writes the externally tagged form the game server expects:
// {"Move":{"from":..,"to":..}}, {"Attack":{..}} or "EndTurn".
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindMove, KindAttack:
		return json.Marshal(map[string]wireFromTo{string(a.Kind): {From: a.From, To: a.To}})
	case KindEndTurn:
		return json.Marshal(string(KindEndTurn))
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (a *Action) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return err
		}
		if ActionKind(tag) != KindEndTurn {
			return fmt.Errorf("unknown unit action %q", tag)
		}
		*a = EndTurn()
		return nil
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("action must have exactly one tag, got %d", len(tagged))
	}
	for tag, body := range tagged {
		switch ActionKind(tag) {
		case KindEndTurn:
			*a = EndTurn()
		case KindMove, KindAttack:
			var ft wireFromTo
			if err := json.Unmarshal(body, &ft); err != nil {
				return fmt.Errorf("decode %s: %w", tag, err)
			}
			if !ft.From.Valid() || !ft.To.Valid() {
				return fmt.Errorf("%s coordinates out of bounds: %s -> %s", tag, ft.From, ft.To)
			}
			*a = Action{Kind: ActionKind(tag), From: ft.From, To: ft.To}
		default:
			return fmt.Errorf("unknown action %q", tag)
		}
	}
	return nil
}

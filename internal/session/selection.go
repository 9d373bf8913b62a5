package session

import "github.com/park285/tactic-client/internal/board"

type SelectionState int

const (
	SelectUnit SelectionState = iota
	SelectTarget
	WaitingResponse
)

func (s SelectionState) String() string {
	switch s {
	case SelectUnit:
		return "SelectUnit"
	case SelectTarget:
		return "SelectTarget"
	case WaitingResponse:
		return "WaitingResponse"
	default:
		return "Unknown"
	}
}

// Outcome tells the controller what a chosen coordinate did.
type Outcome int

const (
	OutcomeSelected Outcome = iota
	OutcomeAction
	OutcomeAwaiting
	OutcomeNoState
	OutcomeNoUnit
	OutcomeNotYours
	OutcomeOutOfBounds
)

// Selector is the unit/target state machine. It performs no I/O. The
// pending origin is set exactly while the state is SelectTarget or
// WaitingResponse.
type Selector struct {
	state  SelectionState
	origin board.Coord
}

func (s *Selector) State() SelectionState { return s.state }

// Pending returns the stored origin, if any.
func (s *Selector) Pending() (board.Coord, bool) {
	if s.state == SelectUnit {
		return board.Coord{}, false
	}
	return s.origin, true
}

// Choose feeds one chosen coordinate. The target's occupancy in gs alone
// decides between Attack and Move; the returned Action is only meaningful
// for OutcomeAction.
func (s *Selector) Choose(c board.Coord, gs *board.GameState, player string) (Outcome, board.Action) {
	if s.state == WaitingResponse {
		return OutcomeAwaiting, board.Action{}
	}
	if !c.Valid() {
		return OutcomeOutOfBounds, board.Action{}
	}
	switch s.state {
	case SelectUnit:
		if gs == nil {
			return OutcomeNoState, board.Action{}
		}
		cell, _ := gs.Board.Get(c)
		if cell.IsEmpty() {
			return OutcomeNoUnit, board.Action{}
		}
		if !cell.OwnedBy(player) {
			return OutcomeNotYours, board.Action{}
		}
		s.origin = c
		s.state = SelectTarget
		return OutcomeSelected, board.Action{}
	case SelectTarget:
		act := board.Move(s.origin, c)
		if gs != nil {
			if cell, ok := gs.Board.Get(c); ok && !cell.IsEmpty() {
				act = board.Attack(s.origin, c)
			}
		}
		s.state = WaitingResponse
		return OutcomeAction, act
	}
	return OutcomeAwaiting, board.Action{}
}

// Reset returns to SelectUnit and drops the origin.
func (s *Selector) Reset() {
	s.state = SelectUnit
	s.origin = board.Coord{}
}

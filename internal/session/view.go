package session

import "github.com/park285/tactic-client/internal/board"

type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Errored
)

// ConnectionStatus is Disconnected, Connecting, Connected or Error(Reason).
type ConnectionStatus struct {
	State  ConnState
	Reason string
}

func (s ConnectionStatus) String() string {
	switch s.State {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting..."
	case Connected:
		return "Connected"
	case Errored:
		return "Error: " + s.Reason
	default:
		return "Unknown"
	}
}

// View is a read-only copy of the session for the rendering side. State is
// shared with the controller and must not be modified.
type View struct {
	Status   ConnectionStatus
	MatchID  string
	PlayerID string

	State     *board.GameState
	Selection SelectionState
	Selected  *board.Coord
	Cursor    board.Coord

	YourTurn   bool
	UnitCounts map[string]int
	Journal    []string
}

// Board renders the held snapshot with the selected cell marked, or nil
// before the first snapshot arrives.
func (v View) Board() []string {
	if v.State == nil {
		return nil
	}
	return v.State.Board.ASCII(v.Selected)
}

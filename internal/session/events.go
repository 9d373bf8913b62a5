package session

import "github.com/park285/tactic-client/internal/board"

// Event is the closed set of inputs the controller loop accepts. Input and
// push collaborators submit the exported kinds; network completions are
// private and only produced by the controller itself.
type Event interface{ isEvent() }

// Connect starts match discovery. There is no disconnect event.
type Connect struct{}

func (Connect) isEvent() {}

// CoordinateChosen is a pointer click on a board cell.
type CoordinateChosen struct{ Coord board.Coord }

func (CoordinateChosen) isEvent() {}

// ClearSelection forces SelectUnit from any state.
type ClearSelection struct{}

func (ClearSelection) isEvent() {}

type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// CursorMoved moves the keyboard cursor one cell, clamped to the board.
type CursorMoved struct{ Direction Direction }

func (CursorMoved) isEvent() {}

// CursorConfirmed chooses the cell under the cursor.
type CursorConfirmed struct{}

func (CursorConfirmed) isEvent() {}

// SubmitEndTurn dispatches EndTurn for the local player without going
// through the selection machine.
type SubmitEndTurn struct{}

func (SubmitEndTurn) isEvent() {}

// RefreshRequested re-reads the authoritative state of the active match.
type RefreshRequested struct{}

func (RefreshRequested) isEvent() {}

// PushPayload is one raw delivery from a push feed.
type PushPayload struct{ Raw []byte }

func (PushPayload) isEvent() {}

// RequestAIMove asks the decision maker to play for the turn holder.
type RequestAIMove struct{}

func (RequestAIMove) isEvent() {}

type connectDone struct {
	matchID string
	err     error
}

func (connectDone) isEvent() {}

type refreshDone struct {
	state *board.GameState
	err   error
}

func (refreshDone) isEvent() {}

type actionDone struct {
	action board.Action
	actor  string
	state  *board.GameState
	err    error
}

func (actionDone) isEvent() {}

type aiDone struct {
	actor  string
	action board.Action
	err    error
}

func (aiDone) isEvent() {}

type getView struct{ reply chan View }

func (getView) isEvent() {}

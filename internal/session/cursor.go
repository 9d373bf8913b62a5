package session

import "github.com/park285/tactic-client/internal/board"

// Cursor is keyboard bookkeeping only; moving it never emits an Action.
type Cursor struct{ pos board.Coord }

func (c *Cursor) Pos() board.Coord { return c.pos }

func (c *Cursor) Move(d Direction) {
	switch d {
	case Up:
		c.pos.Y = clamp(c.pos.Y - 1)
	case Down:
		c.pos.Y = clamp(c.pos.Y + 1)
	case Left:
		c.pos.X = clamp(c.pos.X - 1)
	case Right:
		c.pos.X = clamp(c.pos.X + 1)
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > board.Size-1 {
		return board.Size - 1
	}
	return v
}

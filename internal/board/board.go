package board

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Size is the board dimension; coordinates run 0..Size-1 on both axes.
const Size = 8

// Coord is a board position. Value type, compared with ==.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoord(x, y int) Coord { return Coord{X: x, Y: y} }

// Valid reports whether c lies on the board.
func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Unit is a piece owned by exactly one player.
type Unit struct {
	ID     string `json:"id,omitempty"`
	Owner  string `json:"owner"`
	Symbol string `json:"symbol"`
}

// Cell is either empty or occupied by a single unit.
type Cell struct {
	occupant *Unit
}

func Empty() Cell { return Cell{} }

func Occupied(u Unit) Cell { return Cell{occupant: &u} }

func (c Cell) IsEmpty() bool { return c.occupant == nil }

// Unit returns a copy of the occupant, if any.
func (c Cell) Unit() (Unit, bool) {
	if c.occupant == nil {
		return Unit{}, false
	}
	return *c.occupant, true
}

// OwnedBy reports whether the cell holds a unit owned by player.
func (c Cell) OwnedBy(player string) bool {
	return c.occupant != nil && c.occupant.Owner == player
}

// Board maps every coordinate of the Size x Size grid to exactly one cell.
// A Board is built once (decode or Builder) and is read-only afterwards.
type Board struct {
	cells [Size][Size]Cell
}

// Get returns the cell at c; ok is false for coordinates off the board.
func (b *Board) Get(c Coord) (Cell, bool) {
	if b == nil || !c.Valid() {
		return Cell{}, false
	}
	return b.cells[c.Y][c.X], true
}

// Placement is a unit together with the coordinate it occupies.
type Placement struct {
	Pos  Coord
	Unit Unit
}

// Units lists occupied cells in row-major order.
func (b *Board) Units() []Placement {
	if b == nil {
		return nil
	}
	var out []Placement
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if u, ok := b.cells[y][x].Unit(); ok {
				out = append(out, Placement{Pos: Coord{X: x, Y: y}, Unit: u})
			}
		}
	}
	return out
}

// UnitCounts returns the number of units per owner.
func (b *Board) UnitCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range b.Units() {
		counts[p.Unit.Owner]++
	}
	return counts
}

// Builder assembles a Board while enforcing bounds and exclusive occupancy.
type Builder struct {
	b   Board
	err error
}

func NewBuilder() *Builder { return &Builder{} }

// Place puts u at c. The first invalid placement is kept and reported by Build.
func (bl *Builder) Place(c Coord, u Unit) *Builder {
	if bl.err != nil {
		return bl
	}
	if !c.Valid() {
		bl.err = fmt.Errorf("unit %q out of bounds at %s", u.Symbol, c)
		return bl
	}
	if strings.TrimSpace(u.Owner) == "" {
		bl.err = fmt.Errorf("unit at %s has no owner", c)
		return bl
	}
	if !bl.b.cells[c.Y][c.X].IsEmpty() {
		bl.err = fmt.Errorf("cell %s occupied twice", c)
		return bl
	}
	if u.Symbol == "" {
		u.Symbol = "?"
	}
	bl.b.cells[c.Y][c.X] = Occupied(u)
	return bl
}

func (bl *Builder) Build() (Board, error) {
	if bl.err != nil {
		return Board{}, bl.err
	}
	return bl.b, nil
}

type wireUnit struct {
	Pos    Coord  `json:"pos"`
	ID     string `json:"id,omitempty"`
	Owner  string `json:"owner"`
	Symbol string `json:"symbol"`
}

type wireBoard struct {
	Units []wireUnit `json:"units"`
}

func (b Board) MarshalJSON() ([]byte, error) {
	wb := wireBoard{Units: []wireUnit{}}
	for _, p := range b.Units() {
		wb.Units = append(wb.Units, wireUnit{Pos: p.Pos, ID: p.Unit.ID, Owner: p.Unit.Owner, Symbol: p.Unit.Symbol})
	}
	return json.Marshal(wb)
}

func (b *Board) UnmarshalJSON(raw []byte) error {
	var wb wireBoard
	if err := json.Unmarshal(raw, &wb); err != nil {
		return err
	}
	// deterministic error reporting for duplicated positions
	sort.SliceStable(wb.Units, func(i, j int) bool {
		if wb.Units[i].Pos.Y != wb.Units[j].Pos.Y {
			return wb.Units[i].Pos.Y < wb.Units[j].Pos.Y
		}
		return wb.Units[i].Pos.X < wb.Units[j].Pos.X
	})
	bl := NewBuilder()
	for _, wu := range wb.Units {
		bl.Place(wu.Pos, Unit{ID: wu.ID, Owner: wu.Owner, Symbol: wu.Symbol})
	}
	built, err := bl.Build()
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	*b = built
	return nil
}

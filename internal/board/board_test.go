package board

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func sampleBoard(t *testing.T) Board {
	t.Helper()
	b, err := NewBuilder().
		Place(NewCoord(2, 3), Unit{Owner: "player1", Symbol: "X"}).
		Place(NewCoord(5, 5), Unit{Owner: "ai", Symbol: "O"}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func TestBoardGetIsTotalOverGrid(t *testing.T) {
	b := sampleBoard(t)
	occupied := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			cell, ok := b.Get(NewCoord(x, y))
			if !ok {
				t.Fatalf("cell (%d,%d) not addressable", x, y)
			}
			if !cell.IsEmpty() {
				occupied++
			}
		}
	}
	if occupied != 2 {
		t.Fatalf("expected 2 occupied cells, got %d", occupied)
	}
	if _, ok := b.Get(NewCoord(8, 0)); ok {
		t.Fatalf("expected (8,0) to be off the board")
	}
	if _, ok := b.Get(NewCoord(0, -1)); ok {
		t.Fatalf("expected (0,-1) to be off the board")
	}
}

func TestBuilderRejectsDoubleOccupancyAndOutOfBounds(t *testing.T) {
	_, err := NewBuilder().
		Place(NewCoord(1, 1), Unit{Owner: "a", Symbol: "X"}).
		Place(NewCoord(1, 1), Unit{Owner: "b", Symbol: "O"}).
		Build()
	if err == nil {
		t.Fatalf("expected error for double occupancy")
	}
	if _, err := NewBuilder().Place(NewCoord(9, 1), Unit{Owner: "a"}).Build(); err == nil {
		t.Fatalf("expected error for out of bounds placement")
	}
	if _, err := NewBuilder().Place(NewCoord(1, 1), Unit{Symbol: "X"}).Build(); err == nil {
		t.Fatalf("expected error for ownerless unit")
	}
}

func TestCellOwnership(t *testing.T) {
	b := sampleBoard(t)
	mine, _ := b.Get(NewCoord(2, 3))
	theirs, _ := b.Get(NewCoord(5, 5))
	empty, _ := b.Get(NewCoord(0, 0))
	if !mine.OwnedBy("player1") || mine.OwnedBy("ai") {
		t.Fatalf("unexpected ownership for (2,3)")
	}
	if !theirs.OwnedBy("ai") {
		t.Fatalf("unexpected ownership for (5,5)")
	}
	if empty.OwnedBy("player1") || !empty.IsEmpty() {
		t.Fatalf("empty cell reported as owned")
	}
	if got := b.UnitCounts(); got["player1"] != 1 || got["ai"] != 1 {
		t.Fatalf("unexpected unit counts: %v", got)
	}
}

func TestDecodeState(t *testing.T) {
	raw := `{"board":{"units":[{"pos":{"x":2,"y":3},"owner":"player1","symbol":"X"},{"pos":{"x":5,"y":5},"owner":"ai","symbol":"O"}]},"turn":"player1","turn_count":4,"phase":"Playing"}`
	st, err := DecodeState([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeState: %v", err)
	}
	if st.Turn != "player1" || st.TurnCount != 4 || st.Phase != PhasePlaying {
		t.Fatalf("unexpected header fields: %+v", st)
	}
	cell, _ := st.Board.Get(NewCoord(5, 5))
	if u, ok := cell.Unit(); !ok || u.Owner != "ai" || u.Symbol != "O" {
		t.Fatalf("unexpected unit at (5,5): %+v", u)
	}

	// round trip keeps the board
	out, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := DecodeState(out)
	if err != nil {
		t.Fatalf("DecodeState(roundtrip): %v", err)
	}
	if len(again.Board.Units()) != 2 {
		t.Fatalf("expected 2 units after round trip, got %d", len(again.Board.Units()))
	}
}

func TestDecodeStateRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":      ``,
		"null":       `null`,
		"no turn":    `{"board":{"units":[]},"turn":"","turn_count":0,"phase":"setup"}`,
		"bad phase":  `{"board":{"units":[]},"turn":"p","turn_count":0,"phase":"lunch"}`,
		"off board":  `{"board":{"units":[{"pos":{"x":8,"y":0},"owner":"p","symbol":"X"}]},"turn":"p","turn_count":0,"phase":"setup"}`,
		"duplicated": `{"board":{"units":[{"pos":{"x":1,"y":1},"owner":"p","symbol":"X"},{"pos":{"x":1,"y":1},"owner":"q","symbol":"O"}]},"turn":"p","turn_count":0,"phase":"setup"}`,
		"negative":   `{"board":{"units":[]},"turn":"p","turn_count":-1,"phase":"setup"}`,
		"not json":   `{"board":`,
	}
	for name, raw := range cases {
		if _, err := DecodeState([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("%s: expected ErrInvalidState, got %v", name, err)
		}
	}
}

func TestActionJSON(t *testing.T) {
	mv, err := json.Marshal(Move(NewCoord(2, 3), NewCoord(2, 2)))
	if err != nil {
		t.Fatalf("Marshal move: %v", err)
	}
	if string(mv) != `{"Move":{"from":{"x":2,"y":3},"to":{"x":2,"y":2}}}` {
		t.Fatalf("unexpected move encoding: %s", mv)
	}
	end, _ := json.Marshal(EndTurn())
	if string(end) != `"EndTurn"` {
		t.Fatalf("unexpected end turn encoding: %s", end)
	}

	var a Action
	if err := json.Unmarshal([]byte(`{"Attack":{"from":{"x":1,"y":1},"to":{"x":1,"y":2}}}`), &a); err != nil {
		t.Fatalf("Unmarshal attack: %v", err)
	}
	if a != Attack(NewCoord(1, 1), NewCoord(1, 2)) {
		t.Fatalf("unexpected attack: %+v", a)
	}
	if err := json.Unmarshal([]byte(`"EndTurn"`), &a); err != nil || a.Kind != KindEndTurn {
		t.Fatalf("Unmarshal end turn: %v %+v", err, a)
	}
	for _, bad := range []string{`"Dance"`, `{"Fly":{}}`, `{}`, `{"Move":{"from":{"x":9,"y":0},"to":{"x":0,"y":0}}}`} {
		if err := json.Unmarshal([]byte(bad), &a); err == nil {
			t.Fatalf("expected error for %s", bad)
		}
	}
}

func TestASCII(t *testing.T) {
	b := sampleBoard(t)
	sel := NewCoord(2, 3)
	lines := b.ASCII(&sel)
	if len(lines) != Size+1 {
		t.Fatalf("expected %d lines, got %d", Size+1, len(lines))
	}
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "0 1 2 3 4 5 6 7") {
		t.Fatalf("missing header:\n%s", joined)
	}
	if !strings.Contains(lines[4], "[X]") {
		t.Fatalf("expected selected X on row 3, got %q", lines[4])
	}
	if !strings.Contains(lines[6], "O") {
		t.Fatalf("expected O on row 5, got %q", lines[6])
	}
}

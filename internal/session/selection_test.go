package session

import (
	"strings"
	"testing"
	"time"

	"github.com/park285/tactic-client/internal/board"
)

func mkState(t *testing.T, turn string, count int, units map[board.Coord]board.Unit) *board.GameState {
	t.Helper()
	b := board.NewBuilder()
	for c, u := range units {
		b.Place(c, u)
	}
	bd, err := b.Build()
	if err != nil {
		t.Fatalf("build board: %v", err)
	}
	return &board.GameState{Board: bd, Turn: turn, TurnCount: count, Phase: board.PhasePlaying}
}

func sampleState(t *testing.T, count int) *board.GameState {
	return mkState(t, "player1", count, map[board.Coord]board.Unit{
		board.NewCoord(2, 3): {Owner: "player1", Symbol: "K"},
		board.NewCoord(0, 0): {Owner: "player1", Symbol: "A"},
		board.NewCoord(5, 5): {Owner: "ai", Symbol: "O"},
		board.NewCoord(2, 4): {Owner: "ai", Symbol: "G"},
	})
}

func TestSelectUnitOnlyForOwnUnits(t *testing.T) {
	gs := sampleState(t, 1)
	for x := 0; x < board.Size; x++ {
		for y := 0; y < board.Size; y++ {
			c := board.NewCoord(x, y)
			var s Selector
			out, _ := s.Choose(c, gs, "player1")
			cell, _ := gs.Board.Get(c)
			own := cell.OwnedBy("player1")
			if own != (s.State() == SelectTarget) {
				t.Fatalf("%s: own=%v state=%s", c, own, s.State())
			}
			origin, pending := s.Pending()
			if own {
				if out != OutcomeSelected || !pending || origin != c {
					t.Fatalf("%s: outcome=%v pending=%v origin=%s", c, out, pending, origin)
				}
			} else if pending {
				t.Fatalf("%s: pending set while SelectUnit", c)
			}
		}
	}
}

func TestSelectUnitRejections(t *testing.T) {
	gs := sampleState(t, 1)
	cases := []struct {
		name  string
		coord board.Coord
		gs    *board.GameState
		want  Outcome
	}{
		{"enemy", board.NewCoord(5, 5), gs, OutcomeNotYours},
		{"empty", board.NewCoord(7, 7), gs, OutcomeNoUnit},
		{"no state", board.NewCoord(2, 3), nil, OutcomeNoState},
		{"off board", board.NewCoord(8, 0), gs, OutcomeOutOfBounds},
		{"negative", board.NewCoord(0, -1), gs, OutcomeOutOfBounds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s Selector
			if out, _ := s.Choose(tc.coord, tc.gs, "player1"); out != tc.want {
				t.Fatalf("outcome=%v want %v", out, tc.want)
			}
			if s.State() != SelectUnit {
				t.Fatalf("state=%s", s.State())
			}
		})
	}
}

func TestSelectTargetBuildsAttackOrMove(t *testing.T) {
	gs := sampleState(t, 1)
	origin := board.NewCoord(2, 3)
	for x := 0; x < board.Size; x++ {
		for y := 0; y < board.Size; y++ {
			target := board.NewCoord(x, y)
			var s Selector
			s.Choose(origin, gs, "player1")
			out, act := s.Choose(target, gs, "player1")
			if out != OutcomeAction || s.State() != WaitingResponse {
				t.Fatalf("%s: outcome=%v state=%s", target, out, s.State())
			}
			cell, _ := gs.Board.Get(target)
			want := board.Move(origin, target)
			if !cell.IsEmpty() {
				want = board.Attack(origin, target)
			}
			if act != want {
				t.Fatalf("%s: got %v want %v", target, act, want)
			}
			if p, ok := s.Pending(); !ok || p != origin {
				t.Fatalf("%s: origin lost while waiting", target)
			}
		}
	}
}

func TestWaitingResponseDiscardsInput(t *testing.T) {
	gs := sampleState(t, 1)
	var s Selector
	s.Choose(board.NewCoord(2, 3), gs, "player1")
	s.Choose(board.NewCoord(2, 2), gs, "player1")
	for _, c := range []board.Coord{board.NewCoord(0, 0), board.NewCoord(9, 9)} {
		if out, _ := s.Choose(c, gs, "player1"); out != OutcomeAwaiting {
			t.Fatalf("outcome=%v", out)
		}
	}
	if s.State() != WaitingResponse {
		t.Fatalf("state=%s", s.State())
	}
	s.Reset()
	if _, ok := s.Pending(); ok || s.State() != SelectUnit {
		t.Fatalf("reset left state=%s", s.State())
	}
}

func TestCursorClamped(t *testing.T) {
	var c Cursor
	c.Move(Up)
	c.Move(Left)
	if c.Pos() != board.NewCoord(0, 0) {
		t.Fatalf("pos=%s", c.Pos())
	}
	for i := 0; i < 20; i++ {
		c.Move(Down)
		c.Move(Right)
	}
	if c.Pos() != board.NewCoord(7, 7) {
		t.Fatalf("pos=%s", c.Pos())
	}
	c.Move(Up)
	if c.Pos() != board.NewCoord(7, 6) {
		t.Fatalf("pos=%s", c.Pos())
	}
}

func TestJournalBounded(t *testing.T) {
	clock := time.Date(2026, 3, 4, 9, 5, 7, 0, time.UTC)
	j := newJournal(func() time.Time { return clock })
	for i := 0; i < JournalLimit+25; i++ {
		j.Add("entry " + strings.Repeat("x", i%3))
	}
	if j.Len() != JournalLimit {
		t.Fatalf("len=%d", j.Len())
	}
	j.Add("last")
	entries := j.Entries()
	if entries[len(entries)-1] != "[09:05:07] last" {
		t.Fatalf("last entry %q", entries[len(entries)-1])
	}
	entries[0] = "mutated"
	if j.Entries()[0] == "mutated" {
		t.Fatalf("Entries must return a copy")
	}
}

func TestDecodePush(t *testing.T) {
	valid := `{"type":"state_update","match_id":"m-1","state":{"board":{"units":[]},"turn":"ai","turn_count":2,"phase":"Playing"}}`
	msg, ok := DecodePush([]byte(valid)).(StateUpdate)
	if !ok {
		t.Fatalf("expected StateUpdate")
	}
	if msg.MatchID != "m-1" || msg.State.Turn != "ai" || msg.State.TurnCount != 2 {
		t.Fatalf("unexpected update %+v", msg)
	}

	for _, raw := range []string{
		``,
		`not json`,
		`[]`,
		`{"type":"chat","state":{}}`,
		`{"type":"state_update"}`,
		`{"type":"state_update","state":{"board":{"units":[]},"turn":"","turn_count":1,"phase":"playing"}}`,
		`{"type":"state_update","state":{"board":{"units":[{"pos":{"x":9,"y":0},"owner":"a"}]},"turn":"a","turn_count":1,"phase":"playing"}}`,
	} {
		if _, ok := DecodePush([]byte(raw)).(Unrecognized); !ok {
			t.Fatalf("expected Unrecognized for %q", raw)
		}
	}
}

func TestParseStalePolicy(t *testing.T) {
	if p, err := ParseStalePolicy(""); err != nil || p != LastWriteWins {
		t.Fatalf("default: %v %v", p, err)
	}
	if p, err := ParseStalePolicy("Reject_Stale"); err != nil || p != RejectStale {
		t.Fatalf("reject: %v %v", p, err)
	}
	if _, err := ParseStalePolicy("newest"); err == nil {
		t.Fatalf("expected error")
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/tactic-client/internal/board"
	"github.com/park285/tactic-client/internal/session"
)

const helpText = `commands:
  w a s d          move cursor
  enter            choose cell under cursor
  esc | clear      clear selection
  click X Y | X Y  choose cell (X,Y)
  connect          join or create a match
  end              end turn
  ai               let the AI play the current turn
  refresh          re-read the match state
  help             this text
  quit             exit`

type command struct {
	event session.Event
	quit  bool
	help  bool
}

// parseCommand maps one input line to a session event.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return command{event: session.CursorConfirmed{}}, nil
	}
	switch fields[0] {
	case "w":
		return command{event: session.CursorMoved{Direction: session.Up}}, nil
	case "s":
		return command{event: session.CursorMoved{Direction: session.Down}}, nil
	case "a":
		return command{event: session.CursorMoved{Direction: session.Left}}, nil
	case "d":
		return command{event: session.CursorMoved{Direction: session.Right}}, nil
	case "enter":
		return command{event: session.CursorConfirmed{}}, nil
	case "esc", "clear":
		return command{event: session.ClearSelection{}}, nil
	case "connect":
		return command{event: session.Connect{}}, nil
	case "end":
		return command{event: session.SubmitEndTurn{}}, nil
	case "ai":
		return command{event: session.RequestAIMove{}}, nil
	case "refresh":
		return command{event: session.RefreshRequested{}}, nil
	case "help", "?":
		return command{help: true}, nil
	case "quit", "q", "exit":
		return command{quit: true}, nil
	case "click":
		return parseCoord(fields[1:])
	default:
		return parseCoord(fields)
	}
}

func parseCoord(args []string) (command, error) {
	if len(args) != 2 {
		return command{}, fmt.Errorf("unknown command (type help)")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return command{}, fmt.Errorf("bad x %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return command{}, fmt.Errorf("bad y %q", args[1])
	}
	return command{event: session.CoordinateChosen{Coord: board.NewCoord(x, y)}}, nil
}

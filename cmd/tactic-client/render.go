package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/park285/tactic-client/internal/session"
)

const journalTail = 12

func render(v session.View) {
	pterm.Print("\033[H\033[2J")
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{boardPanel(v), statusPanel(v)},
		{journalPanel(v)},
	}).Render()
	pterm.Print("> ")
}

func boardPanel(v session.View) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2).WithTopPadding(1).WithBottomPadding(1)
	lines := v.Board()
	if lines == nil {
		lines = []string{pterm.Gray("no game state")}
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|BOARD|")).WithTitleTopCenter().Sprint(strings.Join(lines, "\n"))}
}

func statusPanel(v session.View) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	var b strings.Builder
	fmt.Fprintf(&b, "Connection: %s\n", connectionText(v.Status))
	if v.MatchID != "" {
		fmt.Fprintf(&b, "Match: %s\n", v.MatchID)
	}
	fmt.Fprintf(&b, "Player: %s\n", pterm.LightCyan(v.PlayerID))
	if st := v.State; st != nil {
		turn := st.Turn
		if v.YourTurn {
			turn = pterm.LightGreen(turn + " (your turn)")
		}
		fmt.Fprintf(&b, "Turn: %s  #%d\n", turn, st.TurnCount)
		fmt.Fprintf(&b, "Phase: %s\n", st.Phase)
		owners := make([]string, 0, len(v.UnitCounts))
		for o := range v.UnitCounts {
			owners = append(owners, o)
		}
		sort.Strings(owners)
		for _, o := range owners {
			fmt.Fprintf(&b, "  %s: %d units\n", o, v.UnitCounts[o])
		}
	}
	fmt.Fprintf(&b, "Mode: %s", v.Selection)
	if v.Selected != nil {
		fmt.Fprintf(&b, " from %s", v.Selected)
	}
	fmt.Fprintf(&b, "\nCursor: %s", v.Cursor)
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|STATUS|")).WithTitleTopLeft().Sprint(b.String())}
}

func journalPanel(v session.View) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2)
	entries := v.Journal
	if len(entries) > journalTail {
		entries = entries[len(entries)-journalTail:]
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|LOG|")).WithTitleTopLeft().Sprint(strings.Join(entries, "\n"))}
}

func connectionText(s session.ConnectionStatus) string {
	switch s.State {
	case session.Connected:
		return pterm.LightGreen(s.String())
	case session.Connecting:
		return pterm.Yellow(s.String())
	case session.Errored:
		return pterm.LightRed(s.String())
	default:
		return pterm.Gray(s.String())
	}
}

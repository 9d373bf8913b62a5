package board

import (
	"strconv"
	"strings"
)

// ASCII renders the board as text lines: a column header followed by one
// line per row. Empty cells are '.', the selected cell is wrapped in [].
func (b *Board) ASCII(selected *Coord) []string {
	lines := make([]string, 0, Size+1)

	var hdr strings.Builder
	hdr.WriteString("  ")
	for x := 0; x < Size; x++ {
		if x > 0 {
			hdr.WriteByte(' ')
		}
		hdr.WriteString(strconv.Itoa(x))
	}
	lines = append(lines, hdr.String())

	for y := 0; y < Size; y++ {
		var row strings.Builder
		row.WriteString(strconv.Itoa(y))
		row.WriteByte(' ')
		for x := 0; x < Size; x++ {
			c := Coord{X: x, Y: y}
			sym := "."
			if cell, ok := b.Get(c); ok {
				if u, has := cell.Unit(); has {
					sym = u.Symbol
				}
			}
			if x > 0 {
				row.WriteByte(' ')
			}
			if selected != nil && *selected == c {
				row.WriteString("[" + sym + "]")
				continue
			}
			row.WriteString(sym)
		}
		lines = append(lines, row.String())
	}
	return lines
}

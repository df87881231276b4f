package board

// A Piece is a read-only view of an occupied square. It is recomputed from
// the board every time it is asked for and never stored apart from it.
type Piece struct {
	Loc   Location
	Color Color
	King  bool
}

// MovesToLocation returns the number of moves the piece needs to reach loc
// on an empty board. A non-king cannot move sideways faster than it moves
// forward, so ok is false when the column delta is larger than the row
// delta. Direction is not checked.
func (p Piece) MovesToLocation(loc Location) (n int, ok bool) {
	dr := abs(p.Loc.Row - loc.Row)
	dc := abs(p.Loc.Col - loc.Col)
	if p.King {
		return max(dr, dc), true
	}
	if dc > dr {
		return 0, false
	}
	return dr, true
}

// MovesTo is MovesToLocation for another piece's location.
func (p Piece) MovesTo(o Piece) (int, bool) {
	return p.MovesToLocation(o.Loc)
}

// ShortestDistanceTo returns the smallest MovesToLocation over locs.
func (p Piece) ShortestDistanceTo(locs []Location) (int, bool) {
	shortest, found := 0, false
	for _, loc := range locs {
		if d, ok := p.MovesToLocation(loc); ok {
			if !found || d < shortest {
				shortest, found = d, true
			}
		}
	}
	return shortest, found
}

func (p Piece) String() string {
	s := p.Color.String()
	if p.King {
		s += " king"
	}
	return s + " at " + p.Loc.String()
}

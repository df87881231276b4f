package board

// Templates are the geometric move targets from one square: the diagonal
// neighbors (simple moves) and the squares two steps away (jumps). They
// depend only on the location, never on what is on the board.
type Templates struct {
	Simple []Location
	Jump   []Location
}

// Diagonal directions, in template order.
var Directions = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

var templates [NumSquares]*Templates

func init() {
	for i := range templates {
		loc := locationFromIndex(i)
		if !IsDark(loc.Row, loc.Col) {
			continue
		}
		t := &Templates{}
		for _, d := range Directions {
			if n, ok := loc.Offset(d[0], d[1]); ok {
				t.Simple = append(t.Simple, n)
			}
		}
		for _, d := range Directions {
			if n, ok := loc.Offset(2*d[0], 2*d[1]); ok {
				t.Jump = append(t.Jump, n)
			}
		}
		templates[i] = t
	}
}

// TemplatesAt returns the move templates for loc, or nil for a light
// square. The returned value is shared and must not be modified.
func (b *Board) TemplatesAt(loc Location) *Templates {
	return templates[loc.index()]
}

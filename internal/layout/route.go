package layout

import "math"

// Side is one of the four anchor positions of a box.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideRight:
		return "right"
	case SideBottom:
		return "bottom"
	default:
		return "left"
	}
}

// Anchor returns the midpoint of a side. For diamonds and ellipses the side
// midpoints of the bounding box lie on the outline too.
func (b Box) Anchor(s Side) Point {
	c := b.Center()
	switch s {
	case SideTop:
		return Point{X: c.X, Y: b.Y}
	case SideRight:
		return Point{X: b.X + b.Width, Y: c.Y}
	case SideBottom:
		return Point{X: c.X, Y: b.Y + b.Height}
	default:
		return Point{X: b.X, Y: c.Y}
	}
}

// outside moves an anchor away from its box by gap.
func outside(p Point, s Side, gap float64) Point {
	switch s {
	case SideTop:
		p.Y -= gap
	case SideRight:
		p.X += gap
	case SideBottom:
		p.Y += gap
	default:
		p.X -= gap
	}
	return p
}

// FacingSide picks the side of b that faces target by comparing dx and dy
// normalised by the box's half dimensions. Ties go vertical.
func FacingSide(b Box, target Point) Side {
	c := b.Center()
	dx := target.X - c.X
	dy := target.Y - c.Y

	var ndx, ndy float64
	if b.Width > 0 {
		ndx = dx / (b.Width / 2)
	}
	if b.Height > 0 {
		ndy = dy / (b.Height / 2)
	}

	if math.Abs(ndx) > math.Abs(ndy) {
		if dx > 0 {
			return SideRight
		}
		return SideLeft
	}
	if dy > 0 {
		return SideBottom
	}
	return SideTop
}

// straight connects two boxes through the given sides.
func straight(from, to Box, fs, ts Side, gap float64) []Point {
	return []Point{
		outside(from.Anchor(fs), fs, gap),
		outside(to.Anchor(ts), ts, gap),
	}
}

// nearest connects two boxes through the sides that face each other.
func nearest(from, to Box, gap float64) ([]Point, Side, Side) {
	fs := FacingSide(from, to.Center())
	ts := FacingSide(to, from.Center())
	return straight(from, to, fs, ts, gap), fs, ts
}

// lanes hands out staggered offsets so parallel detours do not coincide.
type lanes struct {
	used  map[string]int
	step  float64
	limit int
}

func newLanes(step float64, limit int) *lanes {
	return &lanes{used: make(map[string]int), step: step, limit: limit}
}

// next returns the offset for the next detour through the named lane.
func (l *lanes) next(name string) float64 {
	k := l.used[name]
	l.used[name] = k + 1
	return float64(k%l.limit) * l.step
}

package layout

import (
	"math"

	"github.com/jiatastic/exdraw/internal/graph"
)

// layoutMindmap puts the root at the centre and its children either on a
// circle (radial) or in two columns beside the root (fan). The layout is
// built around (0, 0) and shifted so its top-left corner sits at the
// origin.
func layoutMindmap(g *graph.Graph, r *Result, opts Options) {
	n := len(r.Boxes)
	r.place(0, Point{})
	if n > 1 {
		if opts.Mindmap == MindmapFan {
			fanChildren(r, opts)
		} else {
			radialChildren(r, opts)
		}
	}

	lo, _ := r.Bounds()
	dx, dy := opts.OriginX-lo.X, opts.OriginY-lo.Y
	for i := range r.Boxes {
		r.Boxes[i].X += dx
		r.Boxes[i].Y += dy
	}

	gap := opts.BindingGap
	for _, e := range g.Edges() {
		from, to := r.Boxes[r.index[e.From]], r.Boxes[r.index[e.To]]
		pts, fs, ts := nearest(from, to, gap)
		if opts.Mindmap == MindmapFan {
			pts, fs, ts = branch(from, to, gap, opts.GapX)
		}
		r.Routes = append(r.Routes, Route{
			EdgeID: e.ID, From: e.From, To: e.To,
			Points: pts, StartSide: fs, EndSide: ts,
		})
	}
}

// radialChildren spaces children evenly on a circle, clockwise from the
// right. The radius is large enough that the circumscribed circles of
// neighbouring children, and of each child and the root, stay apart.
func radialChildren(r *Result, opts Options) {
	children := r.Boxes[1:]
	count := float64(len(children))

	rootDiag := diagonal(r.Boxes[0])
	childDiag := 0.0
	for _, b := range children {
		childDiag = math.Max(childDiag, diagonal(b))
	}

	radius := math.Max(opts.MindmapRadius, (rootDiag+childDiag)/2+opts.GapX)
	if len(children) > 1 {
		chord := (childDiag + opts.GapY) / (2 * math.Sin(math.Pi/count))
		radius = math.Max(radius, chord)
	}

	for k := range children {
		angle := 2 * math.Pi * float64(k) / count
		r.place(k+1, Point{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)})
		r.Boxes[k+1].Band = 1
		r.Boxes[k+1].Order = k
	}
}

// fanChildren alternates children between a right and a left column, each
// stacked with a uniform pitch and centred on the root.
func fanChildren(r *Result, opts Options) {
	root := r.Boxes[0]
	var maxW, maxH float64
	for _, b := range r.Boxes[1:] {
		maxW = math.Max(maxW, b.Width)
		maxH = math.Max(maxH, b.Height)
	}

	offset := root.Width/2 + 2*opts.GapX + maxW/2
	pitch := maxH + opts.GapY/2

	var right, left []int
	for i := 1; i < len(r.Boxes); i++ {
		if (i-1)%2 == 0 {
			right = append(right, i)
		} else {
			left = append(left, i)
		}
	}

	column := func(idx []int, x float64) {
		span := float64(len(idx)-1) * pitch
		for k, i := range idx {
			r.place(i, Point{X: x, Y: -span/2 + float64(k)*pitch})
			r.Boxes[i].Band = 1
			r.Boxes[i].Order = i - 1
		}
	}
	column(right, offset)
	column(left, -offset)
}

// branch connects the root to a fan child through a vertical spine between
// the root and the child's column.
func branch(from, to Box, gap, spacing float64) ([]Point, Side, Side) {
	fs, ts := SideRight, SideLeft
	spine := from.X + from.Width + spacing
	if to.Center().X < from.Center().X {
		fs, ts = SideLeft, SideRight
		spine = from.X - spacing
	}
	start := outside(from.Anchor(fs), fs, gap)
	end := outside(to.Anchor(ts), ts, gap)
	pts := []Point{start, {X: spine, Y: start.Y}, {X: spine, Y: end.Y}, end}
	return simplify(pts), fs, ts
}

func diagonal(b Box) float64 {
	return math.Hypot(b.Width, b.Height)
}

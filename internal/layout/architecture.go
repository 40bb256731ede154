package layout

import (
	"sort"
	"strconv"

	"github.com/jiatastic/exdraw/internal/graph"
)

// layoutArchitecture stacks one horizontal band per layer, top to bottom in
// layer order. Within a band nodes keep first-appearance order and every
// band is centred on the widest one.
//
// Edges are orthogonal: horizontal runs only use the empty gaps between
// bands, and edges that jump over a band go around the outside through a
// gutter, so no segment crosses a node.
func layoutArchitecture(g *graph.Graph, r *Result, opts Options) {
	var layers []graph.Layer
	members := make(map[graph.Layer][]int)
	for i, n := range g.Nodes() {
		if _, ok := members[n.Layer]; !ok {
			layers = append(layers, n.Layer)
		}
		members[n.Layer] = append(members[n.Layer], i)
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i] < layers[j] })

	maxW, maxH := r.maxSize()
	pitch := maxW + opts.GapX

	widest := 0
	for _, l := range layers {
		if c := len(members[l]); c > widest {
			widest = c
		}
	}
	widestSpan := float64(widest)*pitch - opts.GapX

	a := archGeometry{opts: opts, maxH: maxH}
	for b, l := range layers {
		idx := members[l]
		span := float64(len(idx))*pitch - opts.GapX
		left := opts.OriginX + (widestSpan-span)/2

		ids := make([]string, 0, len(idx))
		for k, i := range idx {
			r.place(i, Point{X: left + maxW/2 + float64(k)*pitch, Y: a.top(b) + maxH/2})
			r.Boxes[i].Band = b
			r.Boxes[i].Order = k
			ids = append(ids, r.Boxes[i].NodeID)
		}
		r.Bands = append(r.Bands, ids)
	}

	leftGutter := opts.OriginX - opts.Detour
	rightGutter := opts.OriginX + widestSpan + opts.Detour
	ln := newLanes(opts.LayerGap/8, 3)
	gap := opts.BindingGap

	for _, e := range g.Edges() {
		from, to := r.Boxes[r.index[e.From]], r.Boxes[r.index[e.To]]
		fb, tb := from.Band, to.Band

		var pts []Point
		var fs, ts Side
		switch {
		case fb == tb && (to.Order == from.Order+1 || to.Order == from.Order-1):
			fs, ts = SideRight, SideLeft
			if to.Order < from.Order {
				fs, ts = SideLeft, SideRight
			}
			pts = straight(from, to, fs, ts, gap)

		case fb == tb:
			fs, ts = SideTop, SideTop
			y := a.lane(ln, fb)
			pts = elbow(from, to, fs, ts, gap, y)

		case tb == fb+1:
			fs, ts = SideBottom, SideTop
			y := a.lane(ln, tb)
			pts = elbow(from, to, fs, ts, gap, y)

		case tb == fb-1:
			fs, ts = SideTop, SideBottom
			y := a.lane(ln, fb)
			pts = elbow(from, to, fs, ts, gap, y)

		case tb > fb:
			fs, ts = SideBottom, SideTop
			x := leftGutter - ln.next("left")
			pts = around(from, to, fs, ts, gap, a.lane(ln, fb+1), x, a.lane(ln, tb))

		default:
			fs, ts = SideTop, SideBottom
			x := rightGutter + ln.next("right")
			pts = around(from, to, fs, ts, gap, a.lane(ln, fb), x, a.lane(ln, tb+1))
		}

		r.Routes = append(r.Routes, Route{
			EdgeID: e.ID, From: e.From, To: e.To,
			Points: simplify(pts), StartSide: fs, EndSide: ts,
		})
	}
}

type archGeometry struct {
	opts Options
	maxH float64
}

// top is the y of band b's upper edge.
func (a archGeometry) top(b int) float64 {
	return a.opts.OriginY + float64(b)*(a.maxH+a.opts.LayerGap)
}

// lane returns a staggered y inside the gap directly above band b.
func (a archGeometry) lane(ln *lanes, b int) float64 {
	mid := a.top(b) - a.opts.LayerGap/2
	return mid - ln.step + ln.next(laneName(b))
}

func laneName(b int) string {
	return "gap:" + strconv.Itoa(b)
}

// elbow runs vertically out of the source, horizontally along y and
// vertically into the target.
func elbow(from, to Box, fs, ts Side, gap, y float64) []Point {
	start := outside(from.Anchor(fs), fs, gap)
	end := outside(to.Anchor(ts), ts, gap)
	return []Point{start, {X: start.X, Y: y}, {X: end.X, Y: y}, end}
}

// around leaves through the gap at y1, travels the gutter at x and enters
// the target through the gap at y2.
func around(from, to Box, fs, ts Side, gap, y1, x, y2 float64) []Point {
	start := outside(from.Anchor(fs), fs, gap)
	end := outside(to.Anchor(ts), ts, gap)
	return []Point{
		start,
		{X: start.X, Y: y1},
		{X: x, Y: y1},
		{X: x, Y: y2},
		{X: end.X, Y: y2},
		end,
	}
}

// simplify drops repeated points and middle points of straight runs.
func simplify(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 {
			a, b := out[n-2], out[n-1]
			if (a.X == b.X && b.X == p.X) || (a.Y == b.Y && b.Y == p.Y) {
				out[n-1] = p
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

package layout

import "github.com/jiatastic/exdraw/internal/graph"

// layoutFlowchart places nodes on one axis in description order with a
// uniform pitch. Edges to the next step are straight; edges that skip
// steps detour over the chain, and edges pointing back detour under it.
func layoutFlowchart(g *graph.Graph, r *Result, opts Options) {
	maxW, maxH := r.maxSize()
	down := opts.Direction == DirectionDown

	for i := range r.Boxes {
		c := Point{
			X: opts.OriginX + maxW/2 + float64(i)*(maxW+opts.GapX),
			Y: opts.OriginY + maxH/2,
		}
		if down {
			c = Point{
				X: opts.OriginX + maxW/2,
				Y: opts.OriginY + maxH/2 + float64(i)*(maxH+opts.GapY),
			}
		}
		r.place(i, c)
		r.Boxes[i].Order = i
	}

	// Outer edges of the chain's track.
	top, bottom := opts.OriginY, opts.OriginY+maxH
	left, right := opts.OriginX, opts.OriginX+maxW

	gap := opts.BindingGap
	ln := newLanes(opts.Detour/2, 4)

	for _, e := range g.Edges() {
		fi, ti := r.index[e.From], r.index[e.To]
		from, to := r.Boxes[fi], r.Boxes[ti]

		var pts []Point
		var fs, ts Side
		switch {
		case ti == fi+1 && !down:
			fs, ts = SideRight, SideLeft
			pts = straight(from, to, fs, ts, gap)
		case ti == fi+1 && down:
			fs, ts = SideBottom, SideTop
			pts = straight(from, to, fs, ts, gap)
		case ti > fi && !down:
			fs, ts = SideTop, SideTop
			y := top - opts.Detour - ln.next("above")
			pts = detour(from, to, fs, ts, gap, Point{Y: y}, false)
		case ti > fi && down:
			fs, ts = SideRight, SideRight
			x := right + opts.Detour + ln.next("right")
			pts = detour(from, to, fs, ts, gap, Point{X: x}, true)
		case !down:
			fs, ts = SideBottom, SideBottom
			y := bottom + opts.Detour + ln.next("below")
			pts = detour(from, to, fs, ts, gap, Point{Y: y}, false)
		default:
			fs, ts = SideLeft, SideLeft
			x := left - opts.Detour - ln.next("left")
			pts = detour(from, to, fs, ts, gap, Point{X: x}, true)
		}

		r.Routes = append(r.Routes, Route{
			EdgeID: e.ID, From: e.From, To: e.To,
			Points: pts, StartSide: fs, EndSide: ts,
		})
	}
}

// detour leaves from one side, runs along a lane parallel to the chain and
// enters the target from the same kind of side. A vertical lane uses
// lane.X, a horizontal lane lane.Y.
func detour(from, to Box, fs, ts Side, gap float64, lane Point, vertical bool) []Point {
	start := outside(from.Anchor(fs), fs, gap)
	end := outside(to.Anchor(ts), ts, gap)
	if vertical {
		return []Point{start, {X: lane.X, Y: start.Y}, {X: lane.X, Y: end.Y}, end}
	}
	return []Point{start, {X: start.X, Y: lane.Y}, {X: end.X, Y: lane.Y}, end}
}

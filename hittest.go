package loom

// HitKind identifies what a world-space point resolved to.
type HitKind uint8

const (
	HitBackground     HitKind = iota // nothing interactive under the point
	HitResizeHandle                  // a resize affordance of the sole selected item
	HitPort                          // a visible port circle
	HitConnectionGrip                // a connection endpoint (reconnect affordance)
	HitConnectionBody                // the connection wire itself
	HitNodeHeader                    // a node's title bar (drag region)
	HitNodeBody                      // a node's body below the header
	HitNote                          // a sticky note
)

// HitResult is the outcome of a hit test: a tagged target plus the region
// detail the interaction machine dispatches on.
type HitResult struct {
	Kind HitKind
	// ID is the hit entity: node id for ports/handles on nodes, note id for
	// notes, connection id for grips and bodies.
	ID string
	// ItemKind tags what ID refers to for HitResizeHandle results.
	ItemKind EntityKind
	// PortID is set for HitPort.
	PortID string
	// Handle is set for HitResizeHandle.
	Handle ResizeHandle
	// End is set for HitConnectionGrip.
	End ConnectionEnd
}

// HitTester resolves world-space points against the graph. It is a pure
// function of its inputs; fixed pixel tolerances are de-scaled by the
// current zoom so picking feels constant at any scale.
type HitTester struct {
	opts Options
}

// NewHitTester creates a hit tester with the given pick tolerances.
func NewHitTester(opts Options) *HitTester {
	return &HitTester{opts: opts}
}

// HitTest returns the topmost interactive target at the world-space point p.
//
// Resolution order, first match wins: resize handles of the sole selected
// item, ports (most recent node first), connection grips, connection
// bodies, notes, node header/body (reverse z-order), background.
func (t *HitTester) HitTest(p Point, scale float64, g *Graph, sel *Selection) HitResult {
	if scale <= 0 {
		scale = 1
	}
	if r, ok := t.hitResizeHandle(p, scale, g, sel); ok {
		return r
	}
	if r, ok := t.hitPort(p, scale, g); ok {
		return r
	}
	if r, ok := t.hitConnectionGrip(p, scale, g); ok {
		return r
	}
	if r, ok := t.hitConnectionBody(p, scale, g); ok {
		return r
	}
	if r, ok := t.hitItemBody(p, g); ok {
		return r
	}
	return HitResult{Kind: HitBackground}
}

// handleAnchors enumerates the eight handle centers of a rectangle.
func handleAnchors(r Rect) [8]struct {
	Handle ResizeHandle
	At     Point
} {
	midX := r.X + r.Width/2
	midY := r.Y + r.Height/2
	right := r.X + r.Width
	bottom := r.Y + r.Height
	return [8]struct {
		Handle ResizeHandle
		At     Point
	}{
		{HandleNW, Point{X: r.X, Y: r.Y}},
		{HandleN, Point{X: midX, Y: r.Y}},
		{HandleNE, Point{X: right, Y: r.Y}},
		{HandleE, Point{X: right, Y: midY}},
		{HandleSE, Point{X: right, Y: bottom}},
		{HandleS, Point{X: midX, Y: bottom}},
		{HandleSW, Point{X: r.X, Y: bottom}},
		{HandleW, Point{X: r.X, Y: midY}},
	}
}

// hitResizeHandle checks the resize affordances of the sole selected item.
// Only reachable with exactly one selected entity, so handles never compete
// with multi-item dragging.
func (t *HitTester) hitResizeHandle(p Point, scale float64, g *Graph, sel *Selection) (HitResult, bool) {
	id, ok := sel.Sole()
	if !ok {
		return HitResult{}, false
	}
	var rect Rect
	var kind EntityKind
	switch g.KindOf(id) {
	case KindNode:
		rect = g.Node(id).Rect()
		kind = KindNode
	case KindNote:
		rect = g.Note(id).Rect()
		kind = KindNote
	default:
		return HitResult{}, false
	}
	radius := t.opts.HandleHitRadius / scale
	for _, h := range handleAnchors(rect) {
		if p.Dist(h.At) <= radius {
			return HitResult{Kind: HitResizeHandle, ID: id, ItemKind: kind, Handle: h.Handle}, true
		}
	}
	return HitResult{}, false
}

// hitPort checks port circles on every node, most recently added first.
// Hidden ports have no position and are never hit.
func (t *HitTester) hitPort(p Point, scale float64, g *Graph) (HitResult, bool) {
	radius := t.opts.PortHitRadius / scale
	for i := len(g.nodeOrder) - 1; i >= 0; i-- {
		n := g.nodes[g.nodeOrder[i]]
		for _, dir := range [2]PortDirection{PortInput, PortOutput} {
			for _, port := range g.VisiblePorts(n.ID, dir) {
				at, ok := g.PortPosition(port.ID)
				if ok && p.Dist(at) <= radius {
					return HitResult{Kind: HitPort, ID: n.ID, PortID: port.ID}, true
				}
			}
		}
	}
	return HitResult{}, false
}

// hitConnectionGrip checks connection endpoints with a slightly larger
// radius than ports so a grip wins when hovering an attached endpoint.
func (t *HitTester) hitConnectionGrip(p Point, scale float64, g *Graph) (HitResult, bool) {
	radius := t.opts.GripHitRadius / scale
	for i := len(g.connOrder) - 1; i >= 0; i-- {
		c := g.conns[g.connOrder[i]]
		if at, ok := g.PortPosition(c.SourcePortID); ok && p.Dist(at) <= radius {
			return HitResult{Kind: HitConnectionGrip, ID: c.ID, End: SourceEnd}, true
		}
		if at, ok := g.PortPosition(c.TargetPortID); ok && p.Dist(at) <= radius {
			return HitResult{Kind: HitConnectionGrip, ID: c.ID, End: TargetEnd}, true
		}
	}
	return HitResult{}, false
}

// hitConnectionBody checks the wire between endpoints: a bounding-box
// reject, then closest-point distance to the chord, then a relaxed check
// near the midpoint to compensate for curved routing.
func (t *HitTester) hitConnectionBody(p Point, scale float64, g *Graph) (HitResult, bool) {
	threshold := t.opts.ConnectionHitDistance / scale
	for i := len(g.connOrder) - 1; i >= 0; i-- {
		c := g.conns[g.connOrder[i]]
		a, okA := g.PortPosition(c.SourcePortID)
		b, okB := g.PortPosition(c.TargetPortID)
		if !okA || !okB {
			continue
		}
		bbox := Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}.
			Normalized().Inflate(threshold * 2)
		if !bbox.Contains(p.X, p.Y) {
			continue
		}
		if distToSegment(p, a, b) <= threshold {
			return HitResult{Kind: HitConnectionBody, ID: c.ID}, true
		}
		// The painted routing bows away from the straight chord; accept a
		// looser match around the curve midpoint.
		mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		if p.Dist(mid) <= threshold*2 {
			return HitResult{Kind: HitConnectionBody, ID: c.ID}, true
		}
	}
	return HitResult{}, false
}

// hitItemBody checks sticky notes, then nodes, both most recently drawn
// first. A node hit is split into header and body by the fixed header
// height, which downstream decides drag-vs-other intent.
func (t *HitTester) hitItemBody(p Point, g *Graph) (HitResult, bool) {
	for i := len(g.noteOrder) - 1; i >= 0; i-- {
		s := g.notes[g.noteOrder[i]]
		if s.Rect().Contains(p.X, p.Y) {
			return HitResult{Kind: HitNote, ID: s.ID}, true
		}
	}
	for i := len(g.nodeOrder) - 1; i >= 0; i-- {
		n := g.nodes[g.nodeOrder[i]]
		if !n.Rect().Contains(p.X, p.Y) {
			continue
		}
		if p.Y < n.Position.Y+HeaderHeight {
			return HitResult{Kind: HitNodeHeader, ID: n.ID}, true
		}
		return HitResult{Kind: HitNodeBody, ID: n.ID}, true
	}
	return HitResult{}, false
}

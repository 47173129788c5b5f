package loom

import "math"

// Point is a position in world (canvas) space unless a parameter is
// explicitly documented as client (screen) space.
type Point struct {
	X, Y float64
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the component-wise difference p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Dist returns the Euclidean distance between p and o.
func (p Point) Dist(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsFinite reports whether both components are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Normalized returns r with non-negative width and height, flipping edges
// as needed. Used for selection boxes dragged in any direction.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Inflate returns r grown by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// multiSelect reports whether a multi-select modifier is held.
func (m KeyModifiers) multiSelect() bool {
	return m&(ModShift|ModCtrl|ModMeta) != 0
}

// EntityKind tags what an id in the graph or selection refers to.
// The tag is set at creation time; consumers never probe fields to guess.
type EntityKind uint8

const (
	KindNone       EntityKind = iota
	KindNode                  // a diagram node with ports
	KindNote                  // a free-form sticky note
	KindConnection            // a wire between two ports
)

// PortDirection distinguishes input from output ports.
type PortDirection uint8

const (
	PortInput  PortDirection = iota // accepts incoming connections
	PortOutput                      // originates outgoing connections
)

// Opposite returns the other direction.
func (d PortDirection) Opposite() PortDirection {
	if d == PortInput {
		return PortOutput
	}
	return PortInput
}

// ResizeHandle identifies one of the eight resize affordances around the
// sole selected item. Corner handles adjust two edges; edge handles one.
type ResizeHandle uint8

const (
	HandleNone ResizeHandle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

// ConnectionEnd identifies which end of a connection a grip belongs to.
type ConnectionEnd uint8

const (
	SourceEnd ConnectionEnd = iota // the output-port end
	TargetEnd                      // the input-port end
)

// Fixed node geometry shared by the graph store, the hit-tester, and the
// render bridge. A render consumer that uses different values will
// desynchronize visuals from hit-testing.
const (
	// HeaderHeight is the height of a node's title bar in world units.
	// Pointer-downs above this line drag the node; below is the body.
	HeaderHeight = 28.0
	// PortSpacing is the vertical distance between adjacent port centers.
	PortSpacing = 22.0
	// baseMinHeight is the minimum node height before ports are accounted for.
	baseMinHeight = 40.0
	// baseMinWidth is the minimum node width.
	baseMinWidth = 80.0
	// noteMinSize is the minimum sticky note edge length.
	noteMinSize = 40.0
)

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// snapTo rounds v to the nearest multiple of step. step <= 0 is identity.
func snapTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = clamp(t, 0, 1)
	return p.Dist(Point{X: a.X + t*abx, Y: a.Y + t*aby})
}

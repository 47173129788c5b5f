package loom

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for store operations. Connection declines carry a typed
// reason instead; see ConnectionDeclinedError.
var (
	ErrUnknownEntity  = errors.New("loom: unknown entity id")
	ErrNonFinitePoint = errors.New("loom: position must be a finite point")
	ErrFixedPort      = errors.New("loom: fixed ports cannot be removed")
)

// ConnectDecline is the reason a connection was not created. Declines are
// returned, never panicked, and never abort an active interaction.
type ConnectDecline uint8

const (
	DeclineSelfConnection   ConnectDecline = iota // both ports on the same node
	DeclineWrongDirection                         // not output → input
	DeclineHiddenPort                             // either port is hidden
	DeclineDuplicate                              // identical pair already connected
	DeclineSourceCapacity                         // source port at maxConnections
	DeclineTargetCapacity                         // target port at maxConnections
)

// String returns the reason name.
func (d ConnectDecline) String() string {
	switch d {
	case DeclineSelfConnection:
		return "SelfConnection"
	case DeclineWrongDirection:
		return "WrongDirection"
	case DeclineHiddenPort:
		return "HiddenPort"
	case DeclineDuplicate:
		return "Duplicate"
	case DeclineSourceCapacity:
		return "SourceCapacityExceeded"
	case DeclineTargetCapacity:
		return "TargetCapacityExceeded"
	default:
		return fmt.Sprintf("ConnectDecline(%d)", uint8(d))
	}
}

// ConnectionDeclinedError reports why CreateConnection refused a pairing.
type ConnectionDeclinedError struct {
	Reason ConnectDecline
}

func (e *ConnectionDeclinedError) Error() string {
	return "loom: connection declined: " + e.Reason.String()
}

// DeclineReason extracts the decline reason from a CreateConnection error.
func DeclineReason(err error) (ConnectDecline, bool) {
	var de *ConnectionDeclinedError
	if errors.As(err, &de) {
		return de.Reason, true
	}
	return 0, false
}

// PortDef describes one port of a node definition.
type PortDef struct {
	Name      string
	Direction PortDirection
	// MaxConnections limits how many connections the port accepts.
	// Zero means the direction default: unlimited for outputs, 1 for inputs.
	MaxConnections int
	Hidden         bool
}

// NodeDefinition is the template a node is instantiated from, typically
// resolved by an external palette/catalog.
type NodeDefinition struct {
	Kind          string
	Label         string
	Width, Height float64
	// MinWidth/MinHeight raise the built-in minimum size. The effective
	// minimum height also grows with the visible port count.
	MinWidth, MinHeight float64
	Inputs, Outputs     []PortDef
}

// Port is a typed attachment point on a node.
type Port struct {
	ID        string
	NodeID    string
	Name      string
	Direction PortDirection
	// Dynamic ports are added and removed at runtime; fixed ports live and
	// die with their node.
	Dynamic bool
	// Hidden ports receive no position, are skipped by hit-testing, and
	// cannot participate in connections.
	Hidden bool
	// MaxConnections of 0 means unlimited.
	MaxConnections int
}

// Node is a diagram node: a positioned box with ordered port sections.
type Node struct {
	ID        string
	Kind      string
	Label     string
	Position  Point
	Width     float64
	Height    float64
	MinWidth  float64
	MinHeight float64

	// Port id sections. Enumeration order within a direction is fixed
	// ports first, then dynamic ports.
	fixedInputs    []string
	fixedOutputs   []string
	dynamicInputs  []string
	dynamicOutputs []string
}

// Rect returns the node's bounding rectangle in world space.
func (n *Node) Rect() Rect {
	return Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Width, Height: n.Height}
}

// PortIDs returns the node's port ids for a direction, fixed before dynamic,
// including hidden ports. The returned slice must not be mutated.
func (n *Node) PortIDs(dir PortDirection) []string {
	if dir == PortInput {
		if len(n.dynamicInputs) == 0 {
			return n.fixedInputs
		}
		return append(append([]string{}, n.fixedInputs...), n.dynamicInputs...)
	}
	if len(n.dynamicOutputs) == 0 {
		return n.fixedOutputs
	}
	return append(append([]string{}, n.fixedOutputs...), n.dynamicOutputs...)
}

// Connection links an output port to an input port on two different nodes.
// Instances exist only if created through Graph.CreateConnection.
type Connection struct {
	ID           string
	SourcePortID string
	TargetPortID string
	SourceNodeID string
	TargetNodeID string
}

// StickyNote is a free-form annotation box.
type StickyNote struct {
	ID       string
	Position Point
	Width    float64
	Height   float64
	Text     string
}

// Rect returns the note's bounding rectangle in world space.
func (s *StickyNote) Rect() Rect {
	return Rect{X: s.Position.X, Y: s.Position.Y, Width: s.Width, Height: s.Height}
}

// GridSource reports the snap settings in effect for geometry mutations.
// The Editor wires this to the Viewport's grid state.
type GridSource func() (size float64, snap bool)

// Graph is the entity store: an arena of nodes, ports, connections, and
// notes addressed by opaque ids, with the port→connections reverse index
// rebuilt deterministically on every structural mutation.
type Graph struct {
	nodes map[string]*Node
	ports map[string]*Port
	conns map[string]*Connection
	notes map[string]*StickyNote

	// Creation order doubles as z-order: later entries draw on top and are
	// hit-tested first.
	nodeOrder []string
	noteOrder []string
	connOrder []string

	// portConns maps a port id to the ids of connections touching it.
	portConns map[string][]string

	hub  *EventHub
	grid GridSource
}

// NewGraph creates an empty store publishing changes to hub.
// A nil hub gets a private one.
func NewGraph(hub *EventHub) *Graph {
	if hub == nil {
		hub = NewEventHub()
	}
	return &Graph{
		nodes:     make(map[string]*Node),
		ports:     make(map[string]*Port),
		conns:     make(map[string]*Connection),
		notes:     make(map[string]*StickyNote),
		portConns: make(map[string][]string),
		hub:       hub,
	}
}

// SetGridSource wires grid snapping into geometry mutations.
func (g *Graph) SetGridSource(src GridSource) {
	g.grid = src
}

func (g *Graph) snapPoint(p Point) Point {
	if g.grid == nil {
		return p
	}
	size, snap := g.grid()
	if !snap {
		return p
	}
	return Point{X: snapTo(p.X, size), Y: snapTo(p.Y, size)}
}

func (g *Graph) snapLength(v float64) float64 {
	if g.grid == nil {
		return v
	}
	size, snap := g.grid()
	if !snap {
		return v
	}
	return snapTo(v, size)
}

func (g *Graph) emit(op GraphOp, kind EntityKind, id, portID string) {
	g.hub.emitGraphChange(GraphChange{Op: op, Kind: kind, ID: id, PortID: portID})
}

// --- Lookups ---

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Port returns the port with the given id, or nil.
func (g *Graph) Port(id string) *Port { return g.ports[id] }

// Connection returns the connection with the given id, or nil.
func (g *Graph) Connection(id string) *Connection { return g.conns[id] }

// Note returns the sticky note with the given id, or nil.
func (g *Graph) Note(id string) *StickyNote { return g.notes[id] }

// KindOf returns the tagged kind of an id, or KindNone if unknown.
// Port ids resolve to KindNode (their owner's kind space).
func (g *Graph) KindOf(id string) EntityKind {
	switch {
	case g.nodes[id] != nil:
		return KindNode
	case g.notes[id] != nil:
		return KindNote
	case g.conns[id] != nil:
		return KindConnection
	default:
		return KindNone
	}
}

// NodesInOrder returns nodes in creation order (paint order, bottom first).
func (g *Graph) NodesInOrder() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// NotesInOrder returns sticky notes in creation order.
func (g *Graph) NotesInOrder() []*StickyNote {
	out := make([]*StickyNote, 0, len(g.noteOrder))
	for _, id := range g.noteOrder {
		out = append(out, g.notes[id])
	}
	return out
}

// ConnectionsInOrder returns connections in creation order.
func (g *Graph) ConnectionsInOrder() []*Connection {
	out := make([]*Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		out = append(out, g.conns[id])
	}
	return out
}

// PortConnections returns a copy of the connection ids touching a port.
func (g *Graph) PortConnections(portID string) []string {
	return append([]string{}, g.portConns[portID]...)
}

// --- Node lifecycle ---

// CreateNode instantiates a node from a definition at the given world
// position, creating its fixed ports. The only validation is that the
// position is finite.
func (g *Graph) CreateNode(def NodeDefinition, pos Point) (*Node, error) {
	if !pos.IsFinite() {
		return nil, ErrNonFinitePoint
	}
	n := &Node{
		ID:        uuid.NewString(),
		Kind:      def.Kind,
		Label:     def.Label,
		Position:  pos,
		Width:     def.Width,
		Height:    def.Height,
		MinWidth:  def.MinWidth,
		MinHeight: def.MinHeight,
	}
	if n.Width <= 0 {
		n.Width = baseMinWidth
	}
	if n.Height <= 0 {
		n.Height = baseMinHeight
	}
	g.nodes[n.ID] = n
	g.nodeOrder = append(g.nodeOrder, n.ID)

	for _, pd := range def.Inputs {
		g.attachPort(n, pd, PortInput, false)
	}
	for _, pd := range def.Outputs {
		g.attachPort(n, pd, PortOutput, false)
	}
	// Grow to the dynamic minimum so fixed ports never overlap visually.
	minW, minH := g.minNodeSize(n)
	if n.Width < minW {
		n.Width = minW
	}
	if n.Height < minH {
		n.Height = minH
	}
	g.emit(OpNodeCreated, KindNode, n.ID, "")
	return n, nil
}

func (g *Graph) attachPort(n *Node, def PortDef, dir PortDirection, dynamic bool) *Port {
	maxConns := def.MaxConnections
	if maxConns == 0 && dir == PortInput {
		maxConns = 1
	}
	p := &Port{
		ID:             uuid.NewString(),
		NodeID:         n.ID,
		Name:           def.Name,
		Direction:      dir,
		Dynamic:        dynamic,
		Hidden:         def.Hidden,
		MaxConnections: maxConns,
	}
	g.ports[p.ID] = p
	switch {
	case dir == PortInput && dynamic:
		n.dynamicInputs = append(n.dynamicInputs, p.ID)
	case dir == PortInput:
		n.fixedInputs = append(n.fixedInputs, p.ID)
	case dynamic:
		n.dynamicOutputs = append(n.dynamicOutputs, p.ID)
	default:
		n.fixedOutputs = append(n.fixedOutputs, p.ID)
	}
	return p
}

// MoveNode sets a node's position, snapped to the grid when enabled.
func (g *Graph) MoveNode(id string, pos Point) error {
	n := g.nodes[id]
	if n == nil {
		return ErrUnknownEntity
	}
	if !pos.IsFinite() {
		return ErrNonFinitePoint
	}
	pos = g.snapPoint(pos)
	if pos == n.Position {
		return nil
	}
	n.Position = pos
	g.emit(OpNodeMoved, KindNode, id, "")
	return nil
}

// minNodeSize computes the effective minimum dimensions for a node. The
// minimum height grows with the larger visible port count per side so ports
// never overlap visually.
func (g *Graph) minNodeSize(n *Node) (minW, minH float64) {
	inputs := len(g.VisiblePorts(n.ID, PortInput))
	outputs := len(g.VisiblePorts(n.ID, PortOutput))
	maxPorts := inputs
	if outputs > maxPorts {
		maxPorts = outputs
	}
	minW = baseMinWidth
	if n.MinWidth > minW {
		minW = n.MinWidth
	}
	minH = baseMinHeight + float64(maxPorts)*PortSpacing
	if n.MinHeight > minH {
		minH = n.MinHeight
	}
	return minW, minH
}

// MinNodeSize returns the effective minimum size for a node.
func (g *Graph) MinNodeSize(id string) (minW, minH float64, err error) {
	n := g.nodes[id]
	if n == nil {
		return 0, 0, ErrUnknownEntity
	}
	minW, minH = g.minNodeSize(n)
	return minW, minH, nil
}

// ResizeNode applies a rectangle to a node: normalized, grid-snapped when
// enabled, then clamped to the effective minimum size. Geometry is always
// clamped, never rejected; applying the same rect twice yields identical
// results.
func (g *Graph) ResizeNode(id string, r Rect) error {
	n := g.nodes[id]
	if n == nil {
		return ErrUnknownEntity
	}
	r = r.Normalized()
	r.X = g.snapLength(r.X)
	r.Y = g.snapLength(r.Y)
	r.Width = g.snapLength(r.Width)
	r.Height = g.snapLength(r.Height)
	minW, minH := g.minNodeSize(n)
	if r.Width < minW {
		r.Width = minW
	}
	if r.Height < minH {
		r.Height = minH
	}
	if r == n.Rect() {
		return nil
	}
	n.Position = Point{X: r.X, Y: r.Y}
	n.Width = r.Width
	n.Height = r.Height
	g.emit(OpNodeResized, KindNode, id, "")
	return nil
}

// DeleteNode removes a node, cascading to its ports and every connection
// touching them.
func (g *Graph) DeleteNode(id string) error {
	n := g.nodes[id]
	if n == nil {
		return ErrUnknownEntity
	}
	for _, pid := range append(n.PortIDs(PortInput), n.PortIDs(PortOutput)...) {
		g.deletePortConnections(pid)
		delete(g.ports, pid)
	}
	delete(g.nodes, id)
	g.nodeOrder = removeID(g.nodeOrder, id)
	g.emit(OpNodeDeleted, KindNode, id, "")
	return nil
}

// DeleteNodes removes every listed node, ignoring unknown ids.
func (g *Graph) DeleteNodes(ids []string) {
	for _, id := range ids {
		if g.nodes[id] != nil {
			_ = g.DeleteNode(id)
		}
	}
}

// --- Ports ---

// AddPort attaches a dynamic port to a node.
func (g *Graph) AddPort(nodeID string, def PortDef) (*Port, error) {
	n := g.nodes[nodeID]
	if n == nil {
		return nil, ErrUnknownEntity
	}
	p := g.attachPort(n, def, def.Direction, true)
	g.emit(OpPortAdded, KindNode, nodeID, p.ID)
	return p, nil
}

// RemovePort detaches a dynamic port, cascading to every connection
// referencing it. Fixed ports are created with the node and never removed.
func (g *Graph) RemovePort(portID string) error {
	p := g.ports[portID]
	if p == nil {
		return ErrUnknownEntity
	}
	if !p.Dynamic {
		return ErrFixedPort
	}
	g.deletePortConnections(portID)
	n := g.nodes[p.NodeID]
	if p.Direction == PortInput {
		n.dynamicInputs = removeID(n.dynamicInputs, portID)
	} else {
		n.dynamicOutputs = removeID(n.dynamicOutputs, portID)
	}
	delete(g.ports, portID)
	g.emit(OpPortRemoved, KindNode, p.NodeID, portID)
	return nil
}

// SetPortHidden toggles a port's visibility. Hiding a port cascades to its
// connections: a hidden port cannot appear in any connection.
func (g *Graph) SetPortHidden(portID string, hidden bool) error {
	p := g.ports[portID]
	if p == nil {
		return ErrUnknownEntity
	}
	if p.Hidden == hidden {
		return nil
	}
	if hidden {
		g.deletePortConnections(portID)
	}
	p.Hidden = hidden
	g.emit(OpPortVisibility, KindNode, p.NodeID, portID)
	return nil
}

// VisiblePorts returns a node's visible ports for a direction, fixed ports
// before dynamic ones. Hidden ports are skipped entirely.
func (g *Graph) VisiblePorts(nodeID string, dir PortDirection) []*Port {
	n := g.nodes[nodeID]
	if n == nil {
		return nil
	}
	var out []*Port
	for _, id := range n.PortIDs(dir) {
		if p := g.ports[id]; p != nil && !p.Hidden {
			out = append(out, p)
		}
	}
	return out
}

// PortPosition returns a port's anchor point in world space:
//
//	y = header + spacing · (preceding visible count in direction + 0.5)
//	x = left edge for inputs, right edge for outputs
//
// Hidden ports have no position and contribute nothing to the preceding
// count. The render bridge must use this same formula.
func (g *Graph) PortPosition(portID string) (Point, bool) {
	p := g.ports[portID]
	if p == nil || p.Hidden {
		return Point{}, false
	}
	n := g.nodes[p.NodeID]
	if n == nil {
		return Point{}, false
	}
	ordinal := 0
	for _, id := range n.PortIDs(p.Direction) {
		q := g.ports[id]
		if q == nil || q.Hidden {
			continue
		}
		if id == portID {
			break
		}
		ordinal++
	}
	x := n.Position.X
	if p.Direction == PortOutput {
		x += n.Width
	}
	y := n.Position.Y + HeaderHeight + PortSpacing*(float64(ordinal)+0.5)
	return Point{X: x, Y: y}, true
}

// --- Connections ---

func (g *Graph) connectionCount(portID string) int {
	return len(g.portConns[portID])
}

// validateConnection checks the pairing rules without mutating anything.
func (g *Graph) validateConnection(src, dst *Port) *ConnectionDeclinedError {
	if src.NodeID == dst.NodeID {
		return &ConnectionDeclinedError{Reason: DeclineSelfConnection}
	}
	if src.Direction != PortOutput || dst.Direction != PortInput {
		return &ConnectionDeclinedError{Reason: DeclineWrongDirection}
	}
	if src.Hidden || dst.Hidden {
		return &ConnectionDeclinedError{Reason: DeclineHiddenPort}
	}
	for _, cid := range g.portConns[src.ID] {
		c := g.conns[cid]
		if c != nil && c.TargetPortID == dst.ID {
			return &ConnectionDeclinedError{Reason: DeclineDuplicate}
		}
	}
	if src.MaxConnections > 0 && g.connectionCount(src.ID) >= src.MaxConnections {
		return &ConnectionDeclinedError{Reason: DeclineSourceCapacity}
	}
	if dst.MaxConnections > 0 && g.connectionCount(dst.ID) >= dst.MaxConnections {
		return &ConnectionDeclinedError{Reason: DeclineTargetCapacity}
	}
	return nil
}

// CreateConnection links an output port to an input port on two different
// nodes. On refusal it returns a *ConnectionDeclinedError carrying the
// reason and mutates nothing. This is the sole constructor for connections.
func (g *Graph) CreateConnection(sourcePortID, targetPortID string) (*Connection, error) {
	src := g.ports[sourcePortID]
	dst := g.ports[targetPortID]
	if src == nil || dst == nil {
		return nil, ErrUnknownEntity
	}
	if de := g.validateConnection(src, dst); de != nil {
		return nil, de
	}
	c := &Connection{
		ID:           uuid.NewString(),
		SourcePortID: src.ID,
		TargetPortID: dst.ID,
		SourceNodeID: src.NodeID,
		TargetNodeID: dst.NodeID,
	}
	g.conns[c.ID] = c
	g.connOrder = append(g.connOrder, c.ID)
	g.rebuildPortIndex()
	g.emit(OpConnectionCreated, KindConnection, c.ID, "")
	return c, nil
}

// restoreConnection re-inserts a previously existing connection under its
// original id, running the same validation as CreateConnection. Backs the
// reconnection compensating action.
func (g *Graph) restoreConnection(c Connection) error {
	src := g.ports[c.SourcePortID]
	dst := g.ports[c.TargetPortID]
	if src == nil || dst == nil {
		return ErrUnknownEntity
	}
	if de := g.validateConnection(src, dst); de != nil {
		return de
	}
	restored := c
	g.conns[restored.ID] = &restored
	g.connOrder = append(g.connOrder, restored.ID)
	g.rebuildPortIndex()
	g.emit(OpConnectionCreated, KindConnection, restored.ID, "")
	return nil
}

// DeleteConnection removes a connection explicitly.
func (g *Graph) DeleteConnection(id string) error {
	if g.conns[id] == nil {
		return ErrUnknownEntity
	}
	g.removeConnection(id)
	return nil
}

func (g *Graph) removeConnection(id string) {
	delete(g.conns, id)
	g.connOrder = removeID(g.connOrder, id)
	g.rebuildPortIndex()
	g.emit(OpConnectionDeleted, KindConnection, id, "")
}

// deletePortConnections cascades deletion to every connection touching a port.
func (g *Graph) deletePortConnections(portID string) {
	for _, cid := range g.PortConnections(portID) {
		g.removeConnection(cid)
	}
}

// rebuildPortIndex rebuilds the port→connections reverse index from the
// connection list in creation order. Rebuilding instead of splicing keeps
// the index deterministic and immune to dangling entries.
func (g *Graph) rebuildPortIndex() {
	g.portConns = make(map[string][]string, len(g.ports))
	for _, cid := range g.connOrder {
		c := g.conns[cid]
		g.portConns[c.SourcePortID] = append(g.portConns[c.SourcePortID], cid)
		g.portConns[c.TargetPortID] = append(g.portConns[c.TargetPortID], cid)
	}
}

// --- Sticky notes ---

// CreateNote places a sticky note at the given world position.
func (g *Graph) CreateNote(pos Point, text string) (*StickyNote, error) {
	if !pos.IsFinite() {
		return nil, ErrNonFinitePoint
	}
	s := &StickyNote{
		ID:       uuid.NewString(),
		Position: pos,
		Width:    160,
		Height:   100,
		Text:     text,
	}
	g.notes[s.ID] = s
	g.noteOrder = append(g.noteOrder, s.ID)
	g.emit(OpNoteCreated, KindNote, s.ID, "")
	return s, nil
}

// MoveNote sets a note's position, snapped to the grid when enabled.
func (g *Graph) MoveNote(id string, pos Point) error {
	s := g.notes[id]
	if s == nil {
		return ErrUnknownEntity
	}
	if !pos.IsFinite() {
		return ErrNonFinitePoint
	}
	pos = g.snapPoint(pos)
	if pos == s.Position {
		return nil
	}
	s.Position = pos
	g.emit(OpNoteMoved, KindNote, id, "")
	return nil
}

// ResizeNote applies a rectangle to a note with the same normalize/snap/
// clamp pipeline as ResizeNode.
func (g *Graph) ResizeNote(id string, r Rect) error {
	s := g.notes[id]
	if s == nil {
		return ErrUnknownEntity
	}
	r = r.Normalized()
	r.X = g.snapLength(r.X)
	r.Y = g.snapLength(r.Y)
	r.Width = g.snapLength(r.Width)
	r.Height = g.snapLength(r.Height)
	if r.Width < noteMinSize {
		r.Width = noteMinSize
	}
	if r.Height < noteMinSize {
		r.Height = noteMinSize
	}
	if r == s.Rect() {
		return nil
	}
	s.Position = Point{X: r.X, Y: r.Y}
	s.Width = r.Width
	s.Height = r.Height
	g.emit(OpNoteResized, KindNote, id, "")
	return nil
}

// SetNoteText replaces a note's text.
func (g *Graph) SetNoteText(id, text string) error {
	s := g.notes[id]
	if s == nil {
		return ErrUnknownEntity
	}
	if s.Text == text {
		return nil
	}
	s.Text = text
	g.emit(OpNoteEdited, KindNote, id, "")
	return nil
}

// DeleteNote removes a sticky note.
func (g *Graph) DeleteNote(id string) error {
	if g.notes[id] == nil {
		return ErrUnknownEntity
	}
	delete(g.notes, id)
	g.noteOrder = removeID(g.noteOrder, id)
	g.emit(OpNoteDeleted, KindNote, id, "")
	return nil
}

// --- Clones ---
//
// Explicit per-type clone functions back clipboard and history snapshots;
// generic serialization is not used for deep copies.

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	c.fixedInputs = append([]string{}, n.fixedInputs...)
	c.fixedOutputs = append([]string{}, n.fixedOutputs...)
	c.dynamicInputs = append([]string{}, n.dynamicInputs...)
	c.dynamicOutputs = append([]string{}, n.dynamicOutputs...)
	return &c
}

// Clone returns a copy of the port.
func (p *Port) Clone() *Port {
	c := *p
	return &c
}

// Clone returns a copy of the connection.
func (c *Connection) Clone() *Connection {
	d := *c
	return &d
}

// Clone returns a copy of the note.
func (s *StickyNote) Clone() *StickyNote {
	c := *s
	return &c
}

func removeID(s []string, id string) []string {
	for i := range s {
		if s[i] == id {
			copy(s[i:], s[i+1:])
			return s[:len(s)-1]
		}
	}
	return s
}

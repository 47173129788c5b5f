package loom

import "fmt"

// InteractionState is the pointer state machine's current state. Every
// transition begins at StateIdle; every state returns to StateIdle on
// pointer-up, pointer-leave, or explicit cancel.
type InteractionState uint8

const (
	StateIdle InteractionState = iota
	StatePanning
	StateDraggingItems
	StateResizingItem
	StateBoxSelecting
	StateDraggingConnection
	StateReconnectingConnection
)

// String returns the state name.
func (s InteractionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanning:
		return "panning"
	case StateDraggingItems:
		return "draggingItems"
	case StateResizingItem:
		return "resizingItem"
	case StateBoxSelecting:
		return "boxSelecting"
	case StateDraggingConnection:
		return "draggingConnection"
	case StateReconnectingConnection:
		return "reconnectingConnection"
	default:
		return fmt.Sprintf("InteractionState(%d)", uint8(s))
	}
}

// dragCapture remembers one item's position at drag start.
type dragCapture struct {
	id    string
	kind  EntityKind
	start Point
}

// Machine consumes pointer and wheel events in client space, drives the
// hit-tester, and mutates the graph and selection. It is the sole mutator
// during an active interaction; external layers may call the same store
// operations synchronously between interactions.
type Machine struct {
	graph  *Graph
	sel    *Selection
	view   *Viewport
	hub    *EventHub
	tester *HitTester
	opts   Options

	state InteractionState

	// panning
	panLast Point // client space

	// background press armed for box-select; becomes StateBoxSelecting once
	// pointer travel exceeds the dead zone.
	boxArmed        bool
	boxAnchorClient Point
	boxAnchorWorld  Point
	boxAdditive     bool
	boxRect         Rect

	// draggingItems
	dragStartWorld Point
	dragItems      []dragCapture

	// resizingItem
	resizeID         string
	resizeKind       EntityKind
	resizeHandle     ResizeHandle
	resizeOrig       Rect
	resizeStartWorld Point

	// draggingConnection / reconnectingConnection
	connSourcePortID string // fresh drag: the anchored source port
	floating         Point  // world position of the floating endpoint
	compatPortID     string // port flagged compatible on the last move

	reconnOriginal    Connection // value copy for the compensating action
	reconnFixedPortID string
	reconnMovingEnd   ConnectionEnd
}

// NewMachine wires the state machine to its collaborators.
func NewMachine(graph *Graph, sel *Selection, view *Viewport, hub *EventHub, opts Options) *Machine {
	return &Machine{
		graph:  graph,
		sel:    sel,
		view:   view,
		hub:    hub,
		tester: NewHitTester(opts),
		opts:   opts,
	}
}

// State returns the current interaction state.
func (m *Machine) State() InteractionState {
	return m.state
}

// BoxRect returns the active selection box in world space.
func (m *Machine) BoxRect() (Rect, bool) {
	if m.state != StateBoxSelecting {
		return Rect{}, false
	}
	return m.boxRect, true
}

// FloatingWire describes an in-flight connection drag for render consumers.
type FloatingWire struct {
	// From is the anchored end (the source port for a fresh drag, the fixed
	// end for a reconnection).
	From Point
	// To is the floating endpoint, snapped to a compatible port when one is
	// under the pointer.
	To Point
	// Compatible reports whether To is snapped to a valid target.
	Compatible bool
}

// Wire returns the floating connection being dragged, if any.
func (m *Machine) Wire() (FloatingWire, bool) {
	var anchorPort string
	switch m.state {
	case StateDraggingConnection:
		anchorPort = m.connSourcePortID
	case StateReconnectingConnection:
		anchorPort = m.reconnFixedPortID
	default:
		return FloatingWire{}, false
	}
	from, ok := m.graph.PortPosition(anchorPort)
	if !ok {
		return FloatingWire{}, false
	}
	return FloatingWire{From: from, To: m.floating, Compatible: m.compatPortID != ""}, true
}

// hit runs the hit-tester at a world point with the current viewport scale.
func (m *Machine) hit(world Point) HitResult {
	return m.tester.HitTest(world, m.view.State().Scale, m.graph, m.sel)
}

// PointerDown dispatches a button press at a client-space point.
func (m *Machine) PointerDown(client Point, button MouseButton, mods KeyModifiers) {
	if m.state != StateIdle {
		// A secondary button during a connection drag aborts it.
		if button == MouseButtonRight &&
			(m.state == StateDraggingConnection || m.state == StateReconnectingConnection) {
			m.Cancel()
		}
		return
	}

	world := m.view.ClientToCanvas(client)
	hit := m.hit(world)

	switch hit.Kind {
	case HitResizeHandle:
		m.beginResize(hit, world)

	case HitPort:
		if button != MouseButtonLeft {
			return
		}
		m.state = StateDraggingConnection
		m.connSourcePortID = hit.PortID
		m.floating = world
		m.compatPortID = ""
		m.view.RequestRender()

	case HitConnectionGrip:
		if button != MouseButtonLeft {
			return
		}
		c := m.graph.Connection(hit.ID)
		if c == nil {
			return
		}
		m.state = StateReconnectingConnection
		m.reconnOriginal = *c
		m.reconnMovingEnd = hit.End
		if hit.End == SourceEnd {
			m.reconnFixedPortID = c.TargetPortID
		} else {
			m.reconnFixedPortID = c.SourcePortID
		}
		m.floating = world
		m.compatPortID = ""
		m.view.RequestRender()

	case HitConnectionBody:
		if button != MouseButtonLeft {
			return
		}
		if mods.multiSelect() {
			m.sel.Toggle(hit.ID)
		} else {
			m.sel.Replace(hit.ID)
		}

	case HitNodeHeader, HitNodeBody, HitNote:
		if button != MouseButtonLeft {
			return
		}
		m.beginItemDrag(hit.ID, world, mods)

	case HitBackground:
		if button == MouseButtonMiddle || (button == MouseButtonLeft && mods&ModAlt != 0) {
			m.state = StatePanning
			m.panLast = client
			return
		}
		if button != MouseButtonLeft {
			return
		}
		if !mods.multiSelect() {
			m.sel.Clear()
		}
		// Arm the selection box; it opens once the pointer travels past the
		// dead zone, so a bare click never enters boxSelecting.
		m.boxArmed = true
		m.boxAnchorClient = client
		m.boxAnchorWorld = world
		m.boxAdditive = mods.multiSelect()
	}
}

func (m *Machine) beginResize(hit HitResult, world Point) {
	var rect Rect
	switch hit.ItemKind {
	case KindNode:
		n := m.graph.Node(hit.ID)
		if n == nil {
			return
		}
		rect = n.Rect()
	case KindNote:
		s := m.graph.Note(hit.ID)
		if s == nil {
			return
		}
		rect = s.Rect()
	default:
		return
	}
	m.state = StateResizingItem
	m.resizeID = hit.ID
	m.resizeKind = hit.ItemKind
	m.resizeHandle = hit.Handle
	m.resizeOrig = rect
	m.resizeStartWorld = world
}

func (m *Machine) beginItemDrag(id string, world Point, mods KeyModifiers) {
	if !m.sel.Contains(id) {
		if mods.multiSelect() {
			m.sel.Add(id)
		} else {
			m.sel.Replace(id)
		}
	}
	m.state = StateDraggingItems
	m.dragStartWorld = world
	m.dragItems = m.dragItems[:0]
	for _, sid := range m.sel.IDs() {
		switch m.graph.KindOf(sid) {
		case KindNode:
			m.dragItems = append(m.dragItems, dragCapture{id: sid, kind: KindNode, start: m.graph.Node(sid).Position})
		case KindNote:
			m.dragItems = append(m.dragItems, dragCapture{id: sid, kind: KindNote, start: m.graph.Note(sid).Position})
		}
	}
}

// PointerMove advances the active interaction to a new client-space point.
func (m *Machine) PointerMove(client Point, mods KeyModifiers) {
	world := m.view.ClientToCanvas(client)

	switch m.state {
	case StateIdle:
		if m.boxArmed && client.Dist(m.boxAnchorClient) > m.opts.DragDeadZone {
			m.state = StateBoxSelecting
			m.boxRect = rectBetween(m.boxAnchorWorld, world)
			m.view.RequestRender()
		}

	case StatePanning:
		m.view.Pan(client.X-m.panLast.X, client.Y-m.panLast.Y)
		m.panLast = client

	case StateDraggingItems:
		delta := world.Sub(m.dragStartWorld)
		for _, it := range m.dragItems {
			target := it.start.Add(delta)
			// Deleted mid-drag: skip silently; the interaction resolves on up.
			switch it.kind {
			case KindNode:
				if m.graph.Node(it.id) != nil {
					_ = m.graph.MoveNode(it.id, target)
				}
			case KindNote:
				if m.graph.Note(it.id) != nil {
					_ = m.graph.MoveNote(it.id, target)
				}
			}
		}
		m.view.RequestRender()

	case StateResizingItem:
		m.applyResize(world)

	case StateBoxSelecting:
		m.boxRect = rectBetween(m.boxAnchorWorld, world)
		m.view.RequestRender()

	case StateDraggingConnection:
		m.trackFloatingEnd(world, false)

	case StateReconnectingConnection:
		m.trackFloatingEnd(world, true)
	}
	_ = mods
}

// rectBetween returns the normalized rectangle spanned by two points.
func rectBetween(a, b Point) Rect {
	return Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}.Normalized()
}

// applyResize recomputes the rect for the grabbed handle and applies it.
// Corner handles adjust two edges, edge handles one; the opposite edge is
// anchored when the minimum size is reached.
func (m *Machine) applyResize(world Point) {
	d := world.Sub(m.resizeStartWorld)
	r := m.resizeOrig

	switch m.resizeHandle {
	case HandleNW:
		r.X += d.X
		r.Y += d.Y
		r.Width -= d.X
		r.Height -= d.Y
	case HandleN:
		r.Y += d.Y
		r.Height -= d.Y
	case HandleNE:
		r.Y += d.Y
		r.Width += d.X
		r.Height -= d.Y
	case HandleE:
		r.Width += d.X
	case HandleSE:
		r.Width += d.X
		r.Height += d.Y
	case HandleS:
		r.Height += d.Y
	case HandleSW:
		r.X += d.X
		r.Width -= d.X
		r.Height += d.Y
	case HandleW:
		r.X += d.X
		r.Width -= d.X
	}

	var minW, minH float64
	switch m.resizeKind {
	case KindNode:
		if m.graph.Node(m.resizeID) == nil {
			return // deleted mid-resize; no-op until up
		}
		minW, minH, _ = m.graph.MinNodeSize(m.resizeID)
	case KindNote:
		if m.graph.Note(m.resizeID) == nil {
			return
		}
		minW, minH = noteMinSize, noteMinSize
	}

	// Keep the opposite edge anchored when clamping west/north handles.
	if r.Width < minW {
		if m.resizeHandle == HandleNW || m.resizeHandle == HandleW || m.resizeHandle == HandleSW {
			r.X = m.resizeOrig.X + m.resizeOrig.Width - minW
		}
		r.Width = minW
	}
	if r.Height < minH {
		if m.resizeHandle == HandleNW || m.resizeHandle == HandleN || m.resizeHandle == HandleNE {
			r.Y = m.resizeOrig.Y + m.resizeOrig.Height - minH
		}
		r.Height = minH
	}

	if m.resizeKind == KindNode {
		_ = m.graph.ResizeNode(m.resizeID, r)
	} else {
		_ = m.graph.ResizeNote(m.resizeID, r)
	}
	m.view.RequestRender()
}

// trackFloatingEnd re-runs the hit-tester and snaps the floating endpoint to
// a compatible port, or follows the raw pointer with no target flagged.
func (m *Machine) trackFloatingEnd(world Point, reconnect bool) {
	m.compatPortID = ""
	m.floating = world

	hit := m.hit(world)
	if hit.Kind != HitPort {
		m.view.RequestRender()
		return
	}
	candidate := m.graph.Port(hit.PortID)
	if candidate == nil || !m.isConnectionCompatible(candidate, reconnect) {
		m.view.RequestRender()
		return
	}
	if at, ok := m.graph.PortPosition(candidate.ID); ok {
		m.floating = at
		m.compatPortID = candidate.ID
	}
	m.view.RequestRender()
}

// isConnectionCompatible applies the pairing rule for the floating end.
// Capacity and duplication are the store's concern at commit time.
func (m *Machine) isConnectionCompatible(candidate *Port, reconnect bool) bool {
	if candidate.Hidden {
		return false
	}
	var anchor *Port
	if reconnect {
		anchor = m.graph.Port(m.reconnFixedPortID)
	} else {
		anchor = m.graph.Port(m.connSourcePortID)
	}
	if anchor == nil || anchor.Hidden {
		return false // anchor deleted or hidden mid-drag; nothing can commit
	}
	if candidate.ID == anchor.ID || candidate.NodeID == anchor.NodeID {
		return false
	}
	return candidate.Direction == anchor.Direction.Opposite()
}

// PointerUp resolves the active interaction at a client-space point.
func (m *Machine) PointerUp(client Point, mods KeyModifiers) {
	world := m.view.ClientToCanvas(client)
	prev := m.state

	done := InteractionDone{State: prev}

	switch prev {
	case StateIdle:
		m.boxArmed = false
		return

	case StateDraggingItems:
		for _, it := range m.dragItems {
			done.ItemIDs = append(done.ItemIDs, it.id)
		}

	case StateResizingItem:
		exists := (m.resizeKind == KindNode && m.graph.Node(m.resizeID) != nil) ||
			(m.resizeKind == KindNote && m.graph.Note(m.resizeID) != nil)
		if exists {
			done.ItemIDs = []string{m.resizeID}
		}

	case StateBoxSelecting:
		ids := m.boxMembers()
		if m.boxAdditive {
			m.sel.Add(ids...)
		} else {
			m.sel.Replace(ids...)
		}
		done.ItemIDs = ids

	case StateDraggingConnection:
		if c := m.commitFreshConnection(world); c != nil {
			done.ConnectionID = c.ID
		}

	case StateReconnectingConnection:
		if c := m.commitReconnection(world); c != nil {
			done.ConnectionID = c.ID
		}
	}

	m.reset()
	m.view.RequestRender()
	m.hub.emitInteractionDone(done)
	_ = mods
}

// boxMembers collects nodes and notes whose rects overlap the selection box.
func (m *Machine) boxMembers() []string {
	var ids []string
	for _, n := range m.graph.NodesInOrder() {
		if m.boxRect.Intersects(n.Rect()) {
			ids = append(ids, n.ID)
		}
	}
	for _, s := range m.graph.NotesInOrder() {
		if m.boxRect.Intersects(s.Rect()) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// commitFreshConnection creates the dragged connection if, and only if, the
// release point still resolves to the port flagged compatible on the
// immediately preceding move. This guards against a stale target when the
// pointer leaves the port between the last move and the up event.
func (m *Machine) commitFreshConnection(world Point) *Connection {
	if m.compatPortID == "" {
		return nil
	}
	hit := m.hit(world)
	if hit.Kind != HitPort || hit.PortID != m.compatPortID {
		return nil
	}
	source := m.graph.Port(m.connSourcePortID)
	target := m.graph.Port(m.compatPortID)
	if source == nil || target == nil {
		return nil
	}
	if source.Direction == PortInput {
		source, target = target, source
	}
	c, err := m.graph.CreateConnection(source.ID, target.ID)
	if err != nil {
		return nil // declined; nothing was created
	}
	return c
}

// commitReconnection detaches the original connection and attempts the new
// pairing. If creation fails the original is restored exactly as it was:
// a failed reconnection must never leave the link missing.
func (m *Machine) commitReconnection(world Point) *Connection {
	orig := m.graph.Connection(m.reconnOriginal.ID)
	if orig == nil {
		return nil // deleted externally mid-interaction
	}
	if m.compatPortID == "" {
		return nil
	}
	hit := m.hit(world)
	if hit.Kind != HitPort || hit.PortID != m.compatPortID {
		return nil
	}

	var newSource, newTarget string
	if m.reconnMovingEnd == SourceEnd {
		newSource, newTarget = m.compatPortID, m.reconnFixedPortID
	} else {
		newSource, newTarget = m.reconnFixedPortID, m.compatPortID
	}

	snapshot := m.reconnOriginal
	_ = m.graph.DeleteConnection(snapshot.ID)
	c, err := m.graph.CreateConnection(newSource, newTarget)
	if err != nil {
		// Compensating action: restore the original pairing, same id.
		_ = m.graph.restoreConnection(snapshot)
		return nil
	}
	return c
}

// PointerLeave aborts the active interaction when the pointer leaves the
// interactive surface. No graph mutation is performed; connection drags
// simply discard their local state.
func (m *Machine) PointerLeave() {
	m.Cancel()
}

// Cancel aborts the active interaction and returns to idle. Cancellation is
// purely local state discard; no cleanup beyond resetting captures.
func (m *Machine) Cancel() {
	prev := m.state
	m.reset()
	if prev != StateIdle {
		m.view.RequestRender()
		m.hub.emitInteractionDone(InteractionDone{State: prev, Canceled: true})
	}
}

// Wheel applies a zoom step centered on the pointer.
func (m *Machine) Wheel(deltaY float64, client Point) {
	m.view.Zoom(deltaY, client)
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.boxArmed = false
	m.boxRect = Rect{}
	m.dragItems = m.dragItems[:0]
	m.resizeID = ""
	m.resizeHandle = HandleNone
	m.connSourcePortID = ""
	m.compatPortID = ""
	m.reconnOriginal = Connection{}
	m.reconnFixedPortID = ""
}

package loom

// Editor composes the graph store, selection set, viewport, and interaction
// machine behind a single surface. External layers (panels, palette drops,
// history) talk to the editor; render consumers subscribe through its hub.
type Editor struct {
	opts    Options
	hub     *EventHub
	view    *Viewport
	graph   *Graph
	sel     *Selection
	machine *Machine

	input inputReader
	paint paintCache
}

// NewEditor creates an editor with the given options. Invalid options fall
// back to defaults; use Options.Validate to surface configuration errors.
func NewEditor(opts Options) *Editor {
	if opts.Validate() != nil {
		opts = DefaultOptions()
	}
	hub := NewEventHub()
	view := NewViewport(opts)
	graph := NewGraph(hub)
	graph.SetGridSource(func() (float64, bool) {
		s := view.State()
		return s.GridSize, s.SnapToGrid
	})

	ed := &Editor{
		opts:  opts,
		hub:   hub,
		view:  view,
		graph: graph,
	}
	ed.sel = NewSelection(func(ids []string) {
		view.RequestRender()
		hub.emitSelectionChanged(ids)
	})
	ed.machine = NewMachine(graph, ed.sel, view, hub, opts)

	// Selection must never reference a deleted id; pruning runs in the same
	// dispatch as the deletion itself.
	hub.OnGraphChange(func(c GraphChange) {
		switch c.Op {
		case OpNodeDeleted, OpNoteDeleted, OpConnectionDeleted:
			ed.sel.Prune(c.ID)
		}
		view.RequestRender()
	})
	return ed
}

// Graph returns the entity store.
func (ed *Editor) Graph() *Graph { return ed.graph }

// Selection returns the selection set.
func (ed *Editor) Selection() *Selection { return ed.sel }

// Viewport returns the viewport.
func (ed *Editor) Viewport() *Viewport { return ed.view }

// Machine returns the interaction state machine. Useful for headless event
// injection and for render consumers reading the box rect or floating wire.
func (ed *Editor) Machine() *Machine { return ed.machine }

// Hub returns the event mediator external layers subscribe to.
func (ed *Editor) Hub() *EventHub { return ed.hub }

// DropDefinition handles a drop-from-palette: the client point is resolved
// to world space and a node is instantiated there. Where definitions come
// from is the caller's concern.
func (ed *Editor) DropDefinition(def NodeDefinition, clientPoint Point) (*Node, error) {
	return ed.graph.CreateNode(def, ed.view.ClientToCanvas(clientPoint))
}

// DeleteSelection deletes every selected entity, cascading as usual.
// Called by external shortcut dispatch; selection pruning follows from the
// deletions themselves.
func (ed *Editor) DeleteSelection() {
	for _, id := range ed.sel.IDs() {
		switch ed.graph.KindOf(id) {
		case KindNode:
			_ = ed.graph.DeleteNode(id)
		case KindNote:
			_ = ed.graph.DeleteNote(id)
		case KindConnection:
			_ = ed.graph.DeleteConnection(id)
		}
	}
}

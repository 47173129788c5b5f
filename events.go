package loom

import "github.com/hajimehoshi/ebiten/v2"

// GraphOp identifies a kind of graph mutation.
type GraphOp uint8

const (
	OpNodeCreated       GraphOp = iota // fires after CreateNode
	OpNodeMoved                        // fires after MoveNode
	OpNodeResized                      // fires after ResizeNode
	OpNodeDeleted                      // fires after DeleteNode, once per node
	OpPortAdded                        // fires after AddPort
	OpPortRemoved                      // fires after RemovePort
	OpPortVisibility                   // fires after SetPortHidden
	OpConnectionCreated                // fires after a validated CreateConnection
	OpConnectionDeleted                // fires after DeleteConnection or a cascade
	OpNoteCreated                      // fires after CreateNote
	OpNoteMoved                        // fires after MoveNote
	OpNoteResized                      // fires after ResizeNote
	OpNoteEdited                       // fires after SetNoteText
	OpNoteDeleted                      // fires after DeleteNote
)

// GraphChange describes a single committed graph mutation.
type GraphChange struct {
	Op GraphOp
	// Kind and ID identify the subject entity. Port changes carry KindNode
	// with the port id in PortID and the owner in ID.
	Kind   EntityKind
	ID     string
	PortID string
}

// InteractionDone is emitted when a pointer interaction leaves a non-idle
// state, whether it committed or not.
type InteractionDone struct {
	// State is the state the machine was in before returning to idle.
	State InteractionState
	// ItemIDs are the items a move/resize touched.
	ItemIDs []string
	// ConnectionID is set when a connect/reconnect committed.
	ConnectionID string
	// Canceled reports an explicit abort (secondary button, pointer leave).
	Canceled bool
}

// hubEvent identifies a handler list inside the EventHub.
type hubEvent uint8

const (
	hubGraphChange hubEvent = iota
	hubSelectionChanged
	hubBeforePaint
	hubInteractionDone
)

type graphHandler struct {
	id uint32
	fn func(GraphChange)
}

type selectionHandler struct {
	id uint32
	fn func(ids []string)
}

type paintHandler struct {
	id uint32
	fn func(target *ebiten.Image, view ViewState)
}

type doneHandler struct {
	id uint32
	fn func(InteractionDone)
}

// EventHub is the single mediator between the core and external layers:
// render consumers, property panels, history. Handlers are typed; there are
// no string event names. Dispatch is synchronous and single-threaded.
type EventHub struct {
	nextID    uint32
	graph     []graphHandler
	selection []selectionHandler
	paint     []paintHandler
	done      []doneHandler
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{}
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	hub   *EventHub
	event hubEvent
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.hub == nil {
		return
	}
	switch h.event {
	case hubGraphChange:
		h.hub.graph = removeGraphHandler(h.hub.graph, h.id)
	case hubSelectionChanged:
		h.hub.selection = removeSelectionHandler(h.hub.selection, h.id)
	case hubBeforePaint:
		h.hub.paint = removePaintHandler(h.hub.paint, h.id)
	case hubInteractionDone:
		h.hub.done = removeDoneHandler(h.hub.done, h.id)
	}
}

func removeGraphHandler(s []graphHandler, id uint32) []graphHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = graphHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeSelectionHandler(s []selectionHandler, id uint32) []selectionHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = selectionHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removePaintHandler(s []paintHandler, id uint32) []paintHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = paintHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeDoneHandler(s []doneHandler, id uint32) []doneHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = doneHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// OnGraphChange registers a callback fired after every committed mutation.
func (h *EventHub) OnGraphChange(fn func(GraphChange)) CallbackHandle {
	h.nextID++
	h.graph = append(h.graph, graphHandler{id: h.nextID, fn: fn})
	return CallbackHandle{id: h.nextID, hub: h, event: hubGraphChange}
}

// OnSelectionChanged registers a callback fired whenever the selection set
// changes, carrying the full id list.
func (h *EventHub) OnSelectionChanged(fn func(ids []string)) CallbackHandle {
	h.nextID++
	h.selection = append(h.selection, selectionHandler{id: h.nextID, fn: fn})
	return CallbackHandle{id: h.nextID, hub: h, event: hubSelectionChanged}
}

// OnBeforePaint registers a render consumer. It receives the drawing target
// and the view state in effect for the frame being painted.
func (h *EventHub) OnBeforePaint(fn func(target *ebiten.Image, view ViewState)) CallbackHandle {
	h.nextID++
	h.paint = append(h.paint, paintHandler{id: h.nextID, fn: fn})
	return CallbackHandle{id: h.nextID, hub: h, event: hubBeforePaint}
}

// OnInteractionDone registers a callback fired when a pointer interaction
// finishes or aborts.
func (h *EventHub) OnInteractionDone(fn func(InteractionDone)) CallbackHandle {
	h.nextID++
	h.done = append(h.done, doneHandler{id: h.nextID, fn: fn})
	return CallbackHandle{id: h.nextID, hub: h, event: hubInteractionDone}
}

func (h *EventHub) emitGraphChange(c GraphChange) {
	for _, hd := range h.graph {
		hd.fn(c)
	}
}

func (h *EventHub) emitSelectionChanged(ids []string) {
	for _, hd := range h.selection {
		hd.fn(ids)
	}
}

func (h *EventHub) emitBeforePaint(target *ebiten.Image, view ViewState) {
	for _, hd := range h.paint {
		hd.fn(target, view)
	}
}

func (h *EventHub) emitInteractionDone(d InteractionDone) {
	for _, hd := range h.done {
		hd.fn(d)
	}
}

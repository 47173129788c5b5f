package loom

import (
	"encoding/json"
	"fmt"
)

// Document is the persisted shape of an editor: nodes, connections, sticky
// notes, and the view state. Loom consumes this shape but does not own the
// storage; callers decide where the bytes live.
//
// Rehydration goes exclusively through the validated constructors, so
// cascading invariants (such as dangling connections) cannot be
// reintroduced from stale data. Ids are regenerated on load.
type Document struct {
	Nodes       []DocumentNode       `json:"nodes"`
	Connections []DocumentConnection `json:"connections"`
	StickyNotes []DocumentNote       `json:"stickyNotes"`
	ViewState   DocumentViewState    `json:"viewState"`
}

// DocumentNode is a node with its ports in enumeration order
// (fixed before dynamic within each direction).
type DocumentNode struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Label     string         `json:"label,omitempty"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	MinWidth  float64        `json:"minWidth,omitempty"`
	MinHeight float64        `json:"minHeight,omitempty"`
	Inputs    []DocumentPort `json:"inputs,omitempty"`
	Outputs   []DocumentPort `json:"outputs,omitempty"`
}

// DocumentPort is one port of a persisted node.
type DocumentPort struct {
	ID             string `json:"id"`
	Name           string `json:"name,omitempty"`
	Dynamic        bool   `json:"dynamic,omitempty"`
	Hidden         bool   `json:"hidden,omitempty"`
	MaxConnections int    `json:"maxConnections,omitempty"`
}

// DocumentConnection references ports by their persisted ids.
type DocumentConnection struct {
	ID           string `json:"id"`
	SourcePortID string `json:"sourcePortId"`
	TargetPortID string `json:"targetPortId"`
}

// DocumentNote is a persisted sticky note.
type DocumentNote struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Text   string  `json:"text,omitempty"`
}

// DocumentViewState is the persisted viewport configuration.
type DocumentViewState struct {
	Scale      float64 `json:"scale"`
	OffsetX    float64 `json:"offsetX"`
	OffsetY    float64 `json:"offsetY"`
	GridSize   float64 `json:"gridSize"`
	SnapToGrid bool    `json:"snapToGrid"`
	ShowGrid   bool    `json:"showGrid"`
}

// Snapshot deep-copies the editor into a Document. The copy is built with
// the explicit per-entity clone path, never by serializing live objects, so
// history and clipboard consumers can hold it across arbitrary mutations.
func (ed *Editor) Snapshot() *Document {
	g := ed.graph
	doc := &Document{}

	for _, n := range g.NodesInOrder() {
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:        n.ID,
			Kind:      n.Kind,
			Label:     n.Label,
			X:         n.Position.X,
			Y:         n.Position.Y,
			Width:     n.Width,
			Height:    n.Height,
			MinWidth:  n.MinWidth,
			MinHeight: n.MinHeight,
			Inputs:    documentPorts(g, n, PortInput),
			Outputs:   documentPorts(g, n, PortOutput),
		})
	}
	for _, c := range g.ConnectionsInOrder() {
		doc.Connections = append(doc.Connections, DocumentConnection{
			ID:           c.ID,
			SourcePortID: c.SourcePortID,
			TargetPortID: c.TargetPortID,
		})
	}
	for _, s := range g.NotesInOrder() {
		doc.StickyNotes = append(doc.StickyNotes, DocumentNote{
			ID:     s.ID,
			X:      s.Position.X,
			Y:      s.Position.Y,
			Width:  s.Width,
			Height: s.Height,
			Text:   s.Text,
		})
	}

	v := ed.view.State()
	doc.ViewState = DocumentViewState{
		Scale:      v.Scale,
		OffsetX:    v.Offset.X,
		OffsetY:    v.Offset.Y,
		GridSize:   v.GridSize,
		SnapToGrid: v.SnapToGrid,
		ShowGrid:   v.ShowGrid,
	}
	return doc
}

func documentPorts(g *Graph, n *Node, dir PortDirection) []DocumentPort {
	var out []DocumentPort
	for _, pid := range n.PortIDs(dir) {
		p := g.Port(pid)
		out = append(out, DocumentPort{
			ID:             p.ID,
			Name:           p.Name,
			Dynamic:        p.Dynamic,
			Hidden:         p.Hidden,
			MaxConnections: p.MaxConnections,
		})
	}
	return out
}

// SaveDocument serializes the editor to JSON.
func (ed *Editor) SaveDocument() ([]byte, error) {
	data, err := json.MarshalIndent(ed.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument parses persisted JSON into a Document without applying it.
func UnmarshalDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// LoadDocument parses and restores a persisted editor state.
func (ed *Editor) LoadDocument(data []byte) error {
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return err
	}
	return ed.Restore(doc)
}

// Restore replaces the editor contents with the document, replaying every
// entity through the validated constructors. Connections whose ports cannot
// be resolved, or that fail validation, are dropped rather than injected.
// Entity ids are regenerated; geometry and structure are preserved.
func (ed *Editor) Restore(doc *Document) error {
	g := ed.graph
	ed.sel.Clear()
	g.clear()

	// Rehydrate with snapping off so stored geometry lands verbatim; the
	// document's own view state is applied at the end.
	ed.view.SetState(ViewState{Scale: 1, GridSize: doc.ViewState.GridSize})

	// Maps persisted port ids to regenerated ones.
	portIDs := make(map[string]string)

	for _, dn := range doc.Nodes {
		def := NodeDefinition{
			Kind:      dn.Kind,
			Label:     dn.Label,
			Width:     dn.Width,
			Height:    dn.Height,
			MinWidth:  dn.MinWidth,
			MinHeight: dn.MinHeight,
		}
		for _, dp := range dn.Inputs {
			if !dp.Dynamic {
				def.Inputs = append(def.Inputs, portDefOf(dp, PortInput))
			}
		}
		for _, dp := range dn.Outputs {
			if !dp.Dynamic {
				def.Outputs = append(def.Outputs, portDefOf(dp, PortOutput))
			}
		}
		n, err := g.CreateNode(def, Point{X: dn.X, Y: dn.Y})
		if err != nil {
			return fmt.Errorf("restore node %s: %w", dn.ID, err)
		}
		for _, dp := range dn.Inputs {
			if dp.Dynamic {
				if _, err := g.AddPort(n.ID, portDefOf(dp, PortInput)); err != nil {
					return fmt.Errorf("restore port %s: %w", dp.ID, err)
				}
			}
		}
		for _, dp := range dn.Outputs {
			if dp.Dynamic {
				if _, err := g.AddPort(n.ID, portDefOf(dp, PortOutput)); err != nil {
					return fmt.Errorf("restore port %s: %w", dp.ID, err)
				}
			}
		}
		// PortIDs enumerates fixed-then-dynamic, matching the document order.
		mapPortIDs(portIDs, dn.Inputs, n.PortIDs(PortInput))
		mapPortIDs(portIDs, dn.Outputs, n.PortIDs(PortOutput))
	}

	for _, dc := range doc.Connections {
		src, okSrc := portIDs[dc.SourcePortID]
		dst, okDst := portIDs[dc.TargetPortID]
		if !okSrc || !okDst {
			continue // dangling reference in stale data
		}
		if _, err := g.CreateConnection(src, dst); err != nil {
			continue // declined; invariants win over stored data
		}
	}

	for _, dn := range doc.StickyNotes {
		s, err := g.CreateNote(Point{X: dn.X, Y: dn.Y}, dn.Text)
		if err != nil {
			return fmt.Errorf("restore note %s: %w", dn.ID, err)
		}
		_ = g.ResizeNote(s.ID, Rect{X: dn.X, Y: dn.Y, Width: dn.Width, Height: dn.Height})
	}

	ed.view.SetState(ViewState{
		Scale:      doc.ViewState.Scale,
		Offset:     Point{X: doc.ViewState.OffsetX, Y: doc.ViewState.OffsetY},
		GridSize:   doc.ViewState.GridSize,
		SnapToGrid: doc.ViewState.SnapToGrid,
		ShowGrid:   doc.ViewState.ShowGrid,
	})
	return nil
}

func portDefOf(dp DocumentPort, dir PortDirection) PortDef {
	return PortDef{
		Name:           dp.Name,
		Direction:      dir,
		MaxConnections: dp.MaxConnections,
		Hidden:         dp.Hidden,
	}
}

func mapPortIDs(dst map[string]string, persisted []DocumentPort, live []string) {
	for i, dp := range persisted {
		if i < len(live) {
			dst[dp.ID] = live[i]
		}
	}
}

// clear resets the store to empty without per-entity events. Only used by
// Restore, which follows with a full render request via SetState.
func (g *Graph) clear() {
	g.nodes = make(map[string]*Node)
	g.ports = make(map[string]*Port)
	g.conns = make(map[string]*Connection)
	g.notes = make(map[string]*StickyNote)
	g.nodeOrder = nil
	g.noteOrder = nil
	g.connOrder = nil
	g.portConns = make(map[string][]string)
}

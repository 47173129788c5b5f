package loom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedEditor builds an editor with two wired nodes, a dynamic port, a hidden
// port, and a sticky note, plus a non-default view state.
func seedEditor(t *testing.T) *Editor {
	t.Helper()
	ed := NewEditor(DefaultOptions())
	ed.Viewport().SetSurfaceSize(800, 600)
	g := ed.Graph()

	src, err := g.CreateNode(sourceDef(), Point{X: 100, Y: 100})
	require.NoError(t, err)
	proc, err := g.CreateNode(procDef(), Point{X: 400, Y: 80})
	require.NoError(t, err)

	dyn, err := g.AddPort(proc.ID, PortDef{Name: "dyn", Direction: PortInput, MaxConnections: 3})
	require.NoError(t, err)
	require.NoError(t, g.SetPortHidden(proc.PortIDs(PortInput)[1], true))

	_, err = g.CreateConnection(src.PortIDs(PortOutput)[0], proc.PortIDs(PortInput)[0])
	require.NoError(t, err)
	_, err = g.CreateConnection(src.PortIDs(PortOutput)[0], dyn.ID)
	require.NoError(t, err)

	_, err = g.CreateNote(Point{X: 120, Y: 400}, "remember this")
	require.NoError(t, err)

	ed.Viewport().SetState(ViewState{
		Scale:    1.5,
		Offset:   Point{X: 40, Y: -25},
		GridSize: 25, SnapToGrid: true, ShowGrid: true,
	})
	return ed
}

func TestDocumentRoundTrip(t *testing.T) {
	ed := seedEditor(t)
	data, err := ed.SaveDocument()
	require.NoError(t, err)

	other := NewEditor(DefaultOptions())
	other.Viewport().SetSurfaceSize(800, 600)
	require.NoError(t, other.LoadDocument(data))

	g := other.Graph()
	nodes := g.NodesInOrder()
	require.Len(t, nodes, 2)

	src, proc := nodes[0], nodes[1]
	assert.Equal(t, "test/source", src.Kind)
	assert.Equal(t, "test/proc", proc.Kind)
	assert.Equal(t, Point{X: 100, Y: 100}, src.Position)
	assert.Equal(t, Point{X: 400, Y: 80}, proc.Position)

	// Port structure survives: two fixed inputs plus the dynamic one.
	ins := proc.PortIDs(PortInput)
	require.Len(t, ins, 3)
	assert.True(t, g.Port(ins[1]).Hidden, "hidden flag must survive")
	dyn := g.Port(ins[2])
	assert.True(t, dyn.Dynamic)
	assert.Equal(t, "dyn", dyn.Name)
	assert.Equal(t, 3, dyn.MaxConnections)

	// Both connections rewired against the regenerated port ids.
	conns := g.ConnectionsInOrder()
	require.Len(t, conns, 2)
	for _, c := range conns {
		assert.Equal(t, src.ID, c.SourceNodeID)
		assert.Equal(t, proc.ID, c.TargetNodeID)
	}

	notes := g.NotesInOrder()
	require.Len(t, notes, 1)
	assert.Equal(t, "remember this", notes[0].Text)

	v := other.Viewport().State()
	assert.Equal(t, 1.5, v.Scale)
	assert.Equal(t, Point{X: 40, Y: -25}, v.Offset)
	assert.Equal(t, 25.0, v.GridSize)
	assert.True(t, v.SnapToGrid)
}

func TestRestoreRegeneratesIDs(t *testing.T) {
	ed := seedEditor(t)
	doc := ed.Snapshot()

	other := NewEditor(DefaultOptions())
	require.NoError(t, other.Restore(doc))

	for i, n := range other.Graph().NodesInOrder() {
		assert.NotEqual(t, doc.Nodes[i].ID, n.ID, "node ids are regenerated on load")
	}
}

func TestRestoreDropsDanglingConnections(t *testing.T) {
	ed := seedEditor(t)
	doc := ed.Snapshot()
	doc.Connections = append(doc.Connections, DocumentConnection{
		ID:           "stale",
		SourcePortID: "no-such-port",
		TargetPortID: doc.Nodes[1].Inputs[0].ID,
	})

	other := NewEditor(DefaultOptions())
	require.NoError(t, other.Restore(doc))
	assert.Len(t, other.Graph().ConnectionsInOrder(), 2,
		"the dangling connection is dropped, valid ones survive")
}

func TestRestoreDropsDeclinedConnections(t *testing.T) {
	ed := seedEditor(t)
	doc := ed.Snapshot()
	// Duplicate an existing pairing; replay must decline it silently.
	doc.Connections = append(doc.Connections, doc.Connections[0])
	doc.Connections[len(doc.Connections)-1].ID = "dup"

	other := NewEditor(DefaultOptions())
	require.NoError(t, other.Restore(doc))
	assert.Len(t, other.Graph().ConnectionsInOrder(), 2)
}

func TestSnapshotIsIndependentOfLaterMutations(t *testing.T) {
	ed := seedEditor(t)
	doc := ed.Snapshot()
	wantNodes := len(doc.Nodes)
	wantX := doc.Nodes[0].X

	g := ed.Graph()
	require.NoError(t, g.MoveNode(g.NodesInOrder()[0].ID, Point{X: 999, Y: 999}))
	require.NoError(t, g.DeleteNode(g.NodesInOrder()[1].ID))

	assert.Len(t, doc.Nodes, wantNodes, "snapshot must not track the live graph")
	assert.Equal(t, wantX, doc.Nodes[0].X)

	// Restoring the snapshot brings the pre-mutation state back.
	require.NoError(t, ed.Restore(doc))
	nodes := ed.Graph().NodesInOrder()
	require.Len(t, nodes, wantNodes)
	assert.Equal(t, Point{X: 100, Y: 100}, nodes[0].Position)
}

func TestUnmarshalDocumentRejectsGarbage(t *testing.T) {
	_, err := UnmarshalDocument([]byte("{not json"))
	assert.Error(t, err)
}

func TestRestoreClearsSelection(t *testing.T) {
	ed := seedEditor(t)
	ed.Selection().Replace(ed.Graph().NodesInOrder()[0].ID)
	doc := ed.Snapshot()

	require.NoError(t, ed.Restore(doc))
	assert.Zero(t, ed.Selection().Len(), "stale ids must not survive a restore")
}

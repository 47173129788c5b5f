package loom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func procDef() NodeDefinition {
	return NodeDefinition{
		Kind: "test/proc", Label: "Proc",
		Width: 160, Height: 120,
		Inputs: []PortDef{
			{Name: "a", Direction: PortInput},
			{Name: "b", Direction: PortInput},
		},
		Outputs: []PortDef{
			{Name: "out", Direction: PortOutput},
		},
	}
}

func sourceDef() NodeDefinition {
	return NodeDefinition{
		Kind: "test/source", Label: "Source",
		Width: 120, Height: 90,
		Outputs: []PortDef{
			{Name: "out", Direction: PortOutput},
		},
	}
}

func sinkDef() NodeDefinition {
	return NodeDefinition{
		Kind: "test/sink", Label: "Sink",
		Width: 120, Height: 90,
		Inputs: []PortDef{
			{Name: "in", Direction: PortInput},
		},
	}
}

func mustConnect(t *testing.T, g *Graph, from, to *Node) *Connection {
	t.Helper()
	c, err := g.CreateConnection(from.PortIDs(PortOutput)[0], to.PortIDs(PortInput)[0])
	require.NoError(t, err)
	return c
}

func TestCreateNodeInstantiatesFixedPorts(t *testing.T) {
	g := NewGraph(nil)
	n, err := g.CreateNode(procDef(), Point{X: 10, Y: 20})
	require.NoError(t, err)

	assert.Equal(t, "test/proc", n.Kind)
	assert.Equal(t, Point{X: 10, Y: 20}, n.Position)
	assert.Len(t, n.PortIDs(PortInput), 2)
	assert.Len(t, n.PortIDs(PortOutput), 1)

	in := g.Port(n.PortIDs(PortInput)[0])
	require.NotNil(t, in)
	assert.Equal(t, PortInput, in.Direction)
	assert.Equal(t, 1, in.MaxConnections, "inputs default to single-connection")
	assert.False(t, in.Dynamic)

	out := g.Port(n.PortIDs(PortOutput)[0])
	require.NotNil(t, out)
	assert.Equal(t, 0, out.MaxConnections, "outputs default to unlimited")
}

func TestCreateNodeRejectsNonFinitePosition(t *testing.T) {
	g := NewGraph(nil)
	_, err := g.CreateNode(procDef(), Point{X: math.Inf(1), Y: 2})
	assert.ErrorIs(t, err, ErrNonFinitePoint)
	assert.Empty(t, g.NodesInOrder())
}

func TestCreateNodeGrowsToPortMinimum(t *testing.T) {
	g := NewGraph(nil)
	def := procDef()
	def.Width = 10
	def.Height = 10
	n, err := g.CreateNode(def, Point{})
	require.NoError(t, err)

	// Two visible inputs dominate the minimum height.
	assert.Equal(t, baseMinWidth, n.Width)
	assert.Equal(t, baseMinHeight+2*PortSpacing, n.Height)
}

func TestMoveNodeSnapsToGrid(t *testing.T) {
	g := NewGraph(nil)
	g.SetGridSource(func() (float64, bool) { return 20, true })
	n, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)

	require.NoError(t, g.MoveNode(n.ID, Point{X: 31, Y: 49}))
	assert.Equal(t, Point{X: 40, Y: 40}, n.Position)

	assert.ErrorIs(t, g.MoveNode("missing", Point{}), ErrUnknownEntity)
}

func TestResizeNodeNormalizesSnapsAndClamps(t *testing.T) {
	g := NewGraph(nil)
	g.SetGridSource(func() (float64, bool) { return 10, true })
	n, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)

	// Negative extents are normalized before snapping and clamping.
	require.NoError(t, g.ResizeNode(n.ID, Rect{X: 203, Y: 101, Width: -180, Height: -120}))
	r := n.Rect()
	assert.Equal(t, Rect{X: 20, Y: -20, Width: 180, Height: 120}, r)

	// Below-minimum requests clamp, never fail.
	require.NoError(t, g.ResizeNode(n.ID, Rect{X: 0, Y: 0, Width: 1, Height: 1}))
	minW, minH, err := g.MinNodeSize(n.ID)
	require.NoError(t, err)
	assert.Equal(t, minW, n.Width)
	assert.GreaterOrEqual(t, n.Height, minH)
}

func TestResizeNodeIsIdempotent(t *testing.T) {
	g := NewGraph(nil)
	g.SetGridSource(func() (float64, bool) { return 7, true })
	n, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)

	req := Rect{X: 33, Y: -12, Width: 95, Height: 141}
	require.NoError(t, g.ResizeNode(n.ID, req))
	first := n.Rect()
	require.NoError(t, g.ResizeNode(n.ID, req))
	assert.Equal(t, first, n.Rect(), "applying the same rect twice must not drift")
}

func TestDeleteNodeCascades(t *testing.T) {
	g := NewGraph(nil)
	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	dst, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	c := mustConnect(t, g, src, dst)

	srcPort := src.PortIDs(PortOutput)[0]
	require.NoError(t, g.DeleteNode(src.ID))

	assert.Nil(t, g.Node(src.ID))
	assert.Nil(t, g.Port(srcPort))
	assert.Nil(t, g.Connection(c.ID))
	assert.Empty(t, g.PortConnections(dst.PortIDs(PortInput)[0]))
	assert.Equal(t, KindNone, g.KindOf(src.ID))
}

func TestDeleteNodesIgnoresUnknownIDs(t *testing.T) {
	g := NewGraph(nil)
	n, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)
	g.DeleteNodes([]string{"nope", n.ID, "also-nope"})
	assert.Empty(t, g.NodesInOrder())
}

func TestAddAndRemoveDynamicPort(t *testing.T) {
	g := NewGraph(nil)
	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	dst, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)

	p, err := g.AddPort(dst.ID, PortDef{Name: "extra", Direction: PortInput})
	require.NoError(t, err)
	assert.True(t, p.Dynamic)
	// Fixed ports enumerate before dynamic ones.
	ids := dst.PortIDs(PortInput)
	require.Len(t, ids, 2)
	assert.Equal(t, p.ID, ids[1])

	c, err := g.CreateConnection(src.PortIDs(PortOutput)[0], p.ID)
	require.NoError(t, err)

	require.NoError(t, g.RemovePort(p.ID))
	assert.Nil(t, g.Port(p.ID))
	assert.Nil(t, g.Connection(c.ID), "removing a port cascades to its connections")

	assert.ErrorIs(t, g.RemovePort(dst.PortIDs(PortInput)[0]), ErrFixedPort)
}

func TestSetPortHiddenCascadesConnections(t *testing.T) {
	g := NewGraph(nil)
	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	dst, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	c := mustConnect(t, g, src, dst)

	in := dst.PortIDs(PortInput)[0]
	require.NoError(t, g.SetPortHidden(in, true))

	assert.Nil(t, g.Connection(c.ID), "hiding a port deletes its connections")
	_, ok := g.PortPosition(in)
	assert.False(t, ok, "hidden ports have no position")

	// Hidden ports refuse new connections outright.
	_, err = g.CreateConnection(src.PortIDs(PortOutput)[0], in)
	reason, ok := DeclineReason(err)
	require.True(t, ok)
	assert.Equal(t, DeclineHiddenPort, reason)
}

func TestPortPositionFormula(t *testing.T) {
	g := NewGraph(nil)
	def := NodeDefinition{
		Kind: "test/multi", Width: 200, Height: 160,
		Inputs: []PortDef{
			{Name: "i0", Direction: PortInput},
			{Name: "i1", Direction: PortInput, Hidden: true},
			{Name: "i2", Direction: PortInput},
		},
		Outputs: []PortDef{
			{Name: "o0", Direction: PortOutput},
		},
	}
	n, err := g.CreateNode(def, Point{X: 100, Y: 50})
	require.NoError(t, err)
	ins := n.PortIDs(PortInput)
	require.Len(t, ins, 3)

	// First visible input sits at the left edge, half a slot below the header.
	p0, ok := g.PortPosition(ins[0])
	require.True(t, ok)
	assert.Equal(t, Point{X: 100, Y: 50 + HeaderHeight + PortSpacing*0.5}, p0)

	// The hidden port between them contributes nothing to the ordinal.
	p2, ok := g.PortPosition(ins[2])
	require.True(t, ok)
	assert.Equal(t, Point{X: 100, Y: 50 + HeaderHeight + PortSpacing*1.5}, p2)

	// Outputs anchor at the right edge.
	out, ok := g.PortPosition(n.PortIDs(PortOutput)[0])
	require.True(t, ok)
	assert.Equal(t, Point{X: 300, Y: 50 + HeaderHeight + PortSpacing*0.5}, out)

	// Unhiding restores position and shifts the following ordinal.
	require.NoError(t, g.SetPortHidden(ins[1], false))
	p2, ok = g.PortPosition(ins[2])
	require.True(t, ok)
	assert.Equal(t, 50+HeaderHeight+PortSpacing*2.5, p2.Y)
}

func TestConnectionDeclineReasons(t *testing.T) {
	g := NewGraph(nil)
	proc, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)
	src, err := g.CreateNode(sourceDef(), Point{X: 300})
	require.NoError(t, err)
	src2, err := g.CreateNode(sourceDef(), Point{X: 600})
	require.NoError(t, err)

	procIn := proc.PortIDs(PortInput)[0]
	procOut := proc.PortIDs(PortOutput)[0]
	srcOut := src.PortIDs(PortOutput)[0]
	src2Out := src2.PortIDs(PortOutput)[0]

	decline := func(t *testing.T, err error, want ConnectDecline) {
		t.Helper()
		reason, ok := DeclineReason(err)
		require.True(t, ok, "expected a decline, got %v", err)
		assert.Equal(t, want, reason)
	}

	_, err = g.CreateConnection(procOut, procIn)
	decline(t, err, DeclineSelfConnection)

	_, err = g.CreateConnection(srcOut, src2Out)
	decline(t, err, DeclineWrongDirection)

	_, err = g.CreateConnection(procIn, srcOut)
	decline(t, err, DeclineWrongDirection)

	c, err := g.CreateConnection(srcOut, procIn)
	require.NoError(t, err)
	_, err = g.CreateConnection(srcOut, procIn)
	decline(t, err, DeclineDuplicate)

	// procIn defaults to max 1 incoming; a second source is refused.
	_, err = g.CreateConnection(src2Out, procIn)
	decline(t, err, DeclineTargetCapacity)

	// The existing connection survives every decline.
	assert.NotNil(t, g.Connection(c.ID))
	assert.Len(t, g.ConnectionsInOrder(), 1)

	_, err = g.CreateConnection("missing", procIn)
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestSourceCapacityLimitsOutput(t *testing.T) {
	g := NewGraph(nil)
	def := sourceDef()
	def.Outputs[0].MaxConnections = 1
	src, err := g.CreateNode(def, Point{})
	require.NoError(t, err)
	a, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	b, err := g.CreateNode(sinkDef(), Point{X: 600})
	require.NoError(t, err)

	mustConnect(t, g, src, a)
	_, err = g.CreateConnection(src.PortIDs(PortOutput)[0], b.PortIDs(PortInput)[0])
	reason, ok := DeclineReason(err)
	require.True(t, ok)
	assert.Equal(t, DeclineSourceCapacity, reason)
}

func TestUnlimitedOutputFansOut(t *testing.T) {
	g := NewGraph(nil)
	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	a, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	b, err := g.CreateNode(sinkDef(), Point{X: 600})
	require.NoError(t, err)

	mustConnect(t, g, src, a)
	mustConnect(t, g, src, b)
	assert.Len(t, g.PortConnections(src.PortIDs(PortOutput)[0]), 2)
}

func TestDeleteConnectionUpdatesIndex(t *testing.T) {
	g := NewGraph(nil)
	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	dst, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	c := mustConnect(t, g, src, dst)

	require.NoError(t, g.DeleteConnection(c.ID))
	assert.Empty(t, g.PortConnections(src.PortIDs(PortOutput)[0]))
	assert.Empty(t, g.ConnectionsInOrder())
	assert.ErrorIs(t, g.DeleteConnection(c.ID), ErrUnknownEntity)

	// The input slot is free again after the delete.
	mustConnect(t, g, src, dst)
}

func TestStickyNoteLifecycle(t *testing.T) {
	g := NewGraph(nil)
	s, err := g.CreateNote(Point{X: 5, Y: 6}, "hello")
	require.NoError(t, err)
	assert.Equal(t, KindNote, g.KindOf(s.ID))

	require.NoError(t, g.MoveNote(s.ID, Point{X: 50, Y: 60}))
	assert.Equal(t, Point{X: 50, Y: 60}, s.Position)

	require.NoError(t, g.ResizeNote(s.ID, Rect{X: 0, Y: 0, Width: 10, Height: 10}))
	assert.Equal(t, noteMinSize, s.Width)
	assert.Equal(t, noteMinSize, s.Height)

	require.NoError(t, g.SetNoteText(s.ID, "edited"))
	assert.Equal(t, "edited", s.Text)

	require.NoError(t, g.DeleteNote(s.ID))
	assert.Nil(t, g.Note(s.ID))
	assert.ErrorIs(t, g.DeleteNote(s.ID), ErrUnknownEntity)
}

func TestGraphChangeEventsForDeleteCascade(t *testing.T) {
	hub := NewEventHub()
	g := NewGraph(hub)
	var ops []GraphOp
	hub.OnGraphChange(func(c GraphChange) { ops = append(ops, c.Op) })

	src, err := g.CreateNode(sourceDef(), Point{})
	require.NoError(t, err)
	dst, err := g.CreateNode(sinkDef(), Point{X: 300})
	require.NoError(t, err)
	mustConnect(t, g, src, dst)

	ops = nil
	require.NoError(t, g.DeleteNode(src.ID))
	assert.Equal(t, []GraphOp{OpConnectionDeleted, OpNodeDeleted}, ops,
		"cascaded connection deletes fire before the node delete")
}

func TestNodeCloneIsDeep(t *testing.T) {
	g := NewGraph(nil)
	n, err := g.CreateNode(procDef(), Point{})
	require.NoError(t, err)
	_, err = g.AddPort(n.ID, PortDef{Name: "dyn", Direction: PortInput})
	require.NoError(t, err)

	c := n.Clone()
	c.dynamicInputs[0] = "mutated"
	assert.NotEqual(t, n.dynamicInputs[0], c.dynamicInputs[0])
	assert.Equal(t, n.ID, c.ID)
}

// Package loom is the coordinate and interaction engine for a 2D node
// diagram editor built on [Ebitengine].
//
// Loom owns the viewport transform, the graph of nodes, ports, and
// connections, geometric hit-testing, and the pointer state machine that
// turns raw pointer and wheel events into validated graph mutations:
// move, resize, box-select, connect, reconnect, pan, and zoom.
//
// # Quick start
//
// Create an [Editor], feed it input every frame, and draw it:
//
//	ed := loom.NewEditor(loom.DefaultOptions())
//	ed.Graph().CreateNode(def, loom.Point{X: 100, Y: 100})
//
//	type Game struct{ ed *loom.Editor }
//
//	func (g *Game) Update() error              { g.ed.Update(); return nil }
//	func (g *Game) Draw(screen *ebiten.Image)  { g.ed.Draw(screen) }
//	func (g *Game) Layout(w, h int) (int, int) { g.ed.Viewport().SetSurfaceSize(float64(w), float64(h)); return w, h }
//
// # Coordinate spaces
//
// Node positions live in world (canvas) space. Pointer events arrive in
// screen (client) space. The [Viewport] converts between the two with a
// scale+offset transform; zooming keeps the world point under the cursor
// fixed.
//
// # Structural edits
//
// Connections are only ever created through [Graph.CreateConnection], which
// enforces direction, capacity, visibility, and duplication rules and
// returns an explicit decline reason instead of an error-free partial edit.
// The interaction machine commits a dragged connection only when the
// release point still resolves to the port that was valid on the last move.
//
// Rendering is deliberately external: subscribe with [EventHub.OnBeforePaint]
// and use [Graph.PortPosition] and the paint-order accessors so visuals stay
// in lockstep with hit-testing.
//
// [Ebitengine]: https://ebitengine.org
package loom

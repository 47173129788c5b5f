package loom

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// paintCache holds the offscreen target the scene is painted into. Painting
// happens only when the viewport's dirty flag is set, so arbitrarily many
// mutation-triggered render requests coalesce into at most one paint per
// display refresh; clean frames just re-blit the cached image.
type paintCache struct {
	offscreen *ebiten.Image
}

var gridLineColor = color.RGBA{R: 0x3a, G: 0x3a, B: 0x42, A: 0xff}

// Draw paints the editor into screen. The paint order is the reverse of the
// hit-tester's priority: grid, then connections, nodes, and notes (painted
// by BeforePaint subscribers), topmost last. Call from your game's Draw.
func (ed *Editor) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	ed.view.SetSurfaceSize(float64(w), float64(h))

	pc := &ed.paint
	if pc.offscreen == nil || pc.offscreen.Bounds().Dx() != w || pc.offscreen.Bounds().Dy() != h {
		pc.offscreen = ebiten.NewImage(w, h)
		ed.view.RequestRender()
	}

	if ed.view.TakeRenderRequest() {
		pc.offscreen.Clear()
		view := ed.view.State()
		if view.ShowGrid {
			drawGrid(pc.offscreen, view)
		}
		ed.hub.emitBeforePaint(pc.offscreen, view)
	}
	screen.DrawImage(pc.offscreen, nil)
}

// drawGrid strokes the visible grid lines in screen space.
func drawGrid(target *ebiten.Image, view ViewState) {
	if view.GridSize <= 0 {
		return
	}
	b := target.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())
	step := view.GridSize * view.Scale
	if step < 4 {
		return // too dense to be useful
	}
	startX := math.Mod(view.Offset.X, step)
	if startX < 0 {
		startX += step
	}
	startY := math.Mod(view.Offset.Y, step)
	if startY < 0 {
		startY += step
	}
	for x := startX; x < w; x += step {
		vector.StrokeLine(target, float32(x), 0, float32(x), float32(h), 1, gridLineColor, false)
	}
	for y := startY; y < h; y += step {
		vector.StrokeLine(target, 0, float32(y), float32(w), float32(y), 1, gridLineColor, false)
	}
}

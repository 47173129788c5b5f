package loom

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// inputReader tracks the previous frame's pointer state so button edges and
// cursor motion can be detected from ebiten's polled input.
type inputReader struct {
	prevCursor Point
	prevDown   [3]bool // indexed by MouseButton
	inside     bool
	started    bool
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

var ebitenButtons = [3]ebiten.MouseButton{
	MouseButtonLeft:   ebiten.MouseButtonLeft,
	MouseButtonRight:  ebiten.MouseButtonRight,
	MouseButtonMiddle: ebiten.MouseButtonMiddle,
}

// Update polls ebiten input once per tick and feeds the interaction machine:
// pointer motion first, then button edges, then the wheel. It also advances
// any view animation. Call from your game's Update.
func (ed *Editor) Update() {
	mods := readModifiers()

	cx, cy := ebiten.CursorPosition()
	cursor := Point{X: float64(cx), Y: float64(cy)}

	w, h := ed.view.SurfaceSize()
	inside := w <= 0 || h <= 0 ||
		(cursor.X >= 0 && cursor.X < w && cursor.Y >= 0 && cursor.Y < h)

	r := &ed.input
	if !r.started {
		r.started = true
		r.prevCursor = cursor
		r.inside = inside
	}

	if !inside && r.inside {
		ed.machine.PointerLeave()
	}
	r.inside = inside

	if inside {
		if cursor != r.prevCursor {
			ed.machine.PointerMove(cursor, mods)
		}
		for b := MouseButtonLeft; b <= MouseButtonMiddle; b++ {
			down := ebiten.IsMouseButtonPressed(ebitenButtons[b])
			switch {
			case down && !r.prevDown[b]:
				ed.machine.PointerDown(cursor, b, mods)
			case !down && r.prevDown[b]:
				ed.machine.PointerUp(cursor, mods)
			}
			r.prevDown[b] = down
		}
		if _, yoff := ebiten.Wheel(); yoff != 0 {
			// Wheel up zooms in; the machine's convention is deltaY > 0 out.
			ed.machine.Wheel(-yoff, cursor)
		}
	}
	r.prevCursor = cursor

	ed.view.StepAnimations(float32(1.0 / float64(ebiten.TPS())))
}

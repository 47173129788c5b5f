package loom

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ViewState is the serializable portion of the viewport: zoom scale, the
// world-to-screen translation, and grid settings.
type ViewState struct {
	// Scale is the zoom factor (1.0 = 1 world unit per pixel).
	Scale float64
	// Offset is the screen-space position of the world origin.
	Offset Point
	// GridSize is the grid cell edge in world units.
	GridSize float64
	// SnapToGrid rounds moved/resized geometry to grid cells.
	SnapToGrid bool
	// ShowGrid asks the render bridge to paint grid lines.
	ShowGrid bool
}

// viewAnim holds active tweens for an animated scale/offset change.
type viewAnim struct {
	scale   *gween.Tween
	offsetX *gween.Tween
	offsetY *gween.Tween
	done    bool
}

// Viewport owns the client↔canvas transform, pan/zoom math, and the
// render-request dirty flag.
type Viewport struct {
	state    ViewState
	minScale float64
	maxScale float64
	zoomStep float64

	// surfaceW/surfaceH are the client dimensions of the interactive
	// surface, needed by ZoomToFit and pointer-leave detection.
	surfaceW float64
	surfaceH float64

	renderRequested bool
	anim            *viewAnim
}

// NewViewport creates a viewport from the given options at scale 1, origin
// offset, with a pending initial render.
func NewViewport(opts Options) *Viewport {
	return &Viewport{
		state: ViewState{
			Scale:      1.0,
			GridSize:   opts.GridSize,
			SnapToGrid: opts.SnapToGrid,
			ShowGrid:   opts.ShowGrid,
		},
		minScale:        opts.MinScale,
		maxScale:        opts.MaxScale,
		zoomStep:        opts.ZoomStep,
		renderRequested: true,
	}
}

// State returns a copy of the current view state.
func (v *Viewport) State() ViewState {
	return v.state
}

// SetState replaces the view state wholesale (used by document rehydration),
// clamping scale to the configured bounds.
func (v *Viewport) SetState(s ViewState) {
	s.Scale = clamp(s.Scale, v.minScale, v.maxScale)
	if s.Scale == 0 {
		s.Scale = 1
	}
	v.state = s
	v.anim = nil
	v.RequestRender()
}

// SetSurfaceSize records the client dimensions of the interactive surface.
func (v *Viewport) SetSurfaceSize(w, h float64) {
	if w != v.surfaceW || h != v.surfaceH {
		v.surfaceW = w
		v.surfaceH = h
		v.RequestRender()
	}
}

// SurfaceSize returns the client dimensions last set with SetSurfaceSize.
func (v *Viewport) SurfaceSize() (w, h float64) {
	return v.surfaceW, v.surfaceH
}

// SetGrid updates grid settings.
func (v *Viewport) SetGrid(size float64, snap, show bool) {
	v.state.GridSize = size
	v.state.SnapToGrid = snap
	v.state.ShowGrid = show
	v.RequestRender()
}

// Snap rounds p to the nearest grid cell when snapping is enabled.
func (v *Viewport) Snap(p Point) Point {
	if !v.state.SnapToGrid {
		return p
	}
	return Point{X: snapTo(p.X, v.state.GridSize), Y: snapTo(p.Y, v.state.GridSize)}
}

// ClientToCanvas converts a screen-space point to world space.
func (v *Viewport) ClientToCanvas(p Point) Point {
	return Point{
		X: (p.X - v.state.Offset.X) / v.state.Scale,
		Y: (p.Y - v.state.Offset.Y) / v.state.Scale,
	}
}

// CanvasToClient converts a world-space point to screen space.
// Inverse of ClientToCanvas.
func (v *Viewport) CanvasToClient(p Point) Point {
	return Point{
		X: p.X*v.state.Scale + v.state.Offset.X,
		Y: p.Y*v.state.Scale + v.state.Offset.Y,
	}
}

// Pan translates the view by a screen-space delta. The delta is applied to
// the offset directly so panning speed matches pointer speed at any zoom.
func (v *Viewport) Pan(dxClient, dyClient float64) {
	v.anim = nil
	v.state.Offset.X += dxClient
	v.state.Offset.Y += dyClient
	v.RequestRender()
}

// Zoom applies a wheel delta centered on pivotClient. The world point under
// the pivot stays under it after the scale change. deltaY > 0 zooms out.
func (v *Viewport) Zoom(deltaY float64, pivotClient Point) {
	if deltaY == 0 {
		return
	}
	factor := v.zoomStep
	if deltaY > 0 {
		factor = 1 / v.zoomStep
	}
	v.zoomTo(v.state.Scale*factor, pivotClient)
}

// zoomTo sets the scale (clamped) while keeping pivotClient fixed.
func (v *Viewport) zoomTo(scale float64, pivotClient Point) {
	v.anim = nil
	newScale := clamp(scale, v.minScale, v.maxScale)
	if newScale == v.state.Scale {
		return
	}
	world := v.ClientToCanvas(pivotClient)
	v.state.Scale = newScale
	v.state.Offset.X = pivotClient.X - world.X*newScale
	v.state.Offset.Y = pivotClient.Y - world.Y*newScale
	v.RequestRender()
}

// ResetView restores scale 1 and the origin offset.
func (v *Viewport) ResetView() {
	v.anim = nil
	v.state.Scale = 1
	v.state.Offset = Point{}
	v.RequestRender()
}

// fitTarget computes the scale and offset that center rect in the surface
// with the given padding on every side.
func (v *Viewport) fitTarget(rect Rect, padding float64) (scale float64, offset Point) {
	rect = rect.Normalized()
	scale = v.maxScale
	if rect.Width > 0 {
		scale = math.Min(scale, (v.surfaceW-2*padding)/rect.Width)
	}
	if rect.Height > 0 {
		scale = math.Min(scale, (v.surfaceH-2*padding)/rect.Height)
	}
	scale = clamp(scale, v.minScale, v.maxScale)

	cx := rect.X + rect.Width/2
	cy := rect.Y + rect.Height/2
	offset = Point{
		X: v.surfaceW/2 - cx*scale,
		Y: v.surfaceH/2 - cy*scale,
	}
	return scale, offset
}

// ZoomToFit scales and offsets the view so rect fills the surface with the
// given padding, clamped to the scale bounds.
func (v *Viewport) ZoomToFit(rect Rect, padding float64) {
	v.anim = nil
	v.state.Scale, v.state.Offset = v.fitTarget(rect, padding)
	v.RequestRender()
}

// ZoomToFitAnimated tweens the view toward the ZoomToFit target over
// duration seconds. Any direct pan or zoom cancels the tween.
func (v *Viewport) ZoomToFitAnimated(rect Rect, padding float64, duration float32, easeFn ease.TweenFunc) {
	scale, offset := v.fitTarget(rect, padding)
	v.anim = &viewAnim{
		scale:   gween.New(float32(v.state.Scale), float32(scale), duration, easeFn),
		offsetX: gween.New(float32(v.state.Offset.X), float32(offset.X), duration, easeFn),
		offsetY: gween.New(float32(v.state.Offset.Y), float32(offset.Y), duration, easeFn),
	}
}

// ScrollTo tweens the view so the given world point ends up centered,
// keeping the current scale.
func (v *Viewport) ScrollTo(world Point, duration float32, easeFn ease.TweenFunc) {
	s := v.state.Scale
	v.anim = &viewAnim{
		offsetX: gween.New(float32(v.state.Offset.X), float32(v.surfaceW/2-world.X*s), duration, easeFn),
		offsetY: gween.New(float32(v.state.Offset.Y), float32(v.surfaceH/2-world.Y*s), duration, easeFn),
	}
}

// StepAnimations advances any in-flight view tween by dt seconds.
func (v *Viewport) StepAnimations(dt float32) {
	a := v.anim
	if a == nil {
		return
	}
	allDone := true
	if a.scale != nil {
		val, done := a.scale.Update(dt)
		v.state.Scale = float64(val)
		allDone = allDone && done
	}
	if a.offsetX != nil {
		val, done := a.offsetX.Update(dt)
		v.state.Offset.X = float64(val)
		allDone = allDone && done
	}
	if a.offsetY != nil {
		val, done := a.offsetY.Update(dt)
		v.state.Offset.Y = float64(val)
		allDone = allDone && done
	}
	if allDone {
		v.anim = nil
	}
	v.RequestRender()
}

// RequestRender marks the view dirty. Arbitrarily many requests between two
// paints coalesce into a single repaint.
func (v *Viewport) RequestRender() {
	v.renderRequested = true
}

// TakeRenderRequest reports whether a repaint is pending and clears the
// flag. Called once per display refresh by the render bridge.
func (v *Viewport) TakeRenderRequest() bool {
	r := v.renderRequested
	v.renderRequested = false
	return r
}

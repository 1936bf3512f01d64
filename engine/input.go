package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

const (
	// panPerPixel is the fraction of the orbit radius panned per dragged pixel.
	panPerPixel float32 = 0.0015
	// exposureStep is the multiplicative exposure change per key press.
	exposureStep float32 = 1.1
)

// inputState tracks the active mouse drag.
type inputState struct {
	mu       sync.Mutex
	dragging bool
	button   window.MouseButton
	lastX    int32
	lastY    int32
}

// bindInput routes window input to the viewer's camera controller and pipeline toggles.
func (e *engine) bindInput(w window.Window) {
	w.SetMouseDownCallback(e.onMouseDown)
	w.SetMouseUpCallback(e.onMouseUp)
	w.SetMouseMoveCallback(e.onMouseMove)
	w.SetScrollCallback(e.onScroll)
	w.SetKeyDownCallback(e.onKeyDown)
}

func (e *engine) onMouseDown(button window.MouseButton, x, y int32) {
	if button == window.MouseButtonRight {
		return
	}
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	e.input.dragging = true
	e.input.button = button
	e.input.lastX, e.input.lastY = x, y
}

func (e *engine) onMouseUp(button window.MouseButton, _, _ int32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	if e.input.dragging && e.input.button == button {
		e.input.dragging = false
	}
}

// onMouseMove orbits on a left drag and pans on a middle drag.
func (e *engine) onMouseMove(x, y int32) {
	e.input.mu.Lock()
	if !e.input.dragging {
		e.input.mu.Unlock()
		return
	}
	dx := float32(x - e.input.lastX)
	dy := float32(y - e.input.lastY)
	e.input.lastX, e.input.lastY = x, y
	button := e.input.button
	e.input.mu.Unlock()

	if dx == 0 && dy == 0 {
		return
	}
	ctrl := e.viewer.Camera().Controller()
	if ctrl == nil {
		return
	}
	switch button {
	case window.MouseButtonLeft:
		ctrl.Orbit(-dx, dy)
	case window.MouseButtonMiddle:
		scale := ctrl.Radius() * panPerPixel
		ctrl.Pan(-dx*scale, dy*scale)
	}
}

func (e *engine) onScroll(delta float32) {
	if ctrl := e.viewer.Camera().Controller(); ctrl != nil {
		ctrl.Zoom(delta)
	}
}

// onKeyDown handles the viewer's keyboard bindings.
func (e *engine) onKeyDown(keyCode uint32) {
	v := e.viewer
	ctrl := v.Camera().Controller()

	switch keyCode {
	case common.KeyT:
		v.SetAllowTAA(!v.AllowTAA())
	case common.KeyO:
		v.EnableSAO(!v.Config().Current().SAOEnabled)
	case common.KeyC:
		if _, _, err := v.Config().Update(func(c *config.PipelineConfig) { c.Correction = !c.Correction }); err != nil {
			common.Logger().Warn("correction toggle rejected", "error", err)
		}
	case common.KeyEqual, common.KeyMinus:
		exposure := v.Config().Current().Exposure
		if keyCode == common.KeyEqual {
			exposure *= exposureStep
		} else {
			exposure /= exposureStep
		}
		if err := v.SetExposure(exposure); err != nil {
			common.Logger().Warn("exposure change rejected", "error", err)
		}
	case common.KeyF:
		if ctrl != nil {
			ctrl.Frame(v.Scene().Bounds(), v.Camera().Fov())
		}
	case common.KeyLeft, common.KeyRight, common.KeyUp, common.KeyDown:
		if ctrl == nil {
			return
		}
		switch keyCode {
		case common.KeyLeft:
			ctrl.OrbitLeft()
		case common.KeyRight:
			ctrl.OrbitRight()
		case common.KeyUp:
			ctrl.OrbitUp()
		case common.KeyDown:
			ctrl.OrbitDown()
		}
	case common.KeyEsc:
		e.signalQuit()
	}
}

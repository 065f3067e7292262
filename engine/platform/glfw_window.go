package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/input"
)

// GLFWWindow implements core.Window and pushes events to the app via a handler.
// Pointer positions are reported in framebuffer pixels, the coordinate space
// the UI is laid out in.
type GLFWWindow struct {
	w    *glfw.Window
	onEv func(input.Event)
	geom geometry

	cursorX, cursorY float32
}

// geometry remembers the last position and size the window had while it
// was neither maximized nor moved off screen, which is what gets restored
// at the next start.
type geometry struct {
	x, y, w, h int
}

func (g *geometry) moved(x, y int, maximized bool) {
	if maximized || x < 0 || y < 0 {
		return
	}
	g.x, g.y = x, y
}

func (g *geometry) resized(w, h int, maximized bool) {
	if maximized || w <= 0 || h <= 0 {
		return
	}
	g.w, g.h = w, h
}

func (g geometry) config(maximized bool) core.WindowConfig {
	return core.WindowConfig{X: g.x, Y: g.y, Width: g.w, Height: g.h, Maximized: maximized}
}

var _ core.Window = (*GLFWWindow)(nil)

// Must be called on main thread before any GL calls.
func NewGLFWWindow(cfg core.Config, onEvent func(input.Event)) (*GLFWWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, err
	}

	// GL 3.3 core profile (Mac requires forward-compatible flag).
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)

	width, height := cfg.Size()
	win, err := glfw.CreateWindow(width, height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	if cfg.MinWidth > 0 || cfg.MinHeight > 0 {
		win.SetSizeLimits(minLimit(cfg.MinWidth), minLimit(cfg.MinHeight), glfw.DontCare, glfw.DontCare)
	}
	if g := cfg.Window; g != nil {
		win.SetPos(g.X, g.Y)
	}
	x, y := win.GetPos()
	geo := geometry{x: x, y: y, w: width, h: height}
	if g := cfg.Window; g != nil && g.Maximized {
		win.Maximize()
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}

	gw := &GLFWWindow{w: win, onEv: onEvent, geom: geo}

	// Callbacks -> translate to input.Event
	win.SetCloseCallback(func(*glfw.Window) { gw.emit(input.EventCloseRequested{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gw.emit(input.EventResize{W: w, H: h})
	})
	win.SetPosCallback(func(_ *glfw.Window, x, y int) { gw.geom.moved(x, y, gw.maximized()) })
	win.SetSizeCallback(func(_ *glfw.Window, w, h int) { gw.geom.resized(w, h, gw.maximized()) })
	win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		sx, sy := gw.scale()
		gw.cursorX, gw.cursorY = float32(x)*sx, float32(y)*sy
		gw.emit(input.EventMouseMove{X: gw.cursorX, Y: gw.cursorY})
	})
	win.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		btn, ok := translateButton(b)
		if !ok {
			return
		}
		gw.emit(input.EventMouseButton{
			Button: btn,
			Down:   action == glfw.Press,
			X:      gw.cursorX,
			Y:      gw.cursorY,
			Mods:   translateMods(mods),
		})
	})
	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		gw.emit(input.EventScroll{DX: float32(xoff), DY: float32(yoff), X: gw.cursorX, Y: gw.cursorY})
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		k := translateKey(key)
		if k == input.KeyUnknown {
			return
		}
		gw.emit(input.EventKey{Key: k, Down: action != glfw.Release, Mods: translateMods(mods)})
	})
	win.SetCharCallback(func(_ *glfw.Window, r rune) {
		gw.emit(input.EventChar{Rune: r})
	})

	return gw, nil
}

func (g *GLFWWindow) emit(ev input.Event) {
	if g.onEv != nil {
		g.onEv(ev)
	}
}

// scale maps window coordinates to framebuffer pixels.
func (g *GLFWWindow) scale() (float32, float32) {
	ww, wh := g.w.GetSize()
	fw, fh := g.w.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float32(fw) / float32(ww), float32(fh) / float32(wh)
}

// core.Window impl
func (g *GLFWWindow) PollEvents()                           { glfw.PollEvents() }
func (g *GLFWWindow) SwapBuffers()                          { g.w.SwapBuffers() }
func (g *GLFWWindow) ShouldClose() bool                     { return g.w.ShouldClose() }
func (g *GLFWWindow) RequestClose()                         { g.w.SetShouldClose(true) }
func (g *GLFWWindow) FramebufferSize() (int, int)           { return g.w.GetFramebufferSize() }
func (g *GLFWWindow) SetTitle(t string)                     { g.w.SetTitle(t) }
func (g *GLFWWindow) SetEventCallback(cb func(input.Event)) { g.onEv = cb }

// ClipboardString returns the system clipboard text.
func (g *GLFWWindow) ClipboardString() (s string, err error) {
	// glfw reports unexpected errors by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard: %v", r)
		}
	}()
	return g.w.GetClipboardString(), nil
}

func (g *GLFWWindow) SetClipboardString(s string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard: %v", r)
		}
	}()
	g.w.SetClipboardString(s)
	return nil
}

// Geometry reports the last normal position and size plus whether the
// window is maximized now.
func (g *GLFWWindow) Geometry() core.WindowConfig { return g.geom.config(g.maximized()) }

func (g *GLFWWindow) maximized() bool { return g.w.GetAttrib(glfw.Maximized) == glfw.True }

func minLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// Destroy closes the window and terminates GLFW.
func (g *GLFWWindow) Destroy() {
	g.w.Destroy()
	glfw.Terminate()
}

func translateButton(b glfw.MouseButton) (input.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return input.MouseLeft, true
	case glfw.MouseButtonRight:
		return input.MouseRight, true
	case glfw.MouseButtonMiddle:
		return input.MouseMiddle, true
	}
	return 0, false
}

var keys = map[glfw.Key]input.Key{
	glfw.KeyEscape:    input.KeyEscape,
	glfw.KeySpace:     input.KeySpace,
	glfw.KeyEnter:     input.KeyEnter,
	glfw.KeyKPEnter:   input.KeyEnter,
	glfw.KeyTab:       input.KeyTab,
	glfw.KeyBackspace: input.KeyBackspace,
	glfw.KeyDelete:    input.KeyDelete,
	glfw.KeyLeft:      input.KeyLeft,
	glfw.KeyRight:     input.KeyRight,
	glfw.KeyUp:        input.KeyUp,
	glfw.KeyDown:      input.KeyDown,
	glfw.KeyHome:      input.KeyHome,
	glfw.KeyEnd:       input.KeyEnd,
	glfw.KeyA:         input.KeyA,
	glfw.KeyC:         input.KeyC,
	glfw.KeyD:         input.KeyD,
	glfw.KeyP:         input.KeyP,
	glfw.KeyS:         input.KeyS,
	glfw.KeyV:         input.KeyV,
	glfw.KeyW:         input.KeyW,
	glfw.KeyX:         input.KeyX,
	glfw.KeyF3:        input.KeyF3,
}

func translateKey(k glfw.Key) input.Key {
	if key, ok := keys[k]; ok {
		return key
	}
	return input.KeyUnknown
}

func translateMods(m glfw.ModifierKey) input.Mod {
	var out input.Mod
	if m&glfw.ModShift != 0 {
		out |= input.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= input.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= input.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		out |= input.ModSuper
	}
	return out
}

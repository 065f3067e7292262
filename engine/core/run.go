package core

import (
	"io"
	"runtime"
	"time"

	"github.com/hubastard/arbor/engine/geom"
	"github.com/hubastard/arbor/engine/input"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/profiler"
	"github.com/hubastard/arbor/engine/render"
)

const (
	tick    = time.Second / 60
	maxStep = 10 // prevent spiral of death
)

// Run wires the platform window + renderer and executes the main loop.
// Renderers implementing io.Closer are closed on exit.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (render.Renderer, error)) error {
	// Graphics contexts require the main OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	win, err := newWindow(cfg)
	if err != nil {
		return err
	}

	rend, err := newRenderer(win, cfg)
	if err != nil {
		return err
	}
	if c, ok := rend.(io.Closer); ok {
		defer c.Close()
	}

	eng := NewEngine(win, rend, cfg)
	eng.app = app
	win.SetEventCallback(eng.handle)

	app.OnStart(eng)

	var (
		accum time.Duration
		prev  = time.Now()
	)
	for !win.ShouldClose() {
		now := time.Now()
		accum += now.Sub(prev)
		prev = now

		// Poll OS events (platform will emit via callbacks)
		win.PollEvents()

		steps := 0
		for accum >= tick && steps < maxStep {
			app.OnUpdate(eng, tick.Seconds())
			if eng.screen != nil {
				eng.screen.Update(eng, tick.Seconds())
			}
			accum -= tick
			steps++
		}
		if steps == maxStep {
			accum = 0
		}

		if err := eng.Frame(); err != nil {
			app.OnShutdown(eng)
			return err
		}
		win.SwapBuffers()
	}

	g := win.Geometry()
	eng.Config.Window = &g
	app.OnShutdown(eng)
	logging.Logger().Info("engine exit", "frames", eng.frames, "uptime", eng.Uptime())
	return nil
}

// handle feeds ev to the input state, then the app, then the tree.
func (e *Engine) handle(ev input.Event) {
	e.Input.Handle(ev)
	if e.app != nil && e.app.OnEvent(e, ev) {
		return
	}
	if e.Dispatcher != nil {
		e.Dispatcher.Dispatch(ev)
	}
}

// Frame lays out and emits the tree, lets the app append overlay commands
// and submits everything as one renderer frame. After a presented frame the
// current screen may hand over to the next one. A zero-sized framebuffer
// (minimized window) skips the frame.
func (e *Engine) Frame() error {
	w, h := e.Window.FramebufferSize()
	if w < 1 || h < 1 {
		return nil
	}
	vp := geom.Sz(float32(w), float32(h))

	e.list.Reset()
	if !e.root.IsZero() {
		end := profiler.Start("ui.Layout")
		e.Tree.Layout(e.root, vp)
		end()

		end = profiler.Start("ui.Emit")
		e.Tree.EmitTo(e.root, e.list)
		end()
	}
	if e.app != nil {
		e.app.OnRender(e, e.list)
	}

	end := profiler.Start("render.Submit")
	defer end()
	if err := e.Renderer.BeginFrame(vp); err != nil {
		return err
	}
	if err := e.Renderer.Submit(e.list.Commands()); err != nil {
		return err
	}
	if err := e.Renderer.Present(); err != nil {
		return err
	}
	e.frames++
	return e.advance()
}

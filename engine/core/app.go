package core

import (
	"time"

	"github.com/hubastard/arbor/engine/draw"
	"github.com/hubastard/arbor/engine/input"
	"github.com/hubastard/arbor/engine/render"
	"github.com/hubastard/arbor/engine/ui"
)

// App defines the application hooks.
type App interface {
	OnStart(e *Engine)                      // called once after window/renderer init
	OnUpdate(e *Engine, dt float64)         // called at a fixed tick (60Hz)
	OnRender(e *Engine, l *draw.List)       // append overlay commands after the tree
	OnEvent(e *Engine, ev input.Event) bool // return true to keep ev from the tree
	OnShutdown(e *Engine)                   // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window     Window
	Renderer   render.Renderer
	Tree       *ui.Tree
	Dispatcher *ui.Dispatcher
	Input      *input.State
	Config     Config

	app    App
	screen Screen
	root   ui.NodeID
	list   *draw.List
	frames uint64
	start  time.Time
}

// NewEngine wires a tree measuring with the renderer's font metrics.
func NewEngine(win Window, rend render.Renderer, cfg Config) *Engine {
	return &Engine{
		Window:   win,
		Renderer: rend,
		Tree:     ui.NewTree(rend.Metrics()),
		Input:    input.NewState(),
		Config:   cfg,
		list:     draw.NewList(256),
		start:    time.Now(),
	}
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// Frames is the number of frames presented.
func (e *Engine) Frames() uint64 { return e.frames }

func (e *Engine) Root() ui.NodeID { return e.root }

// SetRoot makes id the laid out, drawn and event-receiving root and creates
// a fresh dispatcher for it.
func (e *Engine) SetRoot(id ui.NodeID) {
	e.root = id
	e.Dispatcher = ui.NewDispatcher(e.Tree, id)
	if e.Window != nil {
		e.Dispatcher.Clipboard = e.Window.ClipboardString
		e.Dispatcher.SetClipboard = e.Window.SetClipboardString
	}
}

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(input.Event))
	ClipboardString() (string, error)
	SetClipboardString(s string) error
	// Geometry reports the window's position and size in screen coordinates.
	Geometry() WindowConfig
}

package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/hubastard/arbor/engine/core"
	"github.com/hubastard/arbor/engine/input"
)

func TestTranslateKey(t *testing.T) {
	tests := map[string]struct {
		in   glfw.Key
		want input.Key
	}{
		"escape":   {glfw.KeyEscape, input.KeyEscape},
		"keypad":   {glfw.KeyKPEnter, input.KeyEnter},
		"letter":   {glfw.KeyV, input.KeyV},
		"function": {glfw.KeyF3, input.KeyF3},
		"unmapped": {glfw.KeyF12, input.KeyUnknown},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := translateKey(tt.in); got != tt.want {
				t.Errorf("translateKey(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranslateMods(t *testing.T) {
	got := translateMods(glfw.ModControl | glfw.ModShift)
	if got != input.ModCtrl|input.ModShift {
		t.Errorf("translateMods() = %b", got)
	}
	if translateMods(0) != input.ModNone {
		t.Error("no modifiers translated to a modifier")
	}
}

func TestTranslateButton(t *testing.T) {
	if b, ok := translateButton(glfw.MouseButtonRight); !ok || b != input.MouseRight {
		t.Errorf("translateButton(right) = %v, %v", b, ok)
	}
	if _, ok := translateButton(glfw.MouseButton4); ok {
		t.Error("extra mouse buttons should be ignored")
	}
}

func TestGeometry_KeepsLastNormalBounds(t *testing.T) {
	g := geometry{x: 100, y: 80, w: 800, h: 600}

	g.resized(1024, 700, false)
	g.moved(50, 40, false)
	// Maximizing moves and resizes the window; neither is remembered.
	g.moved(0, 0, true)
	g.resized(1920, 1080, true)
	// Dragging partly off the left edge.
	g.moved(-20, 40, false)
	g.resized(0, 0, false)

	want := core.WindowConfig{X: 50, Y: 40, Width: 1024, Height: 700, Maximized: true}
	if got := g.config(true); got != want {
		t.Errorf("config() = %+v, want %+v", got, want)
	}
}

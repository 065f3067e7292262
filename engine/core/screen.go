package core

import (
	"fmt"

	"github.com/hubastard/arbor/engine/ui"
)

// Screen is one page of an application: a widget tree and its handlers.
// The Engine runs a single current screen and, after every presented frame,
// asks it which screen comes next.
type Screen interface {
	// Enter builds the screen's tree and returns its root.
	Enter(e *Engine) (ui.NodeID, error)
	Update(e *Engine, dt float64)
	// Next returns the screen for the following frame. Returning the
	// receiver keeps it current.
	Next(e *Engine) (Screen, error)
	// Leave runs before the screen's tree is removed.
	Leave(e *Engine)
}

// Screen returns the current screen, or nil.
func (e *Engine) Screen() Screen { return e.screen }

// SetScreen leaves the current screen, removes its tree and enters s.
// A nil s leaves the engine without a root.
func (e *Engine) SetScreen(s Screen) error {
	if old := e.screen; old != nil {
		old.Leave(e)
		if !e.root.IsZero() && e.Tree.Contains(e.root) {
			if err := e.Tree.Remove(e.root); err != nil {
				return err
			}
		}
		e.root, e.Dispatcher = ui.NodeID{}, nil
	}
	e.screen = s
	if s == nil {
		return nil
	}
	root, err := s.Enter(e)
	if err != nil {
		return fmt.Errorf("enter screen %T: %w", s, err)
	}
	e.SetRoot(root)
	return nil
}

// advance switches to the screen the current one asks for.
func (e *Engine) advance() error {
	if e.screen == nil {
		return nil
	}
	next, err := e.screen.Next(e)
	if err != nil {
		return err
	}
	if next == e.screen {
		return nil
	}
	return e.SetScreen(next)
}

package input

import "github.com/hubastard/arbor/engine/geom"

// State tracks held keys, held buttons and the last pointer position.
type State struct {
	keys    map[Key]bool
	buttons map[MouseButton]bool
	mouse   geom.Point
	mods    Mod
}

func NewState() *State {
	return &State{keys: map[Key]bool{}, buttons: map[MouseButton]bool{}}
}

func (s *State) Handle(ev Event) {
	switch e := ev.(type) {
	case EventKey:
		s.keys[e.Key] = e.Down
		s.mods = e.Mods
	case EventMouseMove:
		s.mouse = geom.Pt(e.X, e.Y)
	case EventMouseButton:
		s.buttons[e.Button] = e.Down
		s.mouse = geom.Pt(e.X, e.Y)
		s.mods = e.Mods
	}
}

func (s *State) IsKeyDown(k Key) bool            { return s.keys[k] }
func (s *State) IsButtonDown(b MouseButton) bool { return s.buttons[b] }
func (s *State) Mouse() geom.Point               { return s.mouse }
func (s *State) Mods() Mod                       { return s.mods }

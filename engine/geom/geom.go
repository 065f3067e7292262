package geom

type Point struct{ X, Y float32 }

func Pt(x, y float32) Point { return Point{x, y} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

type Size struct{ W, H float32 }

func Sz(w, h float32) Size { return Size{w, h} }

// Along returns the extent on axis a.
func (s Size) Along(a Axis) float32 {
	if a == Vertical {
		return s.H
	}
	return s.W
}

// Rect is an axis-aligned rectangle; X,Y is the top-left corner (Y grows down).
type Rect struct{ X, Y, W, H float32 }

func R(x, y, w, h float32) Rect { return Rect{x, y, w, h} }

func (r Rect) Min() Point  { return Point{r.X, r.Y} }
func (r Rect) Max() Point  { return Point{r.X + r.W, r.Y + r.H} }
func (r Rect) Size() Size  { return Size{r.W, r.H} }
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies in the half-open rectangle [X, X+W) x [Y, Y+H).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersect returns the overlap of r and o, or an empty rect at the clamped corner.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

func (r Rect) Translate(d Point) Rect { return Rect{r.X + d.X, r.Y + d.Y, r.W, r.H} }

// Inset shrinks r by in, never producing negative extents.
func (r Rect) Inset(in Insets) Rect {
	out := Rect{
		X: r.X + in.Left,
		Y: r.Y + in.Top,
		W: r.W - in.Left - in.Right,
		H: r.H - in.Top - in.Bottom,
	}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

// Insets are per-edge paddings.
type Insets struct{ Left, Top, Right, Bottom float32 }

func Uniform(v float32) Insets        { return Insets{v, v, v, v} }
func Symmetric(h, v float32) Insets   { return Insets{h, v, h, v} }
func (in Insets) Horizontal() float32 { return in.Left + in.Right }
func (in Insets) Vertical() float32   { return in.Top + in.Bottom }

// Along returns the total inset on axis a.
func (in Insets) Along(a Axis) float32 {
	if a == Vertical {
		return in.Vertical()
	}
	return in.Horizontal()
}

type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
)

// Cross returns the perpendicular axis.
func (a Axis) Cross() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

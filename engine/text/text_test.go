package text

import (
	"errors"
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/hubastard/arbor/engine/draw"
)

func mustFont(t *testing.T) *Font {
	t.Helper()
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("not a font")); err == nil {
		t.Error("Parse() of garbage should fail")
	}
}

func TestFont_Measure(t *testing.T) {
	f := mustFont(t)

	short := f.Measure(16, "ab")
	long := f.Measure(16, "abab")
	if short <= 0 {
		t.Fatalf("Measure(ab) = %v, want > 0", short)
	}
	if long <= short {
		t.Errorf("Measure(abab) = %v, want > Measure(ab) = %v", long, short)
	}
	if big := f.Measure(32, "ab"); big <= short {
		t.Errorf("Measure at 32px = %v, want > %v", big, short)
	}
	if got := f.Measure(16, ""); got != 0 {
		t.Errorf("Measure(\"\") = %v, want 0", got)
	}
}

func TestFont_Metrics(t *testing.T) {
	m := mustFont(t).Metrics(20)
	if m.Ascent <= 0 || m.Descent <= 0 {
		t.Fatalf("Metrics() = %+v, want positive ascent and descent", m)
	}
	if m.LineHeight() < m.Ascent+m.Descent {
		t.Errorf("LineHeight() = %v, want >= %v", m.LineHeight(), m.Ascent+m.Descent)
	}
}

func TestLibrary_Fallback(t *testing.T) {
	lib := NewLibrary()

	if got, want := lib.Advance(42, 10, "abcd"), float32(4*FallbackAdvance*10); got != want {
		t.Errorf("Advance() = %v, want %v", got, want)
	}
	if got, want := lib.Ascent(42, 10), float32(FallbackAscent*10); got != want {
		t.Errorf("Ascent() = %v, want %v", got, want)
	}
	if got, want := lib.LineHeight(42, 10), float32(FallbackLineHeight*10); got != want {
		t.Errorf("LineHeight() = %v, want %v", got, want)
	}

	f := mustFont(t)
	lib.Add(42, f)
	if got, want := lib.Advance(42, 10, "abcd"), f.Measure(10, "abcd"); got != want {
		t.Errorf("Advance() with font = %v, want %v", got, want)
	}
	if _, ok := lib.Remove(42); !ok {
		t.Error("Remove() = false, want true")
	}
	if lib.Len() != 0 {
		t.Errorf("Len() = %d, want 0", lib.Len())
	}
}

func TestWrap(t *testing.T) {
	// Every rune is 10 wide.
	measure := func(s string) float32 { return float32(len([]rune(s))) * 10 }

	type tc struct {
		s     string
		max   float32
		lines []string
	}

	tests := map[string]tc{
		"no wrap":        {s: "hello world", max: 0, lines: []string{"hello world"}},
		"fits":           {s: "hello world", max: 200, lines: []string{"hello world"}},
		"breaks":         {s: "hello wide world", max: 100, lines: []string{"hello wide", "world"}},
		"long word":      {s: "a extraordinarily b", max: 50, lines: []string{"a", "extraordinarily", "b"}},
		"newline":        {s: "a\nb", max: 100, lines: []string{"a", "b"}},
		"blank line":     {s: "a\n\nb", max: 100, lines: []string{"a", "", "b"}},
		"collapses runs": {s: "a    b", max: 100, lines: []string{"a b"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Wrap(tt.s, tt.max, measure)
			if diff := cmp.Diff(tt.lines, got); diff != "" {
				t.Errorf("Wrap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAtlas_InsertAndLookup(t *testing.T) {
	f := mustFont(t)
	face, err := f.Face(16)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAtlas(64, 256)
	a.MarkClean()

	k := GlyphKey{Font: 1, Size: 16, Rune: 'A'}
	g, err := a.Insert(k, face)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if g.Empty() || g.Advance <= 0 {
		t.Fatalf("Insert('A') = %+v, want a non-empty glyph", g)
	}
	if !a.Dirty() {
		t.Error("Dirty() = false after Insert")
	}
	if got, ok := a.Lookup(k); !ok || got != g {
		t.Errorf("Lookup() = %+v, %v, want %+v, true", got, ok, g)
	}

	space, err := a.Insert(GlyphKey{Font: 1, Size: 16, Rune: ' '}, face)
	if err != nil || !space.Empty() {
		t.Errorf("Insert(' ') = %+v, %v, want empty glyph", space, err)
	}

	u, v := a.WhiteUV()
	x, y := int(u*float32(a.Size())), int(v*float32(a.Size()))
	if got := a.Alpha().AlphaAt(x, y).A; got != 0xff {
		t.Errorf("white block alpha = %d, want 255", got)
	}
}

func TestAtlas_GrowRepacksExistingGlyphs(t *testing.T) {
	f := mustFont(t)
	face, err := f.Face(24)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAtlas(32, 512)

	var keys []GlyphKey
	for r := 'A'; r <= 'Z'; r++ {
		k := GlyphKey{Font: 1, Size: 24, Rune: r}
		if _, err := a.Insert(k, face); err != nil {
			t.Fatalf("Insert(%q) error = %v", r, err)
		}
		keys = append(keys, k)
	}

	if a.Size() <= 32 {
		t.Fatalf("Size() = %d, want growth past 32", a.Size())
	}
	if a.Generation() == 0 {
		t.Error("Generation() = 0, want > 0 after growth")
	}

	// Every glyph is still cached and its pixels match the stored bitmap.
	for _, k := range keys {
		g, ok := a.Lookup(k)
		if !ok {
			t.Fatalf("Lookup(%q) missing after growth", k.Rune)
		}
		if g.X+g.W > a.Size() || g.Y+g.H > a.Size() {
			t.Fatalf("glyph %q at %d,%d %dx%d outside %d atlas", k.Rune, g.X, g.Y, g.W, g.H, a.Size())
		}
		bm := a.masks[k]
		for y := 0; y < g.H; y++ {
			for x := 0; x < g.W; x++ {
				if a.pix.AlphaAt(g.X+x, g.Y+y) != bm.AlphaAt(x, y) {
					t.Fatalf("glyph %q pixel %d,%d differs after repack", k.Rune, x, y)
				}
			}
		}
	}
}

func TestAtlas_Full(t *testing.T) {
	f := mustFont(t)
	face, err := f.Face(24)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAtlas(32, 32)

	var full error
	for r := 'A'; r <= 'Z' && full == nil; r++ {
		_, full = a.Insert(GlyphKey{Font: 1, Size: 24, Rune: r}, face)
	}
	if !errors.Is(full, ErrAtlasFull) {
		t.Fatalf("Insert() error = %v, want ErrAtlasFull", full)
	}
	if a.Size() != 32 {
		t.Errorf("Size() = %d, want 32", a.Size())
	}
}

func TestAtlas_Evict(t *testing.T) {
	f := mustFont(t)
	face, err := f.Face(16)
	if err != nil {
		t.Fatal(err)
	}
	a := NewAtlas(128, 128)
	for _, h := range []draw.FontHandle{1, 2} {
		for _, r := range "abc" {
			if _, err := a.Insert(GlyphKey{Font: h, Size: 16, Rune: r}, face); err != nil {
				t.Fatal(err)
			}
		}
	}

	if n := a.Evict(1); n != 3 {
		t.Errorf("Evict(1) = %d, want 3", n)
	}
	if _, ok := a.Lookup(GlyphKey{Font: 1, Size: 16, Rune: 'a'}); ok {
		t.Error("evicted glyph still cached")
	}
	g, ok := a.Lookup(GlyphKey{Font: 2, Size: 16, Rune: 'a'})
	if !ok {
		t.Fatal("glyph of other font evicted")
	}
	if !image.Rect(g.X, g.Y, g.X+g.W, g.Y+g.H).In(image.Rect(0, 0, a.Size(), a.Size())) {
		t.Errorf("glyph at %+v outside atlas", g)
	}
	if got := len(a.RGBA()); got != a.Size()*a.Size()*4 {
		t.Errorf("len(RGBA()) = %d, want %d", got, a.Size()*a.Size()*4)
	}
}

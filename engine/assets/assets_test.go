package assets

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/shiny/materialdesign/icons"
	"golang.org/x/image/bmp"

	"github.com/hubastard/arbor/engine/colors"
)

func checker() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	m.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	m.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 128})
	m.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	m.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return m
}

func TestDecodeImage(t *testing.T) {
	type tc struct {
		encode func(*bytes.Buffer) error
		want   []byte
	}

	src := checker()
	opaque := append([]byte(nil), src.Pix...)
	opaque[4+3] = 255 // bmp has no alpha channel

	tests := map[string]tc{
		"png": {encode: func(b *bytes.Buffer) error { return png.Encode(b, src) }, want: src.Pix},
		"bmp": {
			encode: func(b *bytes.Buffer) error {
				rgb := image.NewNRGBA(src.Rect)
				copy(rgb.Pix, opaque)
				return bmp.Encode(b, rgb)
			},
			want: opaque,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			px, err := DecodeImage(&buf)
			if err != nil {
				t.Fatalf("DecodeImage() error = %v", err)
			}
			if px.W != 2 || px.H != 2 {
				t.Fatalf("size = %dx%d, want 2x2", px.W, px.H)
			}
			if diff := cmp.Diff(tt.want, px.RGBA); diff != "" {
				t.Errorf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeImage_Invalid(t *testing.T) {
	if _, err := DecodeImage(strings.NewReader("not an image")); err == nil {
		t.Error("DecodeImage() error = nil, want error")
	}
}

func TestLoadImage_Missing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadImage() error = %v, want ErrNotExist", err)
	}
}

func TestToPixels_SubImage(t *testing.T) {
	sub := checker().SubImage(image.Rect(1, 1, 2, 2))
	px := ToPixels(sub)
	if diff := cmp.Diff([]byte{10, 20, 30, 255}, px.RGBA); diff != "" || px.W != 1 || px.H != 1 {
		t.Errorf("ToPixels() = %dx%d %v", px.W, px.H, px.RGBA)
	}
}

func TestLoadShader(t *testing.T) {
	fsys := fstest.MapFS{
		"quad.vert": {Data: []byte("void main() {}")},
		"done.frag": {Data: []byte("void main() {}\x00")},
	}

	tests := map[string]string{
		"quad.vert": "void main() {}\x00",
		"done.frag": "void main() {}\x00",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := LoadShader(fsys, name)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("LoadShader() = %q, want %q", got, want)
			}
		})
	}

	if _, err := LoadShader(fsys, "missing.glsl"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadShader(missing) error = %v, want ErrNotExist", err)
	}
}

func TestRasterizeIcon(t *testing.T) {
	px, err := RasterizeIcon(icons.NavigationMenu, 24, colors.Red)
	if err != nil {
		t.Fatalf("RasterizeIcon() error = %v", err)
	}
	if px.W != 24 || px.H != 24 || len(px.RGBA) != 24*24*4 {
		t.Fatalf("icon is %dx%d with %d bytes", px.W, px.H, len(px.RGBA))
	}

	painted := 0
	for i := 0; i < len(px.RGBA); i += 4 {
		if px.RGBA[i+3] == 255 {
			painted++
			if px.RGBA[i] != 255 || px.RGBA[i+1] != 0 {
				t.Fatalf("opaque texel %d is %v, want red", i/4, px.RGBA[i:i+4])
			}
		}
	}
	if painted == 0 {
		t.Error("icon has no opaque texels")
	}

	if _, err := RasterizeIcon([]byte("junk"), 24, colors.Red); err == nil {
		t.Error("RasterizeIcon(junk) error = nil")
	}
	if _, err := RasterizeIcon(icons.NavigationMenu, 0, colors.Red); err == nil {
		t.Error("RasterizeIcon(size 0) error = nil")
	}
}

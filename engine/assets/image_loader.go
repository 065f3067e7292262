package assets

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/hubastard/arbor/engine/render"
)

// DecodeImage decodes PNG, JPEG, BMP or WebP data into straight-alpha RGBA8
// pixels with a top-left origin.
func DecodeImage(r io.Reader) (render.Pixels, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return render.Pixels{}, fmt.Errorf("decode image: %w", err)
	}
	px := ToPixels(img)
	if err := px.Validate(); err != nil {
		return render.Pixels{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return px, nil
}

// LoadImage reads and decodes the image file at path.
func LoadImage(path string) (render.Pixels, error) {
	f, err := os.Open(path)
	if err != nil {
		return render.Pixels{}, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	px, err := DecodeImage(f)
	if err != nil {
		return render.Pixels{}, fmt.Errorf("%q: %w", path, err)
	}
	return px, nil
}

// ToPixels converts img to tightly packed, non-premultiplied RGBA8.
func ToPixels(img image.Image) render.Pixels {
	b := img.Bounds()
	m, ok := img.(*image.NRGBA)
	if !ok || m.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		m = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(m, m.Bounds(), img, b.Min, draw.Src)
	}
	return render.Pixels{W: b.Dx(), H: b.Dy(), RGBA: m.Pix}
}
